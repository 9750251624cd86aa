package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/raphaelgruber/voicejournal/internal/blob"
	"github.com/raphaelgruber/voicejournal/internal/service"
	"github.com/spf13/cobra"
)

var (
	recordTitle    string
	recordDuration int
)

var recordCmd = &cobra.Command{
	Use:   "record <audio-file>",
	Short: "Create a voice note from an audio file",
	Long: `Upload an audio file, transcribe it and store the enriched note.

The audio is kept in temporary storage only until the note is saved.

Examples:
  journal record morning.webm
  journal record walk.m4a --title "Evening walk" --duration 95`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVarP(&recordTitle, "title", "t", "", "use this title instead of generating one")
	recordCmd.Flags().IntVarP(&recordDuration, "duration", "d", 0, "recording length in seconds")
}

func runRecord(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	st := newStyles(out)

	audio, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read audio: %w", err)
	}
	ext := filepath.Ext(args[0])
	contentType := mime.TypeByExtension(ext)
	if ext == "" {
		ext = ".webm"
	}

	ref := service.BlobRef{
		Bucket: application.Config.TempBucket,
		Path:   userID + "/" + uuid.New().String() + ext,
	}
	if _, err := application.Blobs.Upload(ctx, blob.Object{
		Bucket:      ref.Bucket,
		Path:        ref.Path,
		Data:        audio,
		ContentType: contentType,
	}); err != nil {
		return fmt.Errorf("upload audio: %w", err)
	}

	in := service.RecordingInput{
		UserID:      userID,
		Audio:       audio,
		ContentType: contentType,
		Title:       recordTitle,
		TempBlob:    ref,
	}
	if recordDuration > 0 {
		d := recordDuration
		in.Duration = &d
	}

	var res *service.PipelineResult
	if isTerminal(out) {
		res, err = runPipelineProgress(ctx, application.Pipeline, in, cmd.InOrStdin(), out, filepath.Base(args[0]))
	} else {
		fmt.Fprintln(out, st.hint.Render("Transcribing "+filepath.Base(args[0])+"..."))
		res, err = application.Pipeline.Run(ctx, in)
	}
	if err != nil {
		return err
	}
	if res.Cleanup != nil {
		if err := res.Cleanup.Wait(ctx); err != nil {
			fmt.Fprintf(out, "Warning: temporary audio not deleted (%s): %v\n", ref.Path, err)
		}
	}

	fmt.Fprintln(out, st.ok.Render("Created: ")+res.Note.Title)
	printNote(out, st, res.Note)
	return nil
}
