package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raphaelgruber/voicejournal/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportNote string

var notesExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export notes to Markdown files",
	Long: `Export notes to Markdown files for backup or migration.

Each note becomes one file with its metadata in YAML frontmatter and the
transcription as the body.

Examples:
  journal notes export ./backup
  journal notes export ./backup --note <id>`,
	Args: cobra.ExactArgs(1),
	RunE: runNotesExport,
}

func init() {
	notesExportCmd.Flags().StringVar(&exportNote, "note", "", "export only this note id")
}

func runNotesExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	exportPath := args[0]

	var notes []models.VoiceNote
	if exportNote != "" {
		n, err := application.Notes.Get(ctx, userID, exportNote)
		if err != nil {
			return err
		}
		notes = []models.VoiceNote{*n}
	} else {
		var err error
		notes, err = application.Notes.List(ctx, userID)
		if err != nil {
			return err
		}
	}

	if len(notes) == 0 {
		fmt.Fprintln(out, "No voice notes to export.")
		return nil
	}
	if err := os.MkdirAll(exportPath, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	exported := 0
	for _, n := range notes {
		content, err := noteMarkdown(n, cfg.Timezone)
		if err != nil {
			return err
		}
		filename := filepath.Join(exportPath, noteFilename(n, cfg.Timezone))
		if err := os.WriteFile(filename, content, 0o644); err != nil {
			fmt.Fprintf(out, "Warning: failed to write %s: %v\n", filename, err)
			continue
		}
		exported++
		if verbose {
			fmt.Fprintf(out, "  Exported: %s\n", filename)
		}
	}

	fmt.Fprintf(out, "Exported %d notes to %s\n", exported, exportPath)
	return nil
}

// noteFilename is the note's local creation date, its title slug and an id
// prefix that keeps same-day notes with equal titles apart.
func noteFilename(n models.VoiceNote, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	id := n.ID
	if len(id) > 8 {
		id = id[:8]
	}
	parts := []string{n.CreatedAt.In(loc).Format("2006-01-02")}
	if slug := models.Slugify(n.Title); slug != "" {
		parts = append(parts, slug)
	}
	parts = append(parts, id)
	return strings.Join(parts, "-") + ".md"
}

// noteMarkdown renders a note as Markdown with YAML frontmatter.
func noteMarkdown(n models.VoiceNote, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}
	n.CreatedAt = n.CreatedAt.In(loc)
	n.UpdatedAt = n.UpdatedAt.In(loc)

	front, err := yaml.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(front)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n\n", n.Title)
	if n.Overview != nil && *n.Overview != "" {
		fmt.Fprintf(&b, "> %s\n\n", *n.Overview)
	}
	b.WriteString(n.Transcription)
	b.WriteString("\n")
	return b.Bytes(), nil
}
