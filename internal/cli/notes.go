package cli

import (
	"fmt"
	"io"

	"github.com/raphaelgruber/voicejournal/internal/models"
	"github.com/spf13/cobra"
)

var (
	notesLimit  int
	deleteForce bool
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Browse and manage voice notes",
	Long: `Browse and manage voice notes.

Examples:
  journal notes
  journal notes list -n 5 -v
  journal notes show <id>
  journal notes delete <id>
  journal notes export ./backup`,
	RunE: runNotesList,
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	RunE:  runNotesList,
}

var notesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a note with its transcription",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotesShow,
}

var notesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a note",
	Long: `Delete a note. Requires confirmation unless --force is used.

Examples:
  journal notes delete 0b6f...
  journal notes delete 0b6f... --force`,
	Args: cobra.ExactArgs(1),
	RunE: runNotesDelete,
}

func init() {
	notesCmd.Flags().IntVarP(&notesLimit, "limit", "n", 20, "max results, 0 for all")
	notesListCmd.Flags().IntVarP(&notesLimit, "limit", "n", 20, "max results, 0 for all")
	notesDeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")

	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesShowCmd)
	notesCmd.AddCommand(notesDeleteCmd)
	notesCmd.AddCommand(notesExportCmd)
}

func runNotesList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	st := newStyles(out)

	notes, err := application.Notes.List(cmd.Context(), userID)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		fmt.Fprintln(out, "No voice notes found.")
		return nil
	}

	total := len(notes)
	if notesLimit > 0 && len(notes) > notesLimit {
		notes = notes[:notesLimit]
	}

	fmt.Fprintln(out, st.title.Render(fmt.Sprintf("Voice notes (%d of %d):", len(notes), total)))
	fmt.Fprintln(out)
	for _, n := range notes {
		fmt.Fprintf(out, "- %s %s %s\n", n.Title,
			st.hint.Render(n.CreatedAt.In(cfg.Timezone).Format("2006-01-02 15:04")),
			st.hint.Render("["+n.ID+"]"))
		if verbose {
			if o := deref(n.Overview); o != "" {
				fmt.Fprintf(out, "  %s\n", o)
			}
			if i := deref(n.KeyInsight); i != "" {
				fmt.Fprintf(out, "  %s %s\n", st.label.Render("Insight:"), i)
			}
		}
	}
	return nil
}

func runNotesShow(cmd *cobra.Command, args []string) error {
	note, err := application.Notes.Get(cmd.Context(), userID, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	st := newStyles(out)
	fmt.Fprintln(out, st.title.Render(note.Title))
	printNote(out, st, note)
	fmt.Fprintln(out)
	fmt.Fprintln(out, note.Transcription)
	return nil
}

// printNote writes the metadata lines of a note.
func printNote(out io.Writer, st styles, n *models.VoiceNote) {
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(out, "%s %s\n", st.label.Render(fmt.Sprintf("%-9s", label+":")), value)
		}
	}
	row("ID", n.ID)
	row("Date", n.CreatedAt.In(cfg.Timezone).Format("Monday, January 2, 2006 15:04"))
	if n.Duration != nil {
		row("Duration", fmt.Sprintf("%ds", *n.Duration))
	}
	row("Location", deref(n.Location))
	row("Overview", deref(n.Overview))
	row("Insight", deref(n.KeyInsight))
}

func runNotesDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	note, err := application.Notes.Get(ctx, userID, args[0])
	if err != nil {
		return err
	}

	if !deleteForce {
		fmt.Fprintf(out, "About to delete: %s (%s)\n\n", note.Title, note.ID)
		yes, err := confirm(cmd.InOrStdin(), out, "Continue?")
		if err != nil {
			return err
		}
		if !yes {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := application.Notes.Delete(ctx, userID, note.ID); err != nil {
		return err
	}
	fmt.Fprintln(out, newStyles(out).ok.Render("Deleted: ")+note.Title)
	return nil
}
