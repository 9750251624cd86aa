package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Analyze your notes",
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "Find recurring themes across all notes",
	RunE:  runThemes,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show runtime statistics for this process",
	Long: `Show timing and token statistics collected while the command ran.

The server exposes the same numbers for its lifetime at /api/stats.`,
	RunE: runStats,
}

func init() {
	insightsCmd.AddCommand(themesCmd)
}

func runThemes(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	st := newStyles(out)

	themes, err := application.Themes.Analyze(cmd.Context(), userID)
	if err != nil {
		return err
	}
	if len(themes) == 0 {
		fmt.Fprintln(out, "No themes found.")
		return nil
	}
	fmt.Fprintln(out, st.title.Render(fmt.Sprintf("Themes (%d):", len(themes))))
	fmt.Fprintln(out)
	for _, t := range themes {
		fmt.Fprintf(out, "- %s %s\n  %s\n", t.Theme, st.hint.Render(fmt.Sprintf("(%d notes)", t.NoteCount)), t.Description)
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	st := newStyles(out)
	snap := application.Metrics.Snapshot()

	fmt.Fprintln(out, st.title.Render("Runtime Statistics"))
	fmt.Fprintf(out, "Uptime: %.1fs\n\n", snap.UptimeSeconds)
	if len(snap.Operations) == 0 {
		fmt.Fprintln(out, "No operations recorded.")
		return nil
	}

	names := make([]string, 0, len(snap.Operations))
	for name := range snap.Operations {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(out, "%-14s %6s %6s %10s %8s %8s\n", "Operation", "Count", "Errors", "Avg(ms)", "Min(ms)", "Max(ms)")
	for _, name := range names {
		op := snap.Operations[name]
		fmt.Fprintf(out, "%-14s %6d %6d %10.1f %8d %8d\n",
			name, op.Count, op.Errors, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
		if op.TotalInputTokens != nil {
			fmt.Fprintf(out, "  tokens in=%d out=%d\n", *op.TotalInputTokens, *op.TotalOutputTokens)
		}
	}
	return nil
}
