// Package cli provides the command-line interface for the voice journal.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/voicejournal/internal/app"
	"github.com/raphaelgruber/voicejournal/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool
	userID  string

	cfg         config.Config
	application *app.App
	closeLog    func() error

	// newApp builds the application; tests swap in one backed by fakes.
	newApp = app.New
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "journal",
	Short: "Voice journal",
	Long: `Journal turns voice recordings into searchable notes.

Recordings are transcribed, titled and summarized, then stored. You can
browse notes, ask questions about them and look for recurring themes.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		config.LoadDotEnv()
		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		logger, closeFn := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)
		closeLog = closeFn

		if userID == "" {
			userID = cfg.MCPUser
		}
		if userID == "" {
			return fmt.Errorf("no user: pass --user or set JOURNAL_MCP_USER")
		}

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		application = a
		return nil
	},
}

// Execute runs the CLI and releases the application afterwards.
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, newStyles(os.Stderr).err.Render("Error: "+err.Error()))
	}
	return err
}

func shutdown() {
	if application != nil {
		if err := application.Close(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close: %v\n", err)
		}
		application = nil
	}
	if closeLog != nil {
		_ = closeLog()
		closeLog = nil
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "journal owner id (default $JOURNAL_MCP_USER)")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(statsCmd)
}
