package cli

import (
	"fmt"
	"strings"

	"github.com/raphaelgruber/voicejournal/internal/models"
	"github.com/spf13/cobra"
)

var clearForce bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about your notes",
	Long: `Ask questions answered only from your voice notes.

Examples:
  journal chat ask "What did I do last Sunday?"
  journal chat history
  journal chat clear`,
}

var chatAskCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChatAsk,
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the chat history",
	RunE:  runChatHistory,
}

var chatClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the chat history",
	RunE:  runChatClear,
}

func init() {
	chatClearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "skip confirmation")

	chatCmd.AddCommand(chatAskCmd)
	chatCmd.AddCommand(chatHistoryCmd)
	chatCmd.AddCommand(chatClearCmd)
}

func runChatAsk(cmd *cobra.Command, args []string) error {
	turn, err := application.Chat.Ask(cmd.Context(), userID, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), turn.Answer.Content)
	return nil
}

func runChatHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	st := newStyles(out)

	msgs, err := application.Chat.History(cmd.Context(), userID)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Fprintln(out, "No chat messages.")
		return nil
	}
	for _, m := range msgs {
		who := "You"
		if m.Role == models.RoleAssistant {
			who = "Journal"
		}
		fmt.Fprintf(out, "%s %s\n%s\n\n",
			st.label.Render(who),
			st.hint.Render(m.CreatedAt.In(cfg.Timezone).Format("2006-01-02 15:04")),
			m.Content)
	}
	return nil
}

func runChatClear(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if !clearForce {
		yes, err := confirm(cmd.InOrStdin(), out, "Delete the whole chat history?")
		if err != nil {
			return err
		}
		if !yes {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}
	n, err := application.Chat.Clear(cmd.Context(), userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted %d messages.\n", n)
	return nil
}
