package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// styles renders headings and labels. Non-terminal writers get plain text.
type styles struct {
	title lipgloss.Style
	label lipgloss.Style
	hint  lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	plain := lipgloss.NewStyle()
	if !isTerminal(w) {
		return styles{title: plain, label: plain, hint: plain, ok: plain, err: plain}
	}
	return styles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FAFD7")),
		label: lipgloss.NewStyle().Foreground(lipgloss.Color("#AF87FF")),
		hint:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C")).Italic(true),
		ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787")).Bold(true),
		err:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF005F")).Bold(true),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// confirm asks a yes/no question on out and reads the answer from in.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read input: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
