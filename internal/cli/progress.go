package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/voicejournal/internal/service"
)

// Theme holds the color scheme for the recording display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// stageMsg reports that the pipeline entered a step.
type stageMsg service.Stage

// pipelineDoneMsg carries the pipeline outcome.
type pipelineDoneMsg struct {
	res *service.PipelineResult
	err error
}

// recordModel is the bubbletea model shown while a recording is processed.
type recordModel struct {
	label      string
	stages     []service.Stage
	stage      service.Stage
	completed  int
	updates    <-chan tea.Msg
	cancel     context.CancelFunc
	spinner    spinner.Model
	progress   progress.Model
	theme      Theme
	res        *service.PipelineResult
	err        error
	done       bool
	cancelling bool
}

func newRecordModel(label string, stages []service.Stage, updates <-chan tea.Msg, cancel context.CancelFunc) recordModel {
	return recordModel{
		label:    label,
		stages:   stages,
		updates:  updates,
		cancel:   cancel,
		spinner:  spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		progress: progress.New(progress.WithDefaultBlend(), progress.WithWidth(30)),
		theme:    defaultTheme,
	}
}

func (m recordModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.progress.Init(), waitFor(m.updates))
}

func (m recordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" && !m.cancelling {
			// The pipeline notices the cancellation and reports back with
			// pipelineDoneMsg, which ends the program.
			m.cancelling = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case stageMsg:
		m.stage = service.Stage(msg)
		if i := slices.Index(m.stages, m.stage); i >= 0 {
			m.completed = i
		}
		return m, waitFor(m.updates)

	case pipelineDoneMsg:
		m.done = true
		m.res, m.err = msg.res, msg.err
		if m.err == nil {
			m.completed = len(m.stages)
		}
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m recordModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// percent is the share of steps finished.
func (m recordModel) percent() float64 {
	if len(m.stages) == 0 {
		return 0
	}
	return float64(m.completed) / float64(len(m.stages))
}

func (m recordModel) renderContent() string {
	if m.done {
		if m.err != nil {
			return m.theme.errorStyle().Render(fmt.Sprintf("✗ %s: %s", m.label, m.err)) + "\n"
		}
		title := ""
		if m.res != nil && m.res.Note != nil {
			title = m.res.Note.Title
		}
		return m.theme.completedStyle().Render("✓ Saved ") + title + "\n"
	}

	stage := string(m.stage)
	if stage == "" {
		stage = "starting"
	}
	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", stage))
	hint := "Press Ctrl+C to cancel"
	if m.cancelling {
		hint = "Cancelling..."
	}
	return fmt.Sprintf("%s %s %s %s\n%s\n",
		m.spinner.View(), status, m.progress.ViewAs(m.percent()), m.label,
		m.theme.hintStyle().Render(hint))
}

// waitFor returns a command that delivers the next pipeline update.
func waitFor(updates <-chan tea.Msg) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		return <-updates
	}
}

// runPipelineProgress runs the pipeline behind a spinner and a step bar.
// Ctrl+C cancels the pipeline; the returned error then reflects the
// cancellation.
func runPipelineProgress(ctx context.Context, pipeline *service.Pipeline, in service.RecordingInput, stdin io.Reader, out io.Writer, label string) (*service.PipelineResult, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stages := pipeline.Stages()
	updates := make(chan tea.Msg, len(stages)+1)
	in.OnStage = func(s service.Stage) { updates <- stageMsg(s) }
	go func() {
		res, err := pipeline.Run(runCtx, in)
		updates <- pipelineDoneMsg{res: res, err: err}
	}()

	p := tea.NewProgram(newRecordModel(label, stages, updates, cancel),
		tea.WithContext(ctx),
		tea.WithInput(stdin),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress UI error: %w", err)
	}

	m, ok := final.(recordModel)
	if !ok || !m.done {
		return nil, errors.New("recording interrupted")
	}
	return m.res, m.err
}
