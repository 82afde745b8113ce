package cli

import (
	"context"
	"fmt"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/meetnotes/internal/models"
	"github.com/raphaelgruber/meetnotes/internal/pipeline"
)

const tickInterval = time.Second

// Theme holds the color scheme for the record view.
type Theme struct {
	Recording lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Hint      lipgloss.Color
	Accent    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Recording: lipgloss.Color("#FF005F"), // red
	Success:   lipgloss.Color("#00D787"), // green
	Error:     lipgloss.Color("#FF005F"), // red
	Hint:      lipgloss.Color("#6C6C6C"), // dim gray
	Accent:    lipgloss.Color("#5FAFD7"), // light blue
}

func (t Theme) recordingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Recording).Bold(true)
}

func (t Theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) accentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent)
}

// editTarget says which session field the text input is editing.
type editTarget int

const (
	editNone editTarget = iota
	editTitle
	editNotes
)

// tickMsg drives the elapsed clock and status refresh.
type tickMsg time.Time

// resultMsg carries the pipeline outcome once processing finishes.
type resultMsg pipeline.Result

// recordModel is the bubbletea model for a recording session.
type recordModel struct {
	p       *pipeline.Pipeline
	input   textinput.Model
	spinner spinner.Model
	theme   Theme

	editing    editTarget
	processing bool
	done       bool
	result     pipeline.Result
}

func newRecordModel(p *pipeline.Pipeline) recordModel {
	ti := textinput.New()
	ti.Placeholder = "Meeting title"

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return recordModel{
		p:       p,
		input:   ti,
		spinner: sp,
		theme:   defaultTheme,
	}
}

// Init starts the per-second tick.
func (m recordModel) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages and returns the updated model.
func (m recordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if m.editing != editNone {
			return m.updateEditing(msg)
		}
		return m.updateKeys(msg)

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.p.PublishStatus()

		// A dead capture subprocess surfaces immediately instead of
		// at stop time.
		if !m.processing && m.p.CaptureFailed() {
			return m.stopRecording()
		}
		return m, tickCmd()

	case resultMsg:
		m.done = true
		m.result = pipeline.Result(msg)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m recordModel) updateKeys(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "s":
		if !m.processing {
			return m.stopRecording()
		}
	case "ctrl+c", "esc", "c":
		if err := m.p.Cancel(); err != nil {
			// Processing already started; the session runs to its end.
			return m, nil
		}
		if !m.processing {
			// Cancel delivered the result synchronously.
			return m, waitCmd(m.p)
		}
	case "t":
		if !m.processing {
			m.editing = editTitle
			m.input.Placeholder = "Meeting title"
			m.input.SetValue(m.sessionTitle())
			return m, m.input.Focus()
		}
	case "n":
		if !m.processing {
			m.editing = editNotes
			m.input.Placeholder = "Notes for the final document"
			m.input.SetValue(m.sessionNotes())
			return m, m.input.Focus()
		}
	}
	return m, nil
}

func (m recordModel) updateEditing(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		switch m.editing {
		case editTitle:
			m.p.SetTitle(m.input.Value())
		case editNotes:
			m.p.SetUserNotes(m.input.Value())
		}
		m.editing = editNone
		m.input.Blur()
		return m, nil
	case "esc":
		m.editing = editNone
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m recordModel) stopRecording() (tea.Model, tea.Cmd) {
	if err := m.p.Stop(context.Background()); err != nil {
		return m, nil
	}
	m.processing = true
	return m, tea.Batch(waitCmd(m.p), m.spinner.Tick, tickCmd())
}

// View renders the record display.
func (m recordModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m recordModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	if m.editing != editNone {
		label := "Title"
		if m.editing == editNotes {
			label = "Notes"
		}
		return fmt.Sprintf("%s\n%s\n%s\n",
			m.theme.accentStyle().Render(label+":"),
			m.input.View(),
			m.theme.hintStyle().Render("Enter to save, Esc to discard"))
	}

	if m.processing {
		phase := "Processing"
		switch m.p.State() {
		case pipeline.StateTranscribing:
			phase = "Transcribing"
		case pipeline.StateSummarizing:
			phase = "Summarizing"
		case pipeline.StateWriting:
			phase = "Writing note"
		}
		return fmt.Sprintf("%s %s\n%s\n",
			m.spinner.View(),
			m.theme.accentStyle().Render(phase+"..."),
			m.theme.hintStyle().Render("This can take a while for long recordings"))
	}

	rec := m.theme.recordingStyle().Render("● REC")
	elapsed := models.FormatClock(m.p.Elapsed())
	title := m.sessionTitle()

	hint := m.theme.hintStyle().Render("Enter stop  •  c cancel  •  t title  •  n notes")
	return fmt.Sprintf("%s %s  %s\n%s\n", rec, elapsed, title, hint)
}

func (m recordModel) finalView() string {
	switch m.result.State {
	case pipeline.StateDone:
		return m.theme.successStyle().Render("✓ Note written") +
			fmt.Sprintf("\n  %s\n", m.result.NotePath)
	case pipeline.StateCancelled:
		return m.theme.hintStyle().Render("Recording cancelled, nothing kept.\n")
	default:
		return m.theme.errorStyle().Render(fmt.Sprintf("✗ Session failed: %v\n", m.result.Err))
	}
}

func (m recordModel) sessionTitle() string {
	if sess := m.p.Session(); sess != nil {
		return sess.Title
	}
	return ""
}

func (m recordModel) sessionNotes() string {
	if sess := m.p.Session(); sess != nil {
		return sess.UserNotes
	}
	return ""
}

// waitCmd blocks on the pipeline result in a command goroutine.
func waitCmd(p *pipeline.Pipeline) tea.Cmd {
	return func() tea.Msg {
		return resultMsg(<-p.Done())
	}
}

// tickCmd returns a command that ticks after the refresh interval.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// runRecordUI runs the interactive recording view until the session
// reaches a terminal state.
func runRecordUI(p *pipeline.Pipeline) error {
	model := newRecordModel(p)
	prog := tea.NewProgram(model)

	finalModel, err := prog.Run()
	if err != nil {
		return fmt.Errorf("record UI error: %w", err)
	}

	if m, ok := finalModel.(recordModel); ok && m.done {
		if m.result.State == pipeline.StateFailed {
			return m.result.Err
		}
	}
	return nil
}
