// Package chatpanel implements the chat panel: the transcript of prompt
// exchanges and the prompt input.
package chatpanel

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/flowdraft/internal/coordinator"
	"github.com/zjrosen/flowdraft/internal/session"
	"github.com/zjrosen/flowdraft/internal/transcript"
	"github.com/zjrosen/flowdraft/internal/ui/shared/clipboard"
	"github.com/zjrosen/flowdraft/internal/ui/shared/editor"
	"github.com/zjrosen/flowdraft/internal/ui/styles"
)

// ExchangeResolvedMsg is sent when a prompt exchange finished.
type ExchangeResolvedMsg struct {
	Outcome coordinator.PromptOutcome
}

// ReplyCopiedMsg reports the result of copying the last assistant reply.
type ReplyCopiedMsg struct {
	Err error
}

// Config configures the chat panel.
type Config struct {
	Session *session.Session
	// Context bounds prompt requests; defaults to context.Background().
	Context        context.Context
	RenderMarkdown bool
	// Clipboard receives the last reply on ctrl+y; defaults to the system clipboard.
	Clipboard clipboard.Clipboard
}

// Model is the chat panel state.
type Model struct {
	sess      *session.Session
	ctx       context.Context
	clipboard clipboard.Clipboard

	input    textinput.Model
	pane     *transcriptPane
	spinner  spinner.Model
	markdown *markdownRenderer

	visible bool
	focused bool
	width   int
	height  int
}

// transcriptPane is shared by every copy of the Model so that scroll position
// survives value-receiver renders.
type transcriptPane struct {
	viewport viewport.Model
	// renderedLen is the transcript length at the last render.
	renderedLen int
}

// New creates a hidden chat panel.
func New(cfg Config) Model {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cb := cfg.Clipboard
	if cb == nil {
		cb = clipboard.System{}
	}

	input := textinput.New()
	input.Prompt = "❯ "
	input.Placeholder = "Describe a workflow..."
	input.CharLimit = 4000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.BotColor)

	m := Model{
		sess:      cfg.Session,
		ctx:       ctx,
		clipboard: cb,
		input:     input,
		pane:      &transcriptPane{viewport: viewport.New(0, 0)},
		spinner:   sp,
	}
	if cfg.RenderMarkdown {
		m.markdown = &markdownRenderer{}
	}
	return m
}

// Visible reports whether the panel is shown.
func (m Model) Visible() bool { return m.visible }

// Focused reports whether the prompt input has focus.
func (m Model) Focused() bool { return m.focused }

// Input returns the current prompt input.
func (m Model) Input() string { return m.input.Value() }

// Toggle shows or hides the panel. Showing it also focuses it.
func (m Model) Toggle() (Model, tea.Cmd) {
	m.visible = !m.visible
	if m.visible {
		return m.Focus()
	}
	return m.Blur(), nil
}

// Focus gives the prompt input keyboard focus.
func (m Model) Focus() (Model, tea.Cmd) {
	m.focused = true
	return m, m.input.Focus()
}

// Blur removes keyboard focus.
func (m Model) Blur() Model {
	m.focused = false
	m.input.Blur()
	return m
}

// SetSize sets the panel dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.input.Width = max(width-6, 1)
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages. While hidden only editor and exchange results are
// processed.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case editor.ExecMsg:
		return m, msg.ExecCmd()

	case editor.FinishedMsg:
		if msg.Err == nil {
			m.input.SetValue(msg.Content)
			m.input.CursorEnd()
		}
		return m, nil

	case ExchangeResolvedMsg:
		return m, nil

	case spinner.TickMsg:
		if m.sess == nil || !m.sess.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		switch msg.Type {
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyCtrlG:
			return m, editor.OpenCmd(m.input.Value())
		case tea.KeyCtrlY:
			return m, m.copyLastReply()
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.pane.viewport, cmd = m.pane.viewport.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.pane.viewport, cmd = m.pane.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a prompt exchange with the current input. Empty input, or an
// exchange already in flight, leaves the input untouched.
func (m Model) submit() (Model, tea.Cmd) {
	if m.sess == nil {
		return m, nil
	}
	ex, ok := m.sess.BeginPrompt(m.input.Value())
	if !ok {
		return m, nil
	}
	m.input.Reset()
	return m, tea.Batch(resolveCmd(m.ctx, ex), m.spinner.Tick)
}

func resolveCmd(ctx context.Context, ex *coordinator.Exchange) tea.Cmd {
	return func() tea.Msg {
		return ExchangeResolvedMsg{Outcome: ex.Resolve(ctx)}
	}
}

// copyLastReply copies the newest assistant message, if any.
func (m Model) copyLastReply() tea.Cmd {
	msgs := m.messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Sender != transcript.SenderBot {
			continue
		}
		cb, text := m.clipboard, msgs[i].Text
		return func() tea.Msg {
			return ReplyCopiedMsg{Err: cb.Copy(text)}
		}
	}
	return nil
}

// View renders the panel.
func (m Model) View() string {
	if !m.visible || m.width == 0 || m.height == 0 {
		return ""
	}

	inputLine := m.input.View()
	if m.sess != nil && m.sess.Busy() {
		inputLine = m.spinner.View() + styles.MutedStyle.Render(" waiting for the assistant...")
	}
	inputBox := styles.RenderPanel(inputLine, "Prompt", "ctrl+g editor · ctrl+y copy reply", m.width, 3, m.focused)

	msgs := m.messages()
	dirty := len(msgs) != m.pane.renderedLen
	m.pane.renderedLen = len(msgs)

	pane := renderScrollablePane(m.width, max(m.height-3, 3), paneConfig{
		Viewport:     &m.pane.viewport,
		ContentDirty: dirty,
		Title:        "Chat",
	}, func(w int) string {
		return renderTranscript(msgs, w, m.markdown)
	})

	return lipgloss.JoinVertical(lipgloss.Left, pane, inputBox)
}

func (m Model) messages() []transcript.Message {
	if m.sess == nil {
		return nil
	}
	return m.sess.Transcript().Messages()
}
