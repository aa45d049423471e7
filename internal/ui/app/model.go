// Package app implements the root Bubble Tea model. It lays out the builder
// form, the chat panel and the status bar, and routes user intents to the
// session.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/flowdraft/internal/coordinator"
	"github.com/zjrosen/flowdraft/internal/draft"
	"github.com/zjrosen/flowdraft/internal/health"
	"github.com/zjrosen/flowdraft/internal/log"
	"github.com/zjrosen/flowdraft/internal/session"
	"github.com/zjrosen/flowdraft/internal/ui/builder"
	"github.com/zjrosen/flowdraft/internal/ui/chatpanel"
)

// ZoneChat is the zone ID of the status bar chat toggle.
const ZoneChat = "app-chat"

// noticeTTL is how long a notification stays in the status bar.
const noticeTTL = 6 * time.Second

var zoneOnce sync.Once

// HealthChecker returns the current backend health, possibly cached.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// DraftSubmittedMsg carries the result of a draft submission.
type DraftSubmittedMsg struct {
	Outcome coordinator.DraftOutcome
	Err     error
}

// HealthMsg carries a backend health report.
type HealthMsg struct {
	Report health.Report
}

type healthTickMsg struct{}

type clearNoticeMsg struct {
	seq int
}

type noticeLevel int

const (
	noticeInfo noticeLevel = iota
	noticeSuccess
	noticeWarning
	noticeError
)

type notice struct {
	text  string
	level noticeLevel
	seq   int
}

// Config configures the root model.
type Config struct {
	Session *session.Session
	// Context bounds every request issued from the UI.
	Context context.Context

	// Health is optional; without it the status bar shows no backend state.
	Health         HealthChecker
	HealthInterval time.Duration

	ChatOpen       bool
	RenderMarkdown bool
	ShowStatusBar  bool
}

// Model is the root model.
type Model struct {
	sess *session.Session
	ctx  context.Context

	builder builder.Model
	chat    chatpanel.Model

	healthChecker  HealthChecker
	healthInterval time.Duration
	health         health.Report

	notice        notice
	submitting    int
	showStatusBar bool

	width  int
	height int
}

// New creates the root model.
func New(cfg Config) Model {
	zoneOnce.Do(zone.NewGlobal)

	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	interval := cfg.HealthInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	m := Model{
		sess:           cfg.Session,
		ctx:            ctx,
		builder:        builder.New(cfg.Session),
		chat:           chatpanel.New(chatpanel.Config{Session: cfg.Session, Context: ctx, RenderMarkdown: cfg.RenderMarkdown}),
		healthChecker:  cfg.Health,
		healthInterval: interval,
		health:         health.Report{Status: health.StatusUnknown},
		showStatusBar:  cfg.ShowStatusBar,
	}
	if cfg.ChatOpen {
		m.chat, _ = m.chat.Toggle()
	} else {
		m.builder, _ = m.builder.Focus()
	}
	return m
}

// Init starts the first health probe and the input cursor.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.checkHealth()}
	if m.chat.Focused() {
		_, cmd := m.chat.Focus()
		cmds = append(cmds, cmd)
	} else {
		_, cmd := m.builder.Focus()
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case DraftSubmittedMsg:
		m.submitting = max(m.submitting-1, 0)
		return m.handleDraftSubmitted(msg)

	case HealthMsg:
		m.health = msg.Report
		if m.healthChecker == nil {
			return m, nil
		}
		return m, tea.Tick(m.healthInterval, func(time.Time) tea.Msg { return healthTickMsg{} })

	case healthTickMsg:
		return m, m.checkHealth()

	case clearNoticeMsg:
		if msg.seq == m.notice.seq {
			m.notice.text = ""
		}
		return m, nil

	case builder.ActivityAddedMsg:
		log.Debug(log.CatUI, "Activity added", "name", msg.Activity.Name)
		return m, nil

	case chatpanel.ReplyCopiedMsg:
		if msg.Err != nil {
			log.ErrorErr(log.CatUI, "Copying reply failed", msg.Err)
			return m.notify("Copy failed: "+msg.Err.Error(), noticeError)
		}
		return m.notify("Reply copied to clipboard", noticeSuccess)

	case chatpanel.ExchangeResolvedMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	// Editor results and spinner ticks belong to the chat panel.
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	if m.builder.Focused() {
		var bcmd tea.Cmd
		m.builder, bcmd = m.builder.Update(msg)
		cmd = tea.Batch(cmd, bcmd)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyCtrlT:
		return m.toggleChat()

	case tea.KeyCtrlS:
		return m.submitDraft()

	case tea.KeyCtrlR:
		m.sess.ResetDraft()
		m.builder = m.builder.SyncFromDraft()
		return m.notify("Draft cleared", noticeInfo)

	case tea.KeyEsc:
		if m.chat.Focused() {
			m.chat = m.chat.Blur()
			var cmd tea.Cmd
			m.builder, cmd = m.builder.Focus()
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.chat.Focused() {
		m.chat, cmd = m.chat.Update(msg)
	} else {
		m.builder, cmd = m.builder.Update(msg)
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
		switch {
		case zone.Get(builder.ZoneAdd).InBounds(msg):
			var cmd tea.Cmd
			m.builder, cmd = m.builder.AddPending()
			return m, cmd
		case zone.Get(builder.ZoneSubmit).InBounds(msg):
			return m.submitDraft()
		case zone.Get(ZoneChat).InBounds(msg):
			return m.toggleChat()
		}
	}
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

// toggleChat opens and focuses the chat panel, hides it when it already has
// focus, and refocuses it when it is open behind the builder.
func (m Model) toggleChat() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.chat.Visible() && !m.chat.Focused() {
		m.builder = m.builder.Blur()
		m.chat, cmd = m.chat.Focus()
		return m, cmd
	}
	m.chat, cmd = m.chat.Toggle()
	if m.chat.Visible() {
		m.builder = m.builder.Blur()
	} else {
		var bcmd tea.Cmd
		m.builder, bcmd = m.builder.Focus()
		cmd = tea.Batch(cmd, bcmd)
	}
	m.resize()
	return m, cmd
}

// submitDraft checks the draft synchronously and, when it is submittable,
// sends it from a command goroutine.
func (m Model) submitDraft() (tea.Model, tea.Cmd) {
	if err := m.sess.Draft().Snapshot().Validate(); err != nil {
		return m.notify(validationNotice(err), noticeWarning)
	}

	m.submitting++
	sess, ctx := m.sess, m.ctx
	submit := func() tea.Msg {
		out, err := sess.SubmitDraft(ctx)
		return DraftSubmittedMsg{Outcome: out, Err: err}
	}
	m, noticeCmd := m.notifyModel("Submitting workflow...", noticeInfo)
	return m, tea.Batch(submit, noticeCmd)
}

func (m Model) handleDraftSubmitted(msg DraftSubmittedMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Err != nil:
		return m.notify(validationNotice(msg.Err), noticeWarning)
	case !msg.Outcome.OK():
		return m.notify(msg.Outcome.Notice, noticeError)
	}
	text := "Workflow submitted"
	if resp := msg.Outcome.Response; resp != nil && resp.Message != "" {
		text = resp.Message
	}
	if msg.Outcome.ServiceFailed() {
		return m.notify(text, noticeError)
	}
	return m.notify(text, noticeSuccess)
}

func validationNotice(err error) string {
	var verr *draft.ValidationError
	if errors.As(err, &verr) {
		switch verr.Field {
		case "name":
			return "Enter a workflow name before submitting"
		case "activities":
			return "Add at least one activity before submitting"
		}
	}
	return err.Error()
}

func (m Model) notify(text string, level noticeLevel) (tea.Model, tea.Cmd) {
	return m.notifyModel(text, level)
}

func (m Model) notifyModel(text string, level noticeLevel) (Model, tea.Cmd) {
	seq := m.notice.seq + 1
	m.notice = notice{text: text, level: level, seq: seq}
	return m, tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })
}

func (m Model) checkHealth() tea.Cmd {
	if m.healthChecker == nil {
		return nil
	}
	hc, ctx := m.healthChecker, m.ctx
	return func() tea.Msg {
		return HealthMsg{Report: hc.Check(ctx)}
	}
}

func (m *Model) resize() {
	bodyHeight := m.height
	if m.showStatusBar {
		bodyHeight--
	}
	bodyHeight = max(bodyHeight, 0)

	if m.chat.Visible() {
		builderWidth := m.width / 2
		m.builder = m.builder.SetSize(builderWidth, bodyHeight)
		m.chat = m.chat.SetSize(m.width-builderWidth, bodyHeight)
		return
	}
	m.builder = m.builder.SetSize(m.width, bodyHeight)
	m.chat = m.chat.SetSize(0, 0)
}

// View renders the whole screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.tooSmall() {
		return m.tooSmallView()
	}

	body := m.builder.View()
	if m.chat.Visible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.chat.View())
	}
	if m.showStatusBar {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.statusBar())
	}
	return zone.Scan(body)
}
