package chatpanel

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/flowdraft/internal/backend"
	"github.com/zjrosen/flowdraft/internal/coordinator"
	"github.com/zjrosen/flowdraft/internal/session"
	"github.com/zjrosen/flowdraft/internal/transcript"
	"github.com/zjrosen/flowdraft/internal/ui/shared/editor"
)

func newSession(t *testing.T, status int, body string) *session.Session {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return session.New(backend.NewClient(srv.URL))
}

func openPanel(t *testing.T, sess *session.Session) Model {
	t.Helper()
	m := New(Config{Session: sess})
	m, _ = m.Toggle()
	return m.SetSize(60, 20)
}

func TestModel_ForwardsExternalEditorMessages_WhenNotVisible(t *testing.T) {
	m := New(Config{})
	m.input.SetValue("original content")

	m, _ = m.Update(editor.FinishedMsg{Content: "edited in vim"})

	require.Equal(t, "edited in vim", m.Input())
}

func TestModel_EditorErrorKeepsInput(t *testing.T) {
	m := New(Config{})
	m.input.SetValue("original")

	m, _ = m.Update(editor.FinishedMsg{Err: errors.New("editor exited 1")})

	require.Equal(t, "original", m.Input())
}

func TestModel_BlocksOtherMessages_WhenNotVisible(t *testing.T) {
	m := New(Config{})
	m.input.SetValue("original")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})

	require.Equal(t, "original", m.Input())
}

func TestModel_CtrlG_ReturnsEditorCmd(t *testing.T) {
	m := openPanel(t, nil)
	m.input.SetValue("some text to edit")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})

	require.NotNil(t, cmd)
}

func TestModel_Toggle(t *testing.T) {
	m := New(Config{})
	require.False(t, m.Visible())

	m, _ = m.Toggle()
	require.True(t, m.Visible())
	require.True(t, m.Focused())

	m, _ = m.Toggle()
	require.False(t, m.Visible())
	require.False(t, m.Focused())
}

func TestModel_EnterStartsExchangeAndClearsInput(t *testing.T) {
	sess := newSession(t, http.StatusOK, `{"message":"Workflow created"}`)
	m := openPanel(t, sess)
	m.input.SetValue("Create OrderProcessor")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.Empty(t, m.Input())
	require.True(t, sess.Busy())
	require.Equal(t, 1, sess.Transcript().Len())
	require.NotNil(t, cmd)

	// run the batched commands until the exchange resolves
	var resolved *ExchangeResolvedMsg
	for _, c := range cmd().(tea.BatchMsg) {
		if msg, ok := c().(ExchangeResolvedMsg); ok {
			resolved = &msg
		}
	}
	require.NotNil(t, resolved)
	require.Equal(t, coordinator.OutcomeReply, resolved.Outcome.Kind)
	require.False(t, sess.Busy())

	msgs := sess.Transcript().Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, transcript.SenderBot, msgs[1].Sender)
	require.Equal(t, "Workflow created", msgs[1].Text)
	require.Contains(t, m.View(), "Workflow created")
}

func TestModel_EnterWithEmptyInputIsNoop(t *testing.T) {
	sess := newSession(t, http.StatusOK, `{"message":"x"}`)
	m := openPanel(t, sess)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.Nil(t, cmd)
	require.Zero(t, sess.Transcript().Len())
	require.False(t, sess.Busy())
}

func TestModel_EnterWhileBusyKeepsInput(t *testing.T) {
	sess := newSession(t, http.StatusOK, `{"message":"x"}`)
	ex, ok := sess.BeginPrompt("first")
	require.True(t, ok)

	m := openPanel(t, sess)
	m.input.SetValue("second")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.Nil(t, cmd)
	require.Equal(t, "second", m.Input())
	require.Equal(t, 1, sess.Transcript().Len())
	require.Contains(t, m.View(), "waiting for the assistant")

	ex.Resolve(t.Context())
	require.NotContains(t, m.View(), "waiting for the assistant")
}

func TestModel_ViewShowsFailureNotice(t *testing.T) {
	sess := newSession(t, http.StatusInternalServerError, ``)
	_, ok := sess.SubmitPrompt(t.Context(), "Create OrderProcessor")
	require.True(t, ok)

	view := openPanel(t, sess).View()

	require.Contains(t, view, "Create OrderProcessor")
	require.Contains(t, view, "Failed to create workflow")
}

func TestModel_HiddenViewIsEmpty(t *testing.T) {
	require.Empty(t, New(Config{}).SetSize(40, 10).View())
}

func TestRenderTranscript_WrapsLongLines(t *testing.T) {
	msgs := []transcript.Message{{Sender: transcript.SenderUser, Text: strings.Repeat("word ", 20)}}

	out := renderTranscript(msgs, 20, nil)

	for _, line := range strings.Split(out, "\n") {
		require.LessOrEqual(t, len(strings.TrimRight(line, " ")), 40)
	}
	require.Greater(t, strings.Count(out, "\n"), 3)
}

func TestRenderTranscript_Markdown(t *testing.T) {
	msgs := []transcript.Message{{Sender: transcript.SenderBot, Text: "# Heading\n\n- item"}}

	out := renderTranscript(msgs, 40, &markdownRenderer{})

	require.Contains(t, out, "Heading")
	require.NotContains(t, out, "# Heading")
}

type fakeClipboard struct {
	copied []string
	err    error
}

func (f *fakeClipboard) Copy(text string) error {
	f.copied = append(f.copied, text)
	return f.err
}

func TestModel_CtrlY_CopiesLastReply(t *testing.T) {
	sess := newSession(t, http.StatusOK, `{"message":"second reply"}`)
	_, ok := sess.SubmitPrompt(t.Context(), "hello")
	require.True(t, ok)

	cb := &fakeClipboard{}
	m := New(Config{Session: sess, Clipboard: cb})
	m, _ = m.Toggle()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	require.NotNil(t, cmd)
	msg, ok := cmd().(ReplyCopiedMsg)

	require.True(t, ok)
	require.NoError(t, msg.Err)
	require.Equal(t, []string{"second reply"}, cb.copied)
}

func TestModel_CtrlY_NoReplyIsNoop(t *testing.T) {
	cb := &fakeClipboard{}
	m := New(Config{Session: newSession(t, http.StatusOK, `{}`), Clipboard: cb})
	m, _ = m.Toggle()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})

	require.Nil(t, cmd)
	require.Empty(t, cb.copied)
}
