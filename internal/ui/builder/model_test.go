package builder

import (
	"context"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/flowdraft/internal/backend"
	"github.com/zjrosen/flowdraft/internal/draft"
	"github.com/zjrosen/flowdraft/internal/session"
)

type nopBackend struct{}

func (nopBackend) SubmitPrompt(context.Context, string) (*backend.GenerateResponse, error) {
	return &backend.GenerateResponse{}, nil
}

func (nopBackend) SubmitWorkflow(context.Context, draft.Workflow) (*backend.GenerateResponse, error) {
	return &backend.GenerateResponse{}, nil
}

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

func newFocused(t *testing.T) (Model, *session.Session) {
	t.Helper()
	n := 0
	sess := session.New(nopBackend{}, session.WithDraftOptions(draft.WithIDGenerator(func() string {
		n++
		return string(rune('a' + n - 1))
	})))
	m := New(sess).SetSize(60, 20)
	m, _ = m.Focus()
	return m, sess
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestModel_TypingNameUpdatesDraft(t *testing.T) {
	m, sess := newFocused(t)

	m = typeText(m, "OrderProcessor")

	require.Equal(t, "OrderProcessor", m.Name())
	require.Equal(t, "OrderProcessor", sess.Draft().Name())
}

func TestModel_EnterOnNameMovesToActivity(t *testing.T) {
	m, sess := newFocused(t)
	m = typeText(m, "Payments")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(m, "charge")

	require.Equal(t, "charge", m.PendingActivity())
	require.Equal(t, "Payments", sess.Draft().Name())
	require.Zero(t, sess.Draft().Len())
}

func TestModel_EnterOnActivityAddsAndClears(t *testing.T) {
	m, sess := newFocused(t)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "ValidateOrder")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.Empty(t, m.PendingActivity())
	require.NotNil(t, cmd)
	added, ok := cmd().(ActivityAddedMsg)
	require.True(t, ok)
	require.Equal(t, draft.Activity{ID: "a", Name: "ValidateOrder", TimeoutSeconds: 10}, added.Activity)
	require.Equal(t, []draft.Activity{added.Activity}, sess.Draft().Activities())
}

func TestModel_EnterOnEmptyActivityIsNoop(t *testing.T) {
	m, sess := newFocused(t)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.Nil(t, cmd)
	require.Zero(t, sess.Draft().Len())
}

func TestModel_TabTogglesFields(t *testing.T) {
	m, _ := newFocused(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "x")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = typeText(m, "y")

	require.Equal(t, "x", m.PendingActivity())
	require.Equal(t, "y", m.Name())
}

func TestModel_IgnoresKeysWhenBlurred(t *testing.T) {
	m, sess := newFocused(t)
	m = m.Blur()

	m = typeText(m, "ignored")

	require.Empty(t, m.Name())
	require.Empty(t, sess.Draft().Name())
}

func TestModel_SyncFromDraftAfterReset(t *testing.T) {
	m, sess := newFocused(t)
	m = typeText(m, "Payments")

	sess.ResetDraft()
	m = m.SyncFromDraft()

	require.Empty(t, m.Name())
}

func TestModel_ViewListsActivities(t *testing.T) {
	m, sess := newFocused(t)
	sess.SetName("Payments")
	sess.AddActivity("charge")
	sess.AddActivity("refund")

	view := zone.Scan(m.View())

	require.Contains(t, view, "1. charge")
	require.Contains(t, view, "2. refund")
	require.Contains(t, view, "10s")
	require.Contains(t, view, "2 activities")
	require.Contains(t, view, "Submit")
	require.Contains(t, view, "Add")
}

func TestModel_ViewEmptyState(t *testing.T) {
	m, _ := newFocused(t)

	view := zone.Scan(m.View())

	require.Contains(t, view, "No activities yet")
	require.Contains(t, view, "0 activities")
}
