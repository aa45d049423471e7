// Package builder implements the workflow builder form: the workflow name,
// the activity input and the list of activities added so far.
package builder

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/flowdraft/internal/draft"
	"github.com/zjrosen/flowdraft/internal/session"
	"github.com/zjrosen/flowdraft/internal/ui/styles"
)

// Zone IDs for the clickable buttons.
const (
	ZoneAdd    = "builder-add"
	ZoneSubmit = "builder-submit"
)

type field int

const (
	fieldName field = iota
	fieldActivity
)

// ActivityAddedMsg is returned when the activity input produced an activity.
type ActivityAddedMsg struct {
	Activity draft.Activity
}

// Model is the builder form state. The draft itself lives in the session;
// the model only owns the pending input text.
type Model struct {
	sess *session.Session

	name     textinput.Model
	activity textinput.Model
	focus    field
	focused  bool

	width  int
	height int
}

// New creates a builder bound to sess.
func New(sess *session.Session) Model {
	name := textinput.New()
	name.Prompt = ""
	name.Placeholder = "OrderProcessor"
	name.CharLimit = 200

	activity := textinput.New()
	activity.Prompt = ""
	activity.Placeholder = "Activity name, enter to add"
	activity.CharLimit = 200

	m := Model{sess: sess, name: name, activity: activity}
	return m.SyncFromDraft()
}

// SyncFromDraft copies the draft name into the name input, e.g. after a reset.
func (m Model) SyncFromDraft() Model {
	m.name.SetValue(m.sess.Draft().Name())
	m.name.CursorEnd()
	return m
}

// Name returns the workflow name input.
func (m Model) Name() string { return m.name.Value() }

// PendingActivity returns the activity input that has not been added yet.
func (m Model) PendingActivity() string { return m.activity.Value() }

// Focused reports whether the form has keyboard focus.
func (m Model) Focused() bool { return m.focused }

// Focus gives the form keyboard focus, restoring the last focused field.
func (m Model) Focus() (Model, tea.Cmd) {
	m.focused = true
	return m.focusField(m.focus)
}

// Blur removes keyboard focus.
func (m Model) Blur() Model {
	m.focused = false
	m.name.Blur()
	m.activity.Blur()
	return m
}

// SetSize sets the form dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	inputWidth := max(width-16, 1)
	m.name.Width = inputWidth
	m.activity.Width = max(inputWidth-8, 1)
	return m
}

func (m Model) focusField(f field) (Model, tea.Cmd) {
	m.focus = f
	if f == fieldName {
		m.activity.Blur()
		return m, m.name.Focus()
	}
	m.name.Blur()
	return m, m.activity.Focus()
}

// AddPending adds the pending activity input to the draft. The input is
// cleared only when an activity was actually added.
func (m Model) AddPending() (Model, tea.Cmd) {
	act, ok := m.sess.AddActivity(m.activity.Value())
	if !ok {
		return m, nil
	}
	m.activity.Reset()
	return m, func() tea.Msg { return ActivityAddedMsg{Activity: act} }
}

// Update handles key input while focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
			if m.focus == fieldName {
				return m.focusField(fieldActivity)
			}
			return m.focusField(fieldName)
		case tea.KeyEnter:
			if m.focus == fieldName {
				return m.focusField(fieldActivity)
			}
			return m.AddPending()
		}
	}

	var cmd tea.Cmd
	if m.focus == fieldName {
		before := m.name.Value()
		m.name, cmd = m.name.Update(msg)
		if v := m.name.Value(); v != before {
			m.sess.SetName(v)
		}
		return m, cmd
	}
	m.activity, cmd = m.activity.Update(msg)
	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	wf := m.sess.Draft().Snapshot()

	var b strings.Builder
	b.WriteString(m.labelFor(fieldName, "Name"))
	b.WriteString(m.name.View())
	b.WriteString("\n\n")
	b.WriteString(m.labelFor(fieldActivity, "Activity"))
	b.WriteString(m.activity.View())
	b.WriteString(" ")
	b.WriteString(zone.Mark(ZoneAdd, styles.ButtonStyle.Render("Add")))
	b.WriteString("\n\n")
	b.WriteString(styles.TitleStyle.Render("Activities"))
	b.WriteString(" ")
	b.WriteString(styles.MutedStyle.Render("(" + styles.FormatActivityCount(len(wf.Activities)) + ")"))
	b.WriteString("\n")
	b.WriteString(renderActivities(wf.Activities, max(m.width-4, 1)))
	b.WriteString("\n\n")

	submit := styles.ButtonStyle
	if wf.Submittable() {
		submit = styles.ButtonFocusStyle
	}
	b.WriteString(zone.Mark(ZoneSubmit, submit.Render("Submit")))

	return styles.RenderPanel(b.String(), "Workflow", "tab switch · ctrl+s submit · ctrl+r reset", m.width, m.height, m.focused)
}

func (m Model) labelFor(f field, label string) string {
	style := styles.LabelStyle
	if m.focused && m.focus == f {
		style = style.Foreground(styles.BorderFocusColor).Bold(true)
	}
	return style.Render(fmt.Sprintf("%-10s", label))
}

func renderActivities(acts []draft.Activity, width int) string {
	if len(acts) == 0 {
		return styles.MutedStyle.Render("  No activities yet")
	}
	lines := make([]string, len(acts))
	for i, act := range acts {
		timeout := styles.MutedStyle.Render(styles.FormatTimeout(act.TimeoutSeconds))
		name := styles.TruncateString(act.Name, max(width-lipgloss.Width(timeout)-8, 1))
		lines[i] = fmt.Sprintf("  %d. %s  %s", i+1, name, timeout)
	}
	return strings.Join(lines, "\n")
}
