package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/flowdraft/internal/health"
	"github.com/zjrosen/flowdraft/internal/ui/styles"
)

// statusBar renders: backend health, the current notification, then the
// busy indicator and chat toggle on the right.
func (m Model) statusBar() string {
	left := m.healthIndicator()
	if m.notice.text != "" {
		left += "  " + noticeStyle(m.notice.level).Render(m.notice.text)
	}

	var right []string
	if m.sess.Busy() {
		right = append(right, styles.WarningStyle.Render("assistant thinking..."))
	}
	if m.submitting > 0 {
		right = append(right, styles.WarningStyle.Render("submitting..."))
	}
	chatLabel := "Chat"
	if m.chat.Visible() {
		chatLabel = "Hide chat"
	}
	right = append(right, zone.Mark(ZoneChat, styles.ButtonStyle.Render(chatLabel)))
	rightText := strings.Join(right, "  ")

	inner := max(m.width-2, 1)
	gap := inner - lipgloss.Width(left) - lipgloss.Width(rightText)
	if gap < 1 {
		left = styles.TruncateString(left, max(inner-lipgloss.Width(rightText)-1, 0))
		gap = max(inner-lipgloss.Width(left)-lipgloss.Width(rightText), 1)
	}
	return styles.StatusBarStyle.Render(left + strings.Repeat(" ", gap) + rightText)
}

func (m Model) healthIndicator() string {
	switch m.health.Status {
	case health.StatusHealthy:
		return styles.SuccessStyle.Render("●") + " backend healthy"
	case health.StatusUnhealthy:
		return styles.WarningStyle.Render("●") + " backend unhealthy"
	case health.StatusUnreachable:
		return styles.ErrorStyle.Render("●") + " backend unreachable"
	}
	return styles.MutedStyle.Render("○ backend unknown")
}

func noticeStyle(level noticeLevel) lipgloss.Style {
	switch level {
	case noticeSuccess:
		return styles.SuccessStyle
	case noticeWarning:
		return styles.WarningStyle
	case noticeError:
		return styles.ErrorStyle
	}
	return styles.LabelStyle
}
