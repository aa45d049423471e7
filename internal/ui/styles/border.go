package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// Border characters (rounded)
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// RenderPanel renders content inside a rounded border with title on the left
// of the top edge and hint on the right. Pass "" to omit either. The border
// uses BorderFocusColor when focused.
func RenderPanel(content, title, hint string, width, height int, focused bool) string {
	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	titleColor := TextSecondaryColor
	if focused {
		borderColor = BorderFocusColor
		titleColor = BorderFocusColor
	}

	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Foreground(titleColor).Bold(focused)
	hintStyle := lipgloss.NewStyle().Foreground(TextMutedColor)

	innerWidth := max(width-2, 1)
	contentHeight := max(height-2, 1)

	constrained := lipgloss.NewStyle().Width(innerWidth).Height(contentHeight).MaxHeight(contentHeight).Render(content)
	lines := strings.Split(constrained, "\n")

	var b strings.Builder
	b.WriteString(topBorder(title, hint, innerWidth, borderStyle, titleStyle, hintStyle))
	for i := range contentHeight {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		if w := lipgloss.Width(line); w < innerWidth {
			line += strings.Repeat(" ", innerWidth-w)
		}
		b.WriteString("\n")
		b.WriteString(borderStyle.Render(borderVertical) + line + borderStyle.Render(borderVertical))
	}
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(borderBottomLeft + strings.Repeat(borderHorizontal, innerWidth) + borderBottomRight))
	return b.String()
}

// topBorder builds ╭─ Title ───── hint ─╮, dropping the hint and then
// truncating the title when the panel is too narrow.
func topBorder(title, hint string, innerWidth int, borderStyle, titleStyle, hintStyle lipgloss.Style) string {
	plain := func() string {
		return borderStyle.Render(borderTopLeft + strings.Repeat(borderHorizontal, innerWidth) + borderTopRight)
	}
	if title == "" && hint == "" {
		return plain()
	}

	titleW, hintW := lipgloss.Width(title), lipgloss.Width(hint)
	// "─ " + title + " " ... " " + hint + " ─"
	if hint != "" && innerWidth < titleW+hintW+7 {
		hint, hintW = "", 0
	}
	if title == "" && hint == "" {
		return plain()
	}
	if hint == "" {
		if innerWidth < 5 {
			return plain()
		}
		title = TruncateString(title, innerWidth-4)
		titleW = lipgloss.Width(title)
	}

	var b strings.Builder
	b.WriteString(borderStyle.Render(borderTopLeft))
	used := 0
	if title != "" {
		b.WriteString(borderStyle.Render(borderHorizontal + " "))
		b.WriteString(titleStyle.Render(title))
		b.WriteString(borderStyle.Render(" "))
		used += titleW + 3
	}
	tail := 0
	if hint != "" {
		tail = hintW + 3
	}
	b.WriteString(borderStyle.Render(strings.Repeat(borderHorizontal, max(innerWidth-used-tail, 1))))
	if hint != "" {
		b.WriteString(borderStyle.Render(" "))
		b.WriteString(hintStyle.Render(hint))
		b.WriteString(borderStyle.Render(" " + borderHorizontal))
	}
	b.WriteString(borderStyle.Render(borderTopRight))
	return b.String()
}

// TruncateString truncates s to maxWidth cells, ending in "..." when cut.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}
	return truncate.StringWithTail(s, uint(maxWidth), "...")
}
