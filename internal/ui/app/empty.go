package app

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/flowdraft/internal/ui/styles"
)

// Smallest terminal the builder and status bar fit in.
const (
	minWidth  = 40
	minHeight = 12
)

func (m Model) tooSmall() bool {
	return m.width < minWidth || m.height < minHeight
}

// tooSmallView is shown instead of the layout when the terminal cannot fit it.
func (m Model) tooSmallView() string {
	content := styles.TitleStyle.Render("Terminal too small") + "\n\n" +
		styles.MutedStyle.Render(fmt.Sprintf("%dx%d, need at least %dx%d", m.width, m.height, minWidth, minHeight))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
