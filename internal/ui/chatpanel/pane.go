package chatpanel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/zjrosen/flowdraft/internal/ui/styles"
)

// paneConfig holds what renderScrollablePane needs for one frame.
type paneConfig struct {
	// Viewport must be a pointer so scroll state persists across renders.
	Viewport *viewport.Model

	// ContentDirty is set when the transcript grew since the last render.
	ContentDirty bool

	Title string
}

// renderScrollablePane renders bottom-anchored content in a bordered viewport.
//
// Order matters:
//  1. AtBottom is read before SetContent, otherwise a user who scrolled up
//     would be pulled to the bottom on every render.
//  2. Short content is padded at the top so the latest message sits on the
//     bottom line.
func renderScrollablePane(width, height int, cfg paneConfig, contentFn func(wrapWidth int) string) string {
	vpWidth := max(width-2, 1)
	vpHeight := max(height-2, 1)

	content := contentFn(vpWidth)
	lines := strings.Split(content, "\n")
	if len(lines) < vpHeight {
		padding := make([]string, vpHeight-len(lines))
		content = strings.Join(append(padding, lines...), "\n")
	}

	cfg.Viewport.Width = vpWidth
	cfg.Viewport.Height = vpHeight

	wasAtBottom := cfg.Viewport.AtBottom()
	cfg.Viewport.SetContent(content)
	if cfg.ContentDirty && wasAtBottom {
		cfg.Viewport.GotoBottom()
	}

	return styles.RenderPanel(cfg.Viewport.View(), cfg.Title, scrollIndicator(*cfg.Viewport), width, height, false)
}

// scrollIndicator shows how far up the user has scrolled, e.g. "↑42%".
func scrollIndicator(vp viewport.Model) string {
	if vp.AtBottom() {
		return ""
	}
	return fmt.Sprintf("↑%d%%", int(vp.ScrollPercent()*100))
}
