package chatpanel

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/zjrosen/flowdraft/internal/log"
	"github.com/zjrosen/flowdraft/internal/transcript"
	"github.com/zjrosen/flowdraft/internal/ui/styles"
)

// markdownRenderer caches a glamour renderer for one wrap width.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

func (r *markdownRenderer) render(text string, width int) (string, bool) {
	if r.renderer == nil || r.width != width {
		tr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			log.ErrorErr(log.CatUI, "Creating markdown renderer failed", err)
			return "", false
		}
		r.renderer, r.width = tr, width
	}
	out, err := r.renderer.Render(text)
	if err != nil {
		log.ErrorErr(log.CatUI, "Rendering markdown failed", err)
		return "", false
	}
	return strings.Trim(out, "\n"), true
}

// wrapText word-wraps text and hard-wraps words longer than width.
func wrapText(text string, width int) string {
	if width < 1 {
		return text
	}
	return wrap.String(wordwrap.String(text, width), width)
}

// renderTranscript renders every message as a label line followed by its text.
func renderTranscript(msgs []transcript.Message, width int, md *markdownRenderer) string {
	if len(msgs) == 0 {
		return styles.MutedStyle.Render(wrapText("Describe a workflow, e.g. \"create a workflow named payment with activities named charge and refund\".", width))
	}

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := styles.UserLabelStyle.Render("You")
		if msg.Sender == transcript.SenderBot {
			label = styles.BotLabelStyle.Render("Assistant")
		}
		if clock := styles.FormatClock(msg.CreatedAt); clock != "" {
			label += " " + styles.MutedStyle.Render(clock)
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(renderText(msg, width, md))
	}
	return b.String()
}

func renderText(msg transcript.Message, width int, md *markdownRenderer) string {
	if msg.Sender == transcript.SenderBot && md != nil {
		if out, ok := md.render(msg.Text, width); ok {
			return out
		}
	}
	return wrapText(msg.Text, width)
}
