// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#E6EDF3"}
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#59636E", Dark: "#9198A1"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#656C76"}

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D1D9E0", Dark: "#3D444D"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#4493F8"}

	UserColor    = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#4493F8"}
	BotColor     = lipgloss.AdaptiveColor{Light: "#8250DF", Dark: "#AB7DF8"}
	SuccessColor = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"}
	WarningColor = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"}
	ErrorColor   = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"}
)

// Shared styles
var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)

	LabelStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)

	MutedStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(TextPrimaryColor).
			Background(BorderDefaultColor).
			Padding(0, 1)

	ButtonFocusStyle = ButtonStyle.
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(BorderFocusColor)

	UserLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(UserColor)

	BotLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(BotColor)

	ErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)

	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)
)
