// Package styles provides shared lipgloss styles for pm's interactive output.
//
// Colors come from the active [Theme]; call [Init] once after loading the
// configuration and before rendering anything.
package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Colors of the active theme.
var (
	Primary color.Color = DefaultTheme.Primary // titles and borders
	Accent  color.Color = DefaultTheme.Accent  // cursor and selected items
	Success color.Color = DefaultTheme.Success
	Error   color.Color = DefaultTheme.Error
	Muted   color.Color = DefaultTheme.Muted // hints, disabled entries
	Normal  color.Color = DefaultTheme.Normal
	Info    color.Color = DefaultTheme.Info
	Warning color.Color = DefaultTheme.Warning // zombie projects
)

// Styles derived from the colors above. Rebuilt by [Init].
var (
	Bold   = lipgloss.NewStyle().Bold(true)
	Italic = lipgloss.NewStyle().Italic(true)

	PrimaryStyle   lipgloss.Style
	AccentStyle    lipgloss.Style
	SuccessStyle   lipgloss.Style
	ErrorStyle     lipgloss.Style
	MutedStyle     lipgloss.Style
	NormalStyle    lipgloss.Style
	InfoStyle      lipgloss.Style
	WarningStyle   lipgloss.Style
	HighlightStyle lipgloss.Style // fuzzy-matched characters
	TitleStyle     lipgloss.Style // menu titles
)

func init() {
	applyTheme(DefaultTheme)
}
