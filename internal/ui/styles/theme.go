package styles

import (
	"image/color"
	"os"

	"charm.land/lipgloss/v2"

	"github.com/raphi011/pm/internal/config"
)

// Theme is a color palette.
type Theme struct {
	Primary color.Color
	Accent  color.Color
	Success color.Color
	Error   color.Color
	Muted   color.Color
	Normal  color.Color
	Info    color.Color
	Warning color.Color
}

// variants holds the light and dark flavor of a preset. Either may be nil.
type variants struct {
	light, dark *Theme
}

var (
	// DefaultTheme uses the 256-color palette and targets dark terminals.
	DefaultTheme = Theme{
		Primary: lipgloss.Color("62"),
		Accent:  lipgloss.Color("212"),
		Success: lipgloss.Color("82"),
		Error:   lipgloss.Color("196"),
		Muted:   lipgloss.Color("240"),
		Normal:  lipgloss.Color("252"),
		Info:    lipgloss.Color("244"),
		Warning: lipgloss.Color("214"),
	}

	// NoneTheme keeps terminal colors; bold and underline still apply.
	NoneTheme = Theme{
		Primary: lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Muted:   lipgloss.NoColor{},
		Normal:  lipgloss.NoColor{},
		Info:    lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
	}

	DraculaTheme = Theme{
		Primary: lipgloss.Color("#bd93f9"),
		Accent:  lipgloss.Color("#ff79c6"),
		Success: lipgloss.Color("#50fa7b"),
		Error:   lipgloss.Color("#ff5555"),
		Muted:   lipgloss.Color("#6272a4"),
		Normal:  lipgloss.Color("#f8f8f2"),
		Info:    lipgloss.Color("#8be9fd"),
		Warning: lipgloss.Color("#ffb86c"),
	}

	NordTheme = Theme{
		Primary: lipgloss.Color("#88c0d0"),
		Accent:  lipgloss.Color("#b48ead"),
		Success: lipgloss.Color("#a3be8c"),
		Error:   lipgloss.Color("#bf616a"),
		Muted:   lipgloss.Color("#4c566a"),
		Normal:  lipgloss.Color("#eceff4"),
		Info:    lipgloss.Color("#81a1c1"),
		Warning: lipgloss.Color("#ebcb8b"),
	}

	NordLightTheme = Theme{
		Primary: lipgloss.Color("#5e81ac"),
		Accent:  lipgloss.Color("#b48ead"),
		Success: lipgloss.Color("#a3be8c"),
		Error:   lipgloss.Color("#bf616a"),
		Muted:   lipgloss.Color("#9a9a9a"),
		Normal:  lipgloss.Color("#2e3440"),
		Info:    lipgloss.Color("#81a1c1"),
		Warning: lipgloss.Color("#d08770"),
	}
)

var presets = map[string]variants{
	"default": {dark: &DefaultTheme},
	"none":    {light: &NoneTheme, dark: &NoneTheme},
	"dracula": {dark: &DraculaTheme},
	"nord":    {light: &NordLightTheme, dark: &NordTheme},
}

var current = DefaultTheme

// Current returns the active theme.
func Current() Theme {
	return current
}

// Init activates the theme and symbol set named by cfg. Unknown names fall
// back to the default preset; config validation rejects them earlier.
func Init(cfg config.ThemeConfig) {
	current = pick(cfg.Name, cfg.Mode, func() bool {
		return lipgloss.HasDarkBackground(os.Stdin, os.Stderr)
	})
	applyTheme(current)
	SetNerdfont(cfg.Nerdfont)
}

// pick resolves a preset variant. dark is only consulted in auto mode.
func pick(name, mode string, dark func() bool) Theme {
	v, ok := presets[name]
	if !ok {
		v = presets["default"]
	}

	var t *Theme
	switch mode {
	case "light":
		t = v.light
	case "dark":
		t = v.dark
	default:
		if dark() {
			t = v.dark
		} else {
			t = v.light
		}
	}
	if t == nil {
		t = v.dark
	}
	if t == nil {
		t = v.light
	}
	return *t
}

func applyTheme(t Theme) {
	Primary, Accent, Success, Error = t.Primary, t.Accent, t.Success, t.Error
	Muted, Normal, Info, Warning = t.Muted, t.Normal, t.Info, t.Warning

	PrimaryStyle = lipgloss.NewStyle().Foreground(t.Primary)
	AccentStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(t.Success)
	ErrorStyle = lipgloss.NewStyle().Foreground(t.Error)
	MutedStyle = lipgloss.NewStyle().Foreground(t.Muted)
	NormalStyle = lipgloss.NewStyle().Foreground(t.Normal)
	InfoStyle = lipgloss.NewStyle().Foreground(t.Info).Italic(true)
	WarningStyle = lipgloss.NewStyle().Foreground(t.Warning)
	HighlightStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Underline(true)
	TitleStyle = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
}

// PresetNames lists the selectable presets.
func PresetNames() []string {
	return config.ValidThemeNames
}
