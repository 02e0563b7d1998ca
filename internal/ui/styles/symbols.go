package styles

import (
	"net/url"

	"github.com/charmbracelet/x/ansi"

	"github.com/raphi011/pm/internal/workspace"
)

// Symbols maps VCS backends to the glyph shown in front of a project.
type Symbols map[workspace.Backend]string

var plainSymbols = Symbols{
	workspace.BackendGit:  "±",
	workspace.BackendJJ:   "◆",
	workspace.BackendHg:   "☿",
	workspace.BackendSVN:  "§",
	workspace.BackendNone: "·",
}

var nerdfontSymbols = Symbols{
	workspace.BackendGit:  "\ue702", // nf-dev-git
	workspace.BackendJJ:   "\uf126", // nf-fa-code_fork
	workspace.BackendHg:   "\ue7b4", // nf-dev-mercurial
	workspace.BackendSVN:  "\ue79b", // nf-dev-database
	workspace.BackendNone: "\uf07b", // nf-fa-folder
}

var symbols = plainSymbols

// SetNerdfont switches between nerd font and plain unicode symbols.
func SetNerdfont(enabled bool) {
	if enabled {
		symbols = nerdfontSymbols
	} else {
		symbols = plainSymbols
	}
}

// NerdfontEnabled reports whether nerd font symbols are active.
func NerdfontEnabled() bool {
	return symbols[workspace.BackendGit] == nerdfontSymbols[workspace.BackendGit]
}

// BackendSymbol returns the glyph for b, falling back to the plain-directory glyph.
func BackendSymbol(b workspace.Backend) string {
	if s, ok := symbols[b]; ok {
		return s
	}
	return symbols[workspace.BackendNone]
}

// FormatRoot renders root as an OSC 8 file:// hyperlink when link is set.
func FormatRoot(root string, link bool) string {
	text := MutedStyle.Render(root)
	if !link {
		return text
	}
	u := url.URL{Scheme: "file", Path: root}
	return ansi.SetHyperlink(u.String()) + text + ansi.ResetHyperlink()
}
