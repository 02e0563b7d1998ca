// Package static renders non-interactive tables for pm's list commands.
package static

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/raphi011/pm/internal/commands"
	"github.com/raphi011/pm/internal/project"
	"github.com/raphi011/pm/internal/ui/styles"
)

// Column headers for the list commands.
var (
	ProjectHeaders = []string{"", "NAME", "BACKEND", "ROOT"}
	CommandHeaders = []string{"KEY", "TYPE", "DESCRIPTION", "COMMAND"}
)

// RenderTable lays out rows in borderless, left-aligned columns.
// Returns "" when there are no rows.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

// ProjectRow formats p for [ProjectHeaders]. Zombie projects, whose root no
// longer exists, are rendered with the warning style.
func ProjectRow(p project.Project, zombie, link bool) []string {
	name := p.Name()
	if zombie {
		name = styles.WarningStyle.Render(name + " (missing)")
	}
	return []string{
		styles.BackendSymbol(p.Backend),
		name,
		string(p.Backend),
		styles.FormatRoot(p.Root, link),
	}
}

// CommandRow formats s for [CommandHeaders].
func CommandRow(s commands.Spec) []string {
	return []string{s.Key, string(s.Type), s.Description, s.Command.String()}
}
