package dispatch

import (
	"regexp"

	"github.com/raphi011/pm/internal/cmd"
)

// Placeholders holds the values substituted into compile commands.
type Placeholders struct {
	Root     string // project root
	Project  string // project name
	Instance string // instance name
}

// placeholderRegex matches {root}, {project} and {instance}, optionally
// with a :raw suffix.
var placeholderRegex = regexp.MustCompile(`\{(root|project|instance)(:raw)?\}`)

// Expand replaces placeholders in command with shell-quoted values.
// {name:raw} inserts the value unquoted, for use inside existing quotes.
// Other brace expressions, such as ${HOME}, are left alone.
func Expand(command string, p Placeholders) string {
	values := map[string]string{
		"root":     p.Root,
		"project":  p.Project,
		"instance": p.Instance,
	}
	return placeholderRegex.ReplaceAllStringFunc(command, func(match string) string {
		sub := placeholderRegex.FindStringSubmatch(match)
		val := values[sub[1]]
		if sub[2] == ":raw" {
			return val
		}
		return cmd.Quote(val)
	})
}
