// Package prompt provides the interactive prompts pm's menus are built from.
//
// Prompts render on stderr so that stdout stays usable for primary output.
// Every prompt fails with [ErrNotInteractive] when stdin or stderr is not a
// terminal.
//
// Available prompts:
//   - [Confirm]: yes/no question, defaulting to no
//   - [TextInput]: single line of text
//   - [Select]: one entry from a filterable list
package prompt
