// Package git provides the git operations pm needs via shell commands.
//
// All operations call the git CLI through the cmd package rather than a Go
// git library, so user configuration (hooks, credential helpers, aliases,
// sparse checkouts) applies unchanged.
//
//   - [CheckGit]: verify git is installed
//   - [ListFiles]: tracked and untracked-but-not-ignored files
//   - [CurrentBranch], [IsDirty]: status shown in the menu header
package git
