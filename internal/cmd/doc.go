// Package cmd provides helpers for executing external commands with proper error handling.
//
// The helpers capture stderr and use it as the error message, so a failing
// `git ls-files` or `direnv export json` surfaces the tool's own complaint
// instead of a bare "exit status 1".
//
// # Usage
//
//	if err := cmd.RunContext(ctx, root, "git", "status"); err != nil {
//	    return fmt.Errorf("git status: %w", err)
//	}
//
//	out, err := cmd.OutputContext(ctx, root, "direnv", "export", "json")
//
// Every execution is traced through the context logger in verbose mode.
//
// # Design Notes
//
// pm shells out to git, tmux, direnv and mise rather than linking libraries.
// This keeps user configuration (credential helpers, shell hooks, tool
// versions) authoritative.
package cmd
