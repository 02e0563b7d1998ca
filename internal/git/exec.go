package git

import (
	"context"

	"github.com/raphi011/pm/internal/cmd"
)

// gitArgs prepends -C <dir> to args if dir is non-empty.
func gitArgs(dir string, args []string) []string {
	if dir == "" {
		return args
	}
	return append([]string{"-C", dir}, args...)
}

// outputGit executes a git command and returns stdout.
func outputGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	return cmd.OutputContext(ctx, "", "git", gitArgs(dir, args)...)
}
