package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// CurrentBranch returns the current branch name.
// Returns "(detached)" for detached HEAD state.
func CurrentBranch(ctx context.Context, path string) (string, error) {
	output, err := outputGit(ctx, path, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("failed to get branch: %w", err)
	}
	branch := strings.TrimSpace(string(output))
	if branch == "" {
		return "(detached)", nil
	}
	return branch, nil
}

// IsDirty returns true if the work tree has uncommitted changes or untracked files
func IsDirty(ctx context.Context, path string) bool {
	output, err := outputGit(ctx, path, "status", "--porcelain")
	if err != nil {
		return false // Treat error as clean (safe default)
	}
	return strings.TrimSpace(string(output)) != ""
}

// ListFiles returns the absolute paths of tracked files plus untracked files
// that are not ignored, in git's order.
func ListFiles(ctx context.Context, root string) ([]string, error) {
	output, err := outputGit(ctx, root, "ls-files", "-z", "--cached", "--others", "--exclude-standard")
	if err != nil {
		return nil, fmt.Errorf("list files in %s: %w", root, err)
	}

	var files []string
	for _, rel := range strings.Split(string(output), "\x00") {
		if rel == "" {
			continue
		}
		files = append(files, filepath.Join(root, rel))
	}
	return files, nil
}

// Status returns the current branch and whether the work tree is dirty.
// The branch is empty when path is not inside a git work tree.
func Status(ctx context.Context, path string) (string, bool) {
	branch, err := CurrentBranch(ctx, path)
	if err != nil {
		return "", false
	}
	return branch, IsDirty(ctx, path)
}
