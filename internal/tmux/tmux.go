// Package tmux wraps the tmux commands pm needs: pane directories for
// active-project detection and named windows for other-window output.
package tmux

import (
	"context"
	"os"
	"slices"
	"strings"

	"github.com/raphi011/pm/internal/cmd"
)

// Inside reports whether the process runs inside a tmux client.
func Inside() bool {
	return os.Getenv("TMUX") != ""
}

// Available reports whether the tmux binary is on PATH.
func Available() bool {
	return cmd.Available("tmux")
}

// PaneDirs returns the current working directory of every tmux pane across
// all sessions, in tmux's listing order. It returns nil when no server runs.
func PaneDirs(ctx context.Context) ([]string, error) {
	if !Available() {
		return nil, nil
	}
	out, err := cmd.OutputContext(ctx, "", "tmux", "list-panes", "-a", "-F", "#{pane_current_path}")
	if err != nil {
		if strings.Contains(err.Error(), "no server running") {
			return nil, nil
		}
		return nil, err
	}
	return lines(out), nil
}

// Window describes a window to open with NewWindow.
type Window struct {
	Name    string
	Dir     string
	Env     []string // KEY=VALUE pairs
	Command string
}

// NewWindow opens a window named w.Name running w.Command through tmux's
// default shell.
func NewWindow(ctx context.Context, w Window) error {
	args := []string{"new-window", "-n", w.Name}
	if w.Dir != "" {
		args = append(args, "-c", w.Dir)
	}
	for _, kv := range w.Env {
		args = append(args, "-e", kv)
	}
	args = append(args, w.Command)
	return cmd.RunContext(ctx, "", "tmux", args...)
}

// WindowExists reports whether any window in any session is named name.
func WindowExists(ctx context.Context, name string) (bool, error) {
	out, err := cmd.OutputContext(ctx, "", "tmux", "list-windows", "-a", "-F", "#{window_name}")
	if err != nil {
		return false, err
	}
	return slices.Contains(lines(out), name), nil
}

func lines(out []byte) []string {
	var result []string
	for line := range strings.SplitSeq(strings.TrimSpace(string(out)), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			result = append(result, line)
		}
	}
	return result
}
