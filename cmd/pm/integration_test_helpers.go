//go:build integration

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raphi011/pm/internal/config"
	"github.com/raphi011/pm/internal/output"
	"github.com/raphi011/pm/internal/storage"
)

// resolvePath resolves symlinks in a path.
// This is needed on macOS where /var is a symlink to /private/var.
func resolvePath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve path %s: %v", path, err)
	}
	return resolved
}

// testConfig returns a config whose state files live in a fresh directory,
// with PM_HOME pointed there as well. Tests using it cannot run in parallel.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	state := resolvePath(t, t.TempDir())
	t.Setenv(storage.StateDirEnv, state)

	cfg := config.Default()
	cfg.RegistryPath = filepath.Join(state, "projects.json")
	cfg.TrustedPath = filepath.Join(state, "trusted.json")
	cfg.LogDir = filepath.Join(state, "logs")
	cfg.TrustAll = true
	cfg.Env = config.EnvConfig{Direnv: config.EnvNever, Mise: config.EnvNever}
	return &cfg
}

// setupProject creates dir/name with a .pm.toml holding local.
func setupProject(t *testing.T, dir, name, local string) string {
	t.Helper()
	root := filepath.Join(dir, name)
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("failed to create project dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, ".pm.toml"), []byte(local), 0o644); err != nil {
		t.Fatalf("failed to write .pm.toml: %v", err)
	}
	return root
}

// runPM executes the root command with args and returns its stdout.
func runPM(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	ctx := config.WithConfig(context.Background(), cfg)
	ctx = output.WithPrinter(ctx, &out)

	cmd := newRootCmd()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func mustRunPM(t *testing.T, cfg *config.Config, args ...string) string {
	t.Helper()
	out, err := runPM(t, cfg, args...)
	if err != nil {
		t.Fatalf("pm %s: %v", strings.Join(args, " "), err)
	}
	return out
}
