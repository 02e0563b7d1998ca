package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"
)

// initRepo creates a git repository with one tracked and one untracked file.
func initRepo(t *testing.T) string {
	t.Helper()
	if CheckGit() != nil {
		t.Skip("git not available")
	}

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	run := func(args ...string) {
		t.Helper()
		c := exec.Command("git", args...)
		c.Dir = dir
		if out, err := c.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	run("init", "-b", "main")
	run("config", "user.email", "test@test.com")
	run("config", "user.name", "Test User")
	run("config", "commit.gpgsign", "false")

	for name, content := range map[string]string{"tracked.txt": "a\n", ".gitignore": "ignored.log\n"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	run("add", ".")
	run("commit", "-m", "initial")

	for _, name := range []string{"untracked.txt", "ignored.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestListFiles(t *testing.T) {
	t.Parallel()
	dir := initRepo(t)

	files, err := ListFiles(context.Background(), dir)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	for _, want := range []string{"tracked.txt", "untracked.txt", ".gitignore"} {
		if !slices.Contains(files, filepath.Join(dir, want)) {
			t.Errorf("ListFiles() missing %s: %v", want, files)
		}
	}
	if slices.Contains(files, filepath.Join(dir, "ignored.log")) {
		t.Errorf("ListFiles() includes ignored file: %v", files)
	}
}

func TestBranchAndDirty(t *testing.T) {
	t.Parallel()
	dir := initRepo(t)

	ctx := context.Background()
	branch, err := CurrentBranch(ctx, dir)
	if err != nil {
		t.Fatalf("CurrentBranch() error = %v", err)
	}
	if branch != "main" {
		t.Errorf("CurrentBranch() = %q, want main", branch)
	}

	if !IsDirty(ctx, dir) {
		t.Error("IsDirty() = false with untracked file, want true")
	}

	if b, dirty := Status(ctx, dir); b != "main" || !dirty {
		t.Errorf("Status() = %q, %v; want main, true", b, dirty)
	}
	if b, _ := Status(ctx, t.TempDir()); b != "" {
		t.Errorf("Status(outside repo) branch = %q, want empty", b)
	}
}

func TestErrGitNotFound_Sentinel(t *testing.T) {
	t.Parallel()
	wrapped := errors.Join(errors.New("doctor"), ErrGitNotFound)
	if !errors.Is(wrapped, ErrGitNotFound) {
		t.Error("wrapped ErrGitNotFound should match with errors.Is")
	}
}
