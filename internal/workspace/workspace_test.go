package workspace

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func mkdirs(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatal(err)
		}
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindRoot(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	repo := filepath.Join(base, "repo")
	nested := filepath.Join(repo, "vendor", "lib")
	plain := filepath.Join(base, "plain")
	worktree := filepath.Join(base, "worktree")
	jj := filepath.Join(base, "jj")
	bare := filepath.Join(base, "bare", "deep")

	mkdirs(t,
		filepath.Join(repo, ".git"),
		filepath.Join(repo, "src", "pkg"),
		filepath.Join(nested, ".hg"),
		filepath.Join(plain, "docs"),
		worktree,
		filepath.Join(jj, ".jj"), filepath.Join(jj, ".git"),
		bare,
	)
	touch(t, filepath.Join(plain, ".pm.toml"))
	touch(t, filepath.Join(worktree, ".git"))

	tests := []struct {
		name        string
		dir         string
		wantRoot    string
		wantBackend Backend
		wantOK      bool
	}{
		{"git root itself", repo, repo, BackendGit, true},
		{"git subdirectory", filepath.Join(repo, "src", "pkg"), repo, BackendGit, true},
		{"nested repo shadows parent", nested, nested, BackendHg, true},
		{"plain marker", filepath.Join(plain, "docs"), plain, BackendNone, true},
		{"git worktree file", worktree, worktree, BackendGit, true},
		{"jj wins over colocated git", jj, jj, BackendJJ, true},
		{"no marker", bare, "", BackendNone, false},
	}

	ws := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root, backend, ok := ws.FindRoot(tt.dir)
			if ok != tt.wantOK || root != tt.wantRoot || backend != tt.wantBackend {
				t.Errorf("FindRoot(%s) = (%q, %q, %v), want (%q, %q, %v)",
					tt.dir, root, backend, ok, tt.wantRoot, tt.wantBackend, tt.wantOK)
			}
		})
	}
}

func TestListFilesWalksNonGitProjects(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mkdirs(t, filepath.Join(root, ".hg", "store"), filepath.Join(root, "src"))
	touch(t, filepath.Join(root, ".hg", "store", "data"))
	touch(t, filepath.Join(root, "src", "main.c"))
	touch(t, filepath.Join(root, "README"))

	files, err := New().ListFiles(context.Background(), root, BackendHg)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	want := []string{filepath.Join(root, "README"), filepath.Join(root, "src", "main.c")}
	slices.Sort(files)
	if !slices.Equal(files, want) {
		t.Errorf("ListFiles() = %v, want %v", files, want)
	}
}

func TestParseBackend(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Backend{"git": BackendGit, "jj": BackendJJ, "": BackendNone, "cvs": BackendNone} {
		if got := ParseBackend(in); got != want {
			t.Errorf("ParseBackend(%q) = %q, want %q", in, got, want)
		}
	}
}
