// Package workspace is the boundary to project-root detection and file listing.
//
// A directory is a project root when it contains one of the configured
// markers. VCS markers also determine the project's backend tag. The nearest
// marked ancestor wins, so a nested repository shadows its parent.
package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/raphi011/pm/internal/git"
)

// Backend is a version-control backend tag.
type Backend string

const (
	BackendNone Backend = "none"
	BackendGit  Backend = "git"
	BackendHg   Backend = "hg"
	BackendSVN  Backend = "svn"
	BackendJJ   Backend = "jj"
)

// ParseBackend maps a stored tag to a Backend, treating unknown values as none.
func ParseBackend(s string) Backend {
	switch b := Backend(s); b {
	case BackendGit, BackendHg, BackendSVN, BackendJJ:
		return b
	}
	return BackendNone
}

// Workspace finds project roots and lists project files.
type Workspace interface {
	// FindRoot walks upward from dir and returns the nearest project root.
	FindRoot(dir string) (root string, backend Backend, ok bool)
	// ListFiles returns absolute paths of the project's files.
	ListFiles(ctx context.Context, root string, backend Backend) ([]string, error)
}

// vcsMarker pairs a marker entry with the backend it implies.
type vcsMarker struct {
	name    string
	backend Backend
}

// jj colocates with git, so it is checked first.
var vcsMarkers = []vcsMarker{
	{".jj", BackendJJ},
	{".git", BackendGit},
	{".hg", BackendHg},
	{".svn", BackendSVN},
}

// DefaultMarkers are non-VCS files that mark a project root.
var DefaultMarkers = []string{".pm.toml", ".pm.yaml", ".pm.yml", ".project"}

// Markers is the marker-based Workspace.
type Markers struct {
	plain []string
}

// New returns a marker-based workspace recognizing the VCS markers plus the
// given plain markers (DefaultMarkers when none are given).
func New(markers ...string) *Markers {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	return &Markers{plain: markers}
}

// FindRoot implements Workspace.
func (m *Markers) FindRoot(dir string) (string, Backend, bool) {
	for {
		for _, vm := range vcsMarkers {
			if exists(filepath.Join(dir, vm.name)) {
				return dir, vm.backend, true
			}
		}
		for _, name := range m.plain {
			if exists(filepath.Join(dir, name)) {
				return dir, BackendNone, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", BackendNone, false
		}
		dir = parent
	}
}

// ListFiles implements Workspace. Git projects use git's view of the tree;
// everything else is walked, skipping VCS metadata directories.
func (m *Markers) ListFiles(ctx context.Context, root string, backend Backend) ([]string, error) {
	if backend == BackendGit && git.CheckGit() == nil {
		return git.ListFiles(ctx, root)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && isVCSDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func isVCSDir(name string) bool {
	for _, vm := range vcsMarkers {
		if vm.name == name {
			return true
		}
	}
	return false
}

// exists reports whether path exists; .git may be a file (worktrees).
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
