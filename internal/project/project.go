// Package project resolves filesystem paths to project handles and keeps the
// known-projects registry in sync.
//
// Resolution never prompts: a path outside every project yields [ErrNotFound]
// and leaves the registry untouched. Registry mutators log a warning when the
// registry cannot be written and never persist partial state.
package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphi011/pm/internal/log"
	"github.com/raphi011/pm/internal/registry"
	"github.com/raphi011/pm/internal/workspace"
)

// ErrNotFound is returned when no project root exists at or above a path.
var ErrNotFound = errors.New("no project found")

// Project is a resolved workspace root.
type Project struct {
	Root    string            // canonical absolute root
	Backend workspace.Backend // VCS backend, BackendNone if unversioned
}

// Name returns the base name of the project root.
func (p Project) Name() string {
	return filepath.Base(p.Root)
}

// Equal reports whether p and o share a canonical root.
func (p Project) Equal(o Project) bool {
	return p.Root == o.Root
}

// IsZero reports whether p is the unresolved zero value.
func (p Project) IsZero() bool {
	return p.Root == ""
}

// IsVCS reports whether p is a repository of the given kind. An empty kind
// matches any versioned backend.
func (p Project) IsVCS(kind workspace.Backend) bool {
	if p.Backend == "" || p.Backend == workspace.BackendNone {
		return false
	}
	return kind == "" || p.Backend == kind
}

func (p Project) entry() registry.Entry {
	e := registry.Entry{Root: p.Root, Name: p.Name()}
	if p.IsVCS("") {
		e.Backend = string(p.Backend)
	}
	return e
}

func fromEntry(e registry.Entry) Project {
	return Project{Root: e.Root, Backend: workspace.ParseBackend(e.Backend)}
}

// DirSource lists directories of currently open resources.
type DirSource func(ctx context.Context) ([]string, error)

// Options configures a Resolver.
type Options struct {
	Workspace   workspace.Workspace
	Store       *registry.Store
	OpenDirs    DirSource // optional
	InvokingDir string    // counted as an open resource by ActiveProjects
}

// Resolver maps paths to projects and maintains the registry.
type Resolver struct {
	ws          workspace.Workspace
	store       *registry.Store
	openDirs    DirSource
	invokingDir string
}

// NewResolver creates a resolver.
func NewResolver(opts Options) *Resolver {
	ws := opts.Workspace
	if ws == nil {
		ws = workspace.New()
	}
	return &Resolver{
		ws:          ws,
		store:       opts.Store,
		openDirs:    opts.OpenDirs,
		invokingDir: opts.InvokingDir,
	}
}

// Workspace returns the workspace boundary used for root detection.
func (r *Resolver) Workspace() workspace.Workspace {
	return r.ws
}

// Resolve finds the project containing path and remembers it.
func (r *Resolver) Resolve(ctx context.Context, path string) (Project, error) {
	p, err := r.Lookup(path)
	if err != nil {
		return Project{}, err
	}
	r.Remember(ctx, p)
	return p, nil
}

// Lookup finds the project containing path without touching the registry.
func (r *Resolver) Lookup(path string) (Project, error) {
	dir, err := Canonical(path)
	if err != nil {
		return Project{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	root, backend, ok := r.ws.FindRoot(dir)
	if !ok {
		return Project{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return Project{Root: root, Backend: backend}, nil
}

// Canonical returns the absolute, symlink-resolved form of path.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// Remember records p in the registry. Failures are logged as warnings.
func (r *Resolver) Remember(ctx context.Context, p Project) {
	if r.store == nil || p.IsZero() {
		return
	}
	err := r.store.Update(func(reg *registry.Registry) bool {
		return reg.Add(p.entry())
	})
	if err != nil {
		log.FromContext(ctx).Warnf("could not remember project %s: %v", p.Root, err)
	}
}

// ActiveProjects returns projects with open resources, starting with the
// invoking directory, deduplicated by root in order of first appearance.
func (r *Resolver) ActiveProjects(ctx context.Context) []Project {
	l := log.FromContext(ctx)

	var dirs []string
	if r.invokingDir != "" {
		dirs = append(dirs, r.invokingDir)
	}
	if r.openDirs != nil {
		open, err := r.openDirs(ctx)
		if err != nil {
			l.Debug("cannot list open directories", "error", err)
		}
		dirs = append(dirs, open...)
	}

	seen := make(map[string]bool)
	var result []Project
	for _, dir := range dirs {
		p, err := r.Lookup(dir)
		if err != nil || seen[p.Root] {
			continue
		}
		seen[p.Root] = true
		result = append(result, p)
	}
	return result
}

// Known returns registered projects whose roots still exist.
func (r *Resolver) Known(ctx context.Context) []Project {
	reg, ok := r.load(ctx)
	if !ok {
		return nil
	}
	return existing(ctx, reg.Projects)
}

// Match returns registered projects fuzzily matching query, best first.
func (r *Resolver) Match(ctx context.Context, query string) []Project {
	reg, ok := r.load(ctx)
	if !ok {
		return nil
	}
	return existing(ctx, reg.Match(query))
}

func (r *Resolver) load(ctx context.Context) (*registry.Registry, bool) {
	if r.store == nil {
		return nil, false
	}
	reg, err := r.store.Load()
	if err != nil {
		log.FromContext(ctx).Warnf("%v", err)
		return nil, false
	}
	return reg, true
}

// Forget removes p from the registry. Returns true if it was registered.
func (r *Resolver) Forget(ctx context.Context, p Project) bool {
	var removed bool
	r.update(ctx, "forget "+p.Root, func(reg *registry.Registry) bool {
		removed = reg.Remove(p.Root)
		return removed
	})
	return removed
}

// ForgetUnder removes every registered project at or beneath path.
func (r *Resolver) ForgetUnder(ctx context.Context, path string) []Project {
	dir := path
	if c, err := Canonical(path); err == nil {
		dir = c
	} else if abs, err := filepath.Abs(path); err == nil {
		dir = abs
	}

	var removed []Project
	r.update(ctx, "forget projects under "+dir, func(reg *registry.Registry) bool {
		for _, e := range reg.RemoveUnder(dir) {
			removed = append(removed, fromEntry(e))
		}
		return len(removed) > 0
	})
	return removed
}

// Zombies returns registered projects whose root no longer exists.
func (r *Resolver) Zombies(ctx context.Context) []Project {
	reg, ok := r.load(ctx)
	if !ok {
		return nil
	}
	var zombies []Project
	for _, e := range reg.Projects {
		if !isDir(e.Root) {
			zombies = append(zombies, fromEntry(e))
		}
	}
	return zombies
}

// ForgetZombies removes registered projects whose root no longer exists.
func (r *Resolver) ForgetZombies(ctx context.Context) []Project {
	var removed []Project
	r.update(ctx, "forget zombie projects", func(reg *registry.Registry) bool {
		for _, e := range reg.Projects {
			if !isDir(e.Root) {
				removed = append(removed, fromEntry(e))
			}
		}
		for _, p := range removed {
			reg.Remove(p.Root)
		}
		return len(removed) > 0
	})
	return removed
}

// RememberUnder registers every project root found beneath path, descending
// at most depth levels. Directories inside a discovered project and hidden
// directories are not searched. Returns the newly registered projects.
func (r *Resolver) RememberUnder(ctx context.Context, path string, depth int) []Project {
	found := r.discover(ctx, path, depth)
	if len(found) == 0 {
		return nil
	}

	var added []Project
	r.update(ctx, "remember projects under "+path, func(reg *registry.Registry) bool {
		for _, p := range found {
			if reg.Add(p.entry()) {
				added = append(added, p)
			}
		}
		return len(added) > 0
	})
	return added
}

func (r *Resolver) discover(ctx context.Context, path string, depth int) []Project {
	l := log.FromContext(ctx)

	base, err := Canonical(path)
	if err != nil {
		l.Warnf("cannot scan %s: %v", path, err)
		return nil
	}

	var found []Project
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			l.Debug("skipping unreadable directory", "path", p, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != base && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}

		if root, backend, ok := r.ws.FindRoot(p); ok && root == p {
			found = append(found, Project{Root: root, Backend: backend})
			return fs.SkipDir
		}
		if levels(base, p) >= depth {
			return fs.SkipDir
		}
		return nil
	})
	if err != nil {
		l.Warnf("scan %s: %v", base, err)
	}
	return found
}

func (r *Resolver) update(ctx context.Context, what string, fn func(reg *registry.Registry) bool) {
	if r.store == nil {
		return
	}
	if err := r.store.Update(fn); err != nil {
		log.FromContext(ctx).Warnf("could not %s: %v", what, err)
	}
}

func existing(ctx context.Context, entries []registry.Entry) []Project {
	l := log.FromContext(ctx)
	var result []Project
	for _, e := range entries {
		if !isDir(e.Root) {
			l.Debug("project root no longer exists", "project", e.Name, "root", e.Root)
			continue
		}
		result = append(result, fromEntry(e))
	}
	return result
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// levels returns how many directories p lies below base.
func levels(base, p string) int {
	rel, err := filepath.Rel(base, p)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
