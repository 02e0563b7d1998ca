// Package registry manages the known-projects registry at ~/.pm/projects.json.
//
// The registry is shared by every pm process. Writes go through [Store.Update],
// which holds an exclusive file lock, re-reads the file, applies the mutation
// and writes the result atomically, so concurrent sessions merge instead of
// overwriting each other.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/raphi011/pm/internal/storage"
)

// ErrUninitialized is returned when a write would persist the uninitialized
// registry value (a nil project list).
var ErrUninitialized = errors.New("refusing to persist uninitialized project registry")

// Entry is a remembered project root.
type Entry struct {
	Root    string `json:"root"`              // canonical absolute root
	Name    string `json:"name"`              // display name (root base name)
	Backend string `json:"backend,omitempty"` // VCS backend tag, empty for none
}

// Registry holds all remembered projects in insertion order.
// A nil Projects slice marks a value that was never loaded and must not be saved.
type Registry struct {
	Projects []Entry `json:"projects"`
}

// DefaultPath returns ~/.pm/projects.json.
func DefaultPath() (string, error) {
	dir, err := storage.StateDir()
	if err != nil {
		return "", fmt.Errorf("get state directory: %w", err)
	}
	return filepath.Join(dir, "projects.json"), nil
}

// Store reads and writes a registry file.
type Store struct {
	path string
}

// NewStore returns a store for the registry file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the registry file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the registry. A missing file yields an empty, initialized registry.
func (s *Store) Load() (*Registry, error) {
	var reg Registry
	if err := storage.LoadJSON(s.path, &reg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Registry{Projects: []Entry{}}, nil
		}
		return nil, fmt.Errorf("load registry %s: %w", s.path, err)
	}
	if reg.Projects == nil {
		reg.Projects = []Entry{}
	}
	return &reg, nil
}

// save writes reg atomically. It refuses nil registries and nil project
// lists. Writers go through Update, so an empty list only reaches disk as
// the result of a mutation applied to freshly loaded content.
func (s *Store) save(reg *Registry) error {
	if reg == nil || reg.Projects == nil {
		return ErrUninitialized
	}
	if err := storage.SaveJSON(s.path, reg); err != nil {
		return fmt.Errorf("save registry %s: %w", s.path, err)
	}
	return nil
}

// Update applies fn to the current on-disk registry under an exclusive lock
// and persists the result if fn reports a change.
func (s *Store) Update(fn func(reg *Registry) (changed bool)) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}

	lock := storage.NewFileLock(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock registry: %w", err)
	}
	defer lock.Unlock()

	reg, err := s.Load()
	if err != nil {
		return err
	}
	if !fn(reg) {
		return nil
	}
	return s.save(reg)
}

// Add remembers e unless its root is already present. Returns true if added.
func (r *Registry) Add(e Entry) bool {
	if r.Contains(e.Root) {
		return false
	}
	r.Projects = append(r.Projects, e)
	return true
}

// Remove forgets the project with the given root. Returns true if removed.
func (r *Registry) Remove(root string) bool {
	i := slices.IndexFunc(r.Projects, func(e Entry) bool { return e.Root == root })
	if i < 0 {
		return false
	}
	r.Projects = slices.Delete(r.Projects, i, i+1)
	return true
}

// RemoveUnder forgets every project whose root is dir or lies beneath it.
// Returns the removed entries.
func (r *Registry) RemoveUnder(dir string) []Entry {
	var removed []Entry
	r.Projects = slices.DeleteFunc(r.Projects, func(e Entry) bool {
		if IsUnder(e.Root, dir) {
			removed = append(removed, e)
			return true
		}
		return false
	})
	return removed
}

// Contains reports whether root is remembered.
func (r *Registry) Contains(root string) bool {
	return slices.ContainsFunc(r.Projects, func(e Entry) bool { return e.Root == root })
}

// Find looks up a project by root or name.
func (r *Registry) Find(ref string) (*Entry, error) {
	for i := range r.Projects {
		if r.Projects[i].Root == ref || r.Projects[i].Name == ref {
			return &r.Projects[i], nil
		}
	}
	return nil, fmt.Errorf("project not found: %s", ref)
}

// entrySource implements fuzzy.Source over "name root" strings.
type entrySource []Entry

func (s entrySource) String(i int) string { return s[i].Name + " " + s[i].Root }
func (s entrySource) Len() int            { return len(s) }

// Match returns remembered projects fuzzily matching query, best match first.
// An empty query returns all projects in registry order.
func (r *Registry) Match(query string) []Entry {
	if query == "" {
		return slices.Clone(r.Projects)
	}
	matches := fuzzy.FindFrom(query, entrySource(r.Projects))
	result := make([]Entry, 0, len(matches))
	for _, m := range matches {
		result = append(result, r.Projects[m.Index])
	}
	return result
}

// IsUnder reports whether path equals dir or lies beneath it.
func IsUnder(path, dir string) bool {
	if path == dir {
		return true
	}
	prefix := strings.TrimSuffix(dir, string(filepath.Separator)) + string(filepath.Separator)
	return strings.HasPrefix(path, prefix)
}
