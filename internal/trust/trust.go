// Package trust decides whether directory-local configuration may be used.
//
// Trust is a capability separate from parsing: commands read from a
// project's .pm.toml are only evaluated once the project root is trusted.
// Trusted roots persist in ~/.pm/trusted.json; undecided roots are asked
// about at most once per session.
package trust

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/raphi011/pm/internal/log"
	"github.com/raphi011/pm/internal/storage"
)

// DefaultPath returns ~/.pm/trusted.json.
func DefaultPath() (string, error) {
	dir, err := storage.StateDir()
	if err != nil {
		return "", fmt.Errorf("get state directory: %w", err)
	}
	return filepath.Join(dir, "trusted.json"), nil
}

type trustFile struct {
	Roots []string `json:"roots"`
}

// Store persists trusted project roots.
type Store struct {
	path string
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() (trustFile, error) {
	var f trustFile
	if err := storage.LoadJSON(s.path, &f); err != nil && !errors.Is(err, os.ErrNotExist) {
		return f, fmt.Errorf("load trust store %s: %w", s.path, err)
	}
	return f, nil
}

// Trusted reports whether root has been trusted.
func (s *Store) Trusted(root string) (bool, error) {
	f, err := s.load()
	if err != nil {
		return false, err
	}
	return slices.Contains(f.Roots, root), nil
}

// Trust records root as trusted.
func (s *Store) Trust(root string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create trust directory: %w", err)
	}

	lock := storage.NewFileLock(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock trust store: %w", err)
	}
	defer lock.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}
	if slices.Contains(f.Roots, root) {
		return nil
	}
	f.Roots = append(f.Roots, root)
	return storage.SaveJSON(s.path, f)
}

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(ctx context.Context, question string) (bool, error)

// Checker answers trust questions for one session.
type Checker struct {
	store    *Store
	all      bool
	confirm  ConfirmFunc
	decision map[string]bool
}

// NewChecker creates a session checker. With trustAll every source is
// trusted; a nil confirm treats undecided sources as untrusted.
func NewChecker(store *Store, trustAll bool, confirm ConfirmFunc) *Checker {
	return &Checker{
		store:    store,
		all:      trustAll,
		confirm:  confirm,
		decision: make(map[string]bool),
	}
}

// Allow reports whether the local config at source, belonging to root, may
// be evaluated. The user is asked at most once per root per checker;
// acceptance is persisted.
func (c *Checker) Allow(ctx context.Context, root, source string) bool {
	if c.all {
		return true
	}
	if ok, seen := c.decision[root]; seen {
		return ok
	}

	l := log.FromContext(ctx)
	ok := c.decide(ctx, root, source)
	c.decision[root] = ok
	if !ok {
		l.Warnf("ignoring untrusted local config %s", source)
	}
	return ok
}

func (c *Checker) decide(ctx context.Context, root, source string) bool {
	l := log.FromContext(ctx)

	if c.store != nil {
		trusted, err := c.store.Trusted(root)
		if err != nil {
			l.Warnf("%v", err)
		}
		if trusted {
			return true
		}
	}
	if c.confirm == nil {
		return false
	}

	ok, err := c.confirm(ctx, fmt.Sprintf("Trust commands from %s?", source))
	if err != nil {
		l.Debug("trust prompt failed", "source", source, "error", err)
		return false
	}
	if ok && c.store != nil {
		if err := c.store.Trust(root); err != nil {
			l.Warnf("could not persist trust for %s: %v", root, err)
		}
	}
	return ok
}
