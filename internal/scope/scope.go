// Package scope holds the hierarchical state of a menu session.
//
// A [Scope] is an immutable snapshot of four keys: the default project
// inferred from the invoking directory, the selected project commands
// target, the prefer-other-window flag, and the custom commands of the
// selected project. A [Store] owns the one writable reference to the
// current snapshot of a session. Nested menus work on child stores built
// from a copy of the parent's snapshot; they never mutate the parent
// unless [Store.WriteBack] is called.
package scope

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/raphi011/pm/internal/commands"
	"github.com/raphi011/pm/internal/project"
)

// Key names a scope field.
type Key string

const (
	KeyDefaultProject    Key = "default-project"
	KeySelectedProject   Key = "selected-project"
	KeyPreferOtherWindow Key = "prefer-other-window"
	KeyCustomCommands    Key = "custom-commands"
)

// Keys lists every scope key.
var Keys = []Key{KeyDefaultProject, KeySelectedProject, KeyPreferOtherWindow, KeyCustomCommands}

var (
	// ErrReadOnly is returned by Set for keys that are derived or fixed per session.
	ErrReadOnly = errors.New("scope key is read-only")
	// ErrUnknownKey is returned for keys outside Keys.
	ErrUnknownKey = errors.New("unknown scope key")
)

// Scope is an immutable snapshot of session state.
type Scope struct {
	DefaultProject    project.Project // zero when the invoking directory is outside any project
	SelectedProject   project.Project // zero until resolved
	PreferOtherWindow bool
	CustomCommands    []commands.Spec // commands of SelectedProject

	stale bool // CustomCommands do not belong to SelectedProject
}

// Overrides replace scope fields when building a scope. Nil fields inherit.
type Overrides struct {
	DefaultProject    *project.Project
	SelectedProject   *project.Project
	PreferOtherWindow *bool
}

// Get returns the value stored under key.
func (s *Scope) Get(key Key) (any, error) {
	switch key {
	case KeyDefaultProject:
		return s.DefaultProject, nil
	case KeySelectedProject:
		return s.SelectedProject, nil
	case KeyPreferOtherWindow:
		return s.PreferOtherWindow, nil
	case KeyCustomCommands:
		return slices.Clone(s.CustomCommands), nil
	}
	return nil, unknownKey(key)
}

// Stale reports whether CustomCommands must be reloaded for SelectedProject.
func (s *Scope) Stale() bool {
	return s.stale
}

func (s *Scope) clone() *Scope {
	c := *s
	c.CustomCommands = slices.Clone(s.CustomCommands)
	return &c
}

func unknownKey(key Key) error {
	known := make([]string, len(Keys))
	for i, k := range Keys {
		known[i] = string(k)
	}
	return fmt.Errorf("%w %q: must be one of %s", ErrUnknownKey, key, strings.Join(known, ", "))
}
