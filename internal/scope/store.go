package scope

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/raphi011/pm/internal/commands"
	"github.com/raphi011/pm/internal/log"
	"github.com/raphi011/pm/internal/project"
)

// ErrNoProject is returned by EnsureSelected when no project could be selected.
var ErrNoProject = errors.New("no project selected")

// Resolver maps paths to projects and remembers projects.
type Resolver interface {
	Resolve(ctx context.Context, path string) (project.Project, error)
	Remember(ctx context.Context, p project.Project)
}

// CommandLoader loads the custom commands of a project.
type CommandLoader interface {
	Load(ctx context.Context, p project.Project) []commands.Spec
}

// ProjectPrompt asks the user to pick a project.
type ProjectPrompt func(ctx context.Context) (project.Project, error)

// Deps are the collaborators of a store tree.
type Deps struct {
	Resolver          Resolver
	Commands          CommandLoader
	InvokingDir       string
	PreferOtherWindow bool // configured default
}

// session is shared by every store of one menu session.
type session struct {
	deps   Deps
	memo   map[string][]commands.Spec // project root -> commands
	chosen project.Project            // project picked by the session prompt
}

func (s *session) load(ctx context.Context, p project.Project) []commands.Spec {
	if specs, ok := s.memo[p.Root]; ok {
		return slices.Clone(specs)
	}
	var specs []commands.Spec
	if s.deps.Commands != nil {
		specs = s.deps.Commands.Load(ctx, p)
	}
	s.memo[p.Root] = specs
	return slices.Clone(specs)
}

// Store holds the current scope of a session or nested menu.
type Store struct {
	sess    *session
	parent  *Store
	current *Scope // nil until the first Build
}

// NewStore creates the root store of a new session.
func NewStore(deps Deps) *Store {
	return &Store{sess: &session{deps: deps, memo: make(map[string][]commands.Spec)}}
}

// Build computes a new current scope from the previous one and o:
// selected = override, else previous, else default; the placement flag
// likewise falls back to the configured default. Custom commands are
// loaded for the selected project (memoized per session) and every
// project placed in scope is remembered.
func (s *Store) Build(ctx context.Context, o Overrides) *Scope {
	prev := s.current
	next := &Scope{}

	switch {
	case o.DefaultProject != nil:
		next.DefaultProject = *o.DefaultProject
	case prev != nil:
		next.DefaultProject = prev.DefaultProject
	default:
		next.DefaultProject = s.resolveDefault(ctx)
	}

	switch {
	case o.SelectedProject != nil:
		next.SelectedProject = *o.SelectedProject
	case prev != nil && !prev.SelectedProject.IsZero():
		next.SelectedProject = prev.SelectedProject
	default:
		next.SelectedProject = next.DefaultProject
	}

	switch {
	case o.PreferOtherWindow != nil:
		next.PreferOtherWindow = *o.PreferOtherWindow
	case prev != nil:
		next.PreferOtherWindow = prev.PreferOtherWindow
	default:
		next.PreferOtherWindow = s.sess.deps.PreferOtherWindow
	}

	s.remember(ctx, next.DefaultProject)
	s.remember(ctx, next.SelectedProject)
	s.fill(ctx, next)

	s.current = next
	return next.clone()
}

func (s *Store) resolveDefault(ctx context.Context) project.Project {
	if s.sess.deps.Resolver == nil || s.sess.deps.InvokingDir == "" {
		return project.Project{}
	}
	p, err := s.sess.deps.Resolver.Resolve(ctx, s.sess.deps.InvokingDir)
	if err != nil {
		log.FromContext(ctx).Debug("no default project", "dir", s.sess.deps.InvokingDir, "error", err)
		return project.Project{}
	}
	return p
}

func (s *Store) remember(ctx context.Context, p project.Project) {
	if s.sess.deps.Resolver != nil && !p.IsZero() {
		s.sess.deps.Resolver.Remember(ctx, p)
	}
}

// fill loads custom commands for sc's selected project, or marks them
// stale while no project is selected.
func (s *Store) fill(ctx context.Context, sc *Scope) {
	if sc.SelectedProject.IsZero() {
		sc.CustomCommands = nil
		sc.stale = true
		return
	}
	sc.CustomCommands = s.sess.load(ctx, sc.SelectedProject)
	sc.stale = false
}

// Scope returns a copy of the current scope, building it on first use.
func (s *Store) Scope(ctx context.Context) *Scope {
	if s.current == nil {
		return s.Build(ctx, Overrides{})
	}
	return s.current.clone()
}

// Get returns the value of key in the current scope.
func (s *Store) Get(ctx context.Context, key Key) (any, error) {
	return s.Scope(ctx).Get(key)
}

// Set replaces one field of the current scope, preserving all others.
// Setting the selected project remembers it and marks the custom commands
// stale until Refresh. The default project and custom commands are
// read-only.
func (s *Store) Set(ctx context.Context, key Key, value any) error {
	next := s.Scope(ctx).clone()

	switch key {
	case KeySelectedProject:
		p, ok := value.(project.Project)
		if !ok {
			return fmt.Errorf("%s: want project.Project, got %T", key, value)
		}
		if !p.Equal(next.SelectedProject) {
			next.SelectedProject = p
			next.stale = true
		}
		s.remember(ctx, p)
	case KeyPreferOtherWindow:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%s: want bool, got %T", key, value)
		}
		next.PreferOtherWindow = b
	case KeyDefaultProject, KeyCustomCommands:
		return fmt.Errorf("%w: %s", ErrReadOnly, key)
	default:
		return unknownKey(key)
	}

	s.current = next
	return nil
}

// Refresh reloads derived fields of the current scope.
func (s *Store) Refresh(ctx context.Context) *Scope {
	next := s.Scope(ctx).clone()
	s.fill(ctx, next)
	s.current = next
	return next.clone()
}

// Commands returns the custom commands of the selected project, refreshing
// them first if the selection changed.
func (s *Store) Commands(ctx context.Context) []commands.Spec {
	sc := s.Scope(ctx)
	if sc.stale && !sc.SelectedProject.IsZero() {
		sc = s.Refresh(ctx)
	}
	return sc.CustomCommands
}

// Child creates a store for a nested menu from a copy of the current scope
// with o applied. The parent is not modified.
func (s *Store) Child(ctx context.Context, o Overrides) *Store {
	child := &Store{sess: s.sess, parent: s, current: s.Scope(ctx)}
	child.Build(ctx, o)
	return child
}

// WriteBack copies the selected project and placement flag of s into its
// parent store. It is a no-op on a root store.
func (s *Store) WriteBack(ctx context.Context) {
	if s.parent == nil || s.current == nil {
		return
	}
	next := s.parent.Scope(ctx).clone()
	if !next.SelectedProject.Equal(s.current.SelectedProject) {
		next.SelectedProject = s.current.SelectedProject
		next.CustomCommands = slices.Clone(s.current.CustomCommands)
		next.stale = s.current.stale
	}
	next.PreferOtherWindow = s.current.PreferOtherWindow
	s.parent.current = next
}

// EnsureSelected returns the selected project, asking prompt for one if
// none is selected. A project picked once is reused by every store of the
// session, so the user is asked at most once per session. A cancelled or
// failed prompt abandons the request and leaves the scope unchanged.
func (s *Store) EnsureSelected(ctx context.Context, prompt ProjectPrompt) (project.Project, error) {
	sc := s.Scope(ctx)
	if !sc.SelectedProject.IsZero() {
		return sc.SelectedProject, nil
	}

	if !s.sess.chosen.IsZero() {
		s.Build(ctx, Overrides{SelectedProject: &s.sess.chosen})
		return s.sess.chosen, nil
	}
	if prompt == nil {
		return project.Project{}, ErrNoProject
	}

	p, err := prompt(ctx)
	if err != nil {
		return project.Project{}, err
	}
	if p.IsZero() {
		return project.Project{}, ErrNoProject
	}
	s.sess.chosen = p
	s.Build(ctx, Overrides{SelectedProject: &p})
	return p, nil
}
