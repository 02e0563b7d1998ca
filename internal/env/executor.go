package env

import (
	"context"
	"slices"

	"github.com/raphi011/pm/internal/log"
	"github.com/raphi011/pm/internal/project"
)

// Work is a unit of work run inside a scoped environment. a is the
// session's ambient context with the scoped overrides applied.
type Work func(ctx context.Context, a *Ambient) error

// Executor runs work in project-scoped environments.
type Executor struct {
	ambient *Ambient
	loaders []Loader
}

// NewExecutor creates an executor over the session's ambient context.
// Loaders are consulted independently; their order does not matter.
func NewExecutor(ambient *Ambient, loaders ...Loader) *Executor {
	return &Executor{ambient: ambient, loaders: loaders}
}

// Ambient returns the session's ambient context.
func (e *Executor) Ambient() *Ambient {
	return e.ambient
}

// WithEnvironment runs work with the working directory set to p's root,
// output placement chosen by preferOtherWindow, directory tooling that was
// already active reloaded for the root, and caller-local state hidden.
// The ambient context is restored before WithEnvironment returns or
// re-panics; work's error is returned unchanged.
func (e *Executor) WithEnvironment(ctx context.Context, p project.Project, preferOtherWindow bool, work Work) error {
	saved := *e.ambient
	defer func() { *e.ambient = saved }()

	env := slices.Clone(saved.Env)
	for _, ld := range e.loaders {
		env = e.load(ctx, ld, &saved, p.Root, env)
	}

	e.ambient.Dir = p.Root
	e.ambient.Placement = PlacementFor(preferOtherWindow)
	e.ambient.Env = env
	e.ambient.Locals = make(map[string]any)

	log.FromContext(ctx).Debug("entering project environment",
		"root", p.Root, "placement", e.ambient.Placement)

	return work(WithAmbient(ctx, e.ambient), e.ambient)
}

// load applies ld to env if the tool was active before entering scope.
// Failures are reported as warnings and leave env unchanged.
func (e *Executor) load(ctx context.Context, ld Loader, before *Ambient, dir string, env []string) []string {
	if !ld.Active(before) {
		return env
	}
	vars, err := ld.Load(ctx, dir, env)
	if err != nil {
		log.FromContext(ctx).Warnf("%s: %v", ld.Name(), err)
		return env
	}
	return Apply(env, vars)
}
