// Package dispatch runs custom command specs.
//
// A command's type picks the strategy:
//
//   - bare-call runs the named action as-is.
//   - call runs the action inside the project environment with its
//     instance name available through [InstanceName].
//   - compile resolves the command to a shell command line (a literal, or
//     the output of a registered producer), expands placeholders and runs
//     it through the runner back end in the project environment, under the
//     instance name.
//
// Instance names are "{project}-command|{identifier}". Specs sharing an
// identifier share a name; the dispatcher never blocks a second run, the
// back end only warns about it.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raphi011/pm/internal/commands"
	"github.com/raphi011/pm/internal/env"
	"github.com/raphi011/pm/internal/log"
	"github.com/raphi011/pm/internal/project"
	"github.com/raphi011/pm/internal/runner"
)

var (
	// ErrUnknownType is returned for a spec type outside bare-call, call and compile.
	ErrUnknownType = errors.New("unknown command type")
	// ErrUnknownAction is returned when a spec names an unregistered action.
	ErrUnknownAction = errors.New("unknown action")
)

// Name returns the instance name for identifier in p.
func Name(p project.Project, identifier string) string {
	return p.Name() + "-command|" + identifier
}

type instanceKey struct{}

// WithInstanceName binds an instance name to the context.
func WithInstanceName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, instanceKey{}, name)
}

// InstanceName returns the instance name of the running call, if any.
func InstanceName(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(instanceKey{}).(string)
	return name, ok
}

// Dispatcher invokes command specs.
type Dispatcher struct {
	executor *env.Executor
	backend  runner.Backend
	actions  *Actions
}

// New creates a dispatcher.
func New(executor *env.Executor, backend runner.Backend, actions *Actions) *Dispatcher {
	if actions == nil {
		actions = NewActions()
	}
	return &Dispatcher{executor: executor, backend: backend, actions: actions}
}

// Actions returns the dispatcher's action table.
func (d *Dispatcher) Actions() *Actions {
	return d.actions
}

// Invoke runs spec against p. Configuration errors (unknown type or
// action) are returned before anything executes.
func (d *Dispatcher) Invoke(ctx context.Context, spec commands.Spec, p project.Project, preferOtherWindow bool) error {
	name := Name(p, spec.InstanceIdentifier())
	log.FromContext(ctx).Debug("dispatch", "key", spec.Key, "type", spec.Type, "instance", name)

	switch spec.Type {
	case commands.BareCall:
		fn, err := d.action(spec)
		if err != nil {
			return err
		}
		return fn(ctx, p)

	case commands.Call:
		fn, err := d.action(spec)
		if err != nil {
			return err
		}
		return d.executor.WithEnvironment(ctx, p, preferOtherWindow, func(ctx context.Context, _ *env.Ambient) error {
			return fn(WithInstanceName(ctx, name), p)
		})

	case commands.Compile:
		resolve, err := d.resolver(spec)
		if err != nil {
			return err
		}
		return d.executor.WithEnvironment(ctx, p, preferOtherWindow, func(ctx context.Context, a *env.Ambient) error {
			ctx = WithInstanceName(ctx, name)
			line, err := resolve(ctx, p)
			if err != nil {
				return fmt.Errorf("%s: %w", spec.Key, err)
			}
			_, err = d.backend.Shell(ctx, runner.RunSpec{
				Name:      name,
				Command:   Expand(line, Placeholders{Root: p.Root, Project: p.Name(), Instance: name}),
				Dir:       a.Dir,
				Env:       a.Env,
				Placement: a.Placement,
			})
			return err
		})

	default:
		return fmt.Errorf("%w %q for command %q: must be %q, %q or %q",
			ErrUnknownType, spec.Type, spec.Key, commands.BareCall, commands.Call, commands.Compile)
	}
}

func (d *Dispatcher) action(spec commands.Spec) (Action, error) {
	if !spec.Command.IsAction() {
		return nil, fmt.Errorf("command %q of type %q must name an action", spec.Key, spec.Type)
	}
	fn, ok := d.actions.Action(spec.Command.Action)
	if !ok {
		return nil, fmt.Errorf("%w %q for command %q (registered: %s)",
			ErrUnknownAction, spec.Command.Action, spec.Key, strings.Join(d.actions.Names(), ", "))
	}
	return fn, nil
}

func (d *Dispatcher) resolver(spec commands.Spec) (Producer, error) {
	if !spec.Command.IsAction() {
		line := spec.Command.Literal
		return func(context.Context, project.Project) (string, error) { return line, nil }, nil
	}
	fn, ok := d.actions.Producer(spec.Command.Action)
	if !ok {
		return nil, fmt.Errorf("%w %q for compile command %q (registered: %s)",
			ErrUnknownAction, spec.Command.Action, spec.Key, strings.Join(d.actions.Names(), ", "))
	}
	return fn, nil
}
