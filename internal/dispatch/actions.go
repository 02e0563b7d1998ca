package dispatch

import (
	"context"
	"maps"
	"slices"

	"github.com/raphi011/pm/internal/project"
)

// Action is a callable run by call and bare-call specs.
type Action func(ctx context.Context, p project.Project) error

// Producer is a callable producing the shell command of a compile spec.
type Producer func(ctx context.Context, p project.Project) (string, error)

// Actions is the table of callables specs may reference by name.
type Actions struct {
	run     map[string]Action
	produce map[string]Producer
}

// NewActions returns an empty table.
func NewActions() *Actions {
	return &Actions{run: make(map[string]Action), produce: make(map[string]Producer)}
}

// Register binds name to an action, replacing any previous binding.
func (a *Actions) Register(name string, fn Action) {
	a.run[name] = fn
}

// RegisterProducer binds name to a command producer.
func (a *Actions) RegisterProducer(name string, fn Producer) {
	a.produce[name] = fn
}

// Action looks up an action.
func (a *Actions) Action(name string) (Action, bool) {
	fn, ok := a.run[name]
	return fn, ok
}

// Producer looks up a command producer.
func (a *Actions) Producer(name string) (Producer, bool) {
	fn, ok := a.produce[name]
	return fn, ok
}

// Names returns all registered names, sorted.
func (a *Actions) Names() []string {
	names := slices.Collect(maps.Keys(a.run))
	for name := range a.produce {
		if _, dup := a.run[name]; !dup {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
