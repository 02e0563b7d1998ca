// Package env scopes dispatched work to a project's execution environment.
//
// The ambient execution context (working directory, output placement,
// process environment, caller-local state) is an explicit [Ambient] value
// owned by the session. [Executor.WithEnvironment] overrides it for the
// extent of one unit of work and restores every field afterwards, whether
// the work returns, fails or panics. The process working directory is
// never changed.
package env

import (
	"context"
	"maps"
	"os"
	"slices"
	"strings"
)

// Placement selects where command output is shown.
type Placement string

const (
	// PlacementDefault shows output in the invoking terminal.
	PlacementDefault Placement = "default"
	// PlacementOtherWindow shows output in another window when possible.
	PlacementOtherWindow Placement = "other-window"
)

// PlacementFor maps the prefer-other-window flag to a placement.
func PlacementFor(preferOtherWindow bool) Placement {
	if preferOtherWindow {
		return PlacementOtherWindow
	}
	return PlacementDefault
}

// Ambient is the execution context dispatched work observes.
type Ambient struct {
	Dir       string
	Placement Placement
	Env       []string       // KEY=VALUE pairs for spawned processes
	Locals    map[string]any // caller-local transient state, hidden from scoped work
}

// FromProcess captures the ambient context of the running process.
func FromProcess() (*Ambient, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return &Ambient{
		Dir:       dir,
		Placement: PlacementDefault,
		Env:       os.Environ(),
		Locals:    make(map[string]any),
	}, nil
}

// Lookup returns the value of key in the ambient environment.
func (a *Ambient) Lookup(key string) (string, bool) {
	return Lookup(a.Env, key)
}

// Clone returns a deep copy of a.
func (a *Ambient) Clone() *Ambient {
	c := *a
	c.Env = slices.Clone(a.Env)
	c.Locals = maps.Clone(a.Locals)
	return &c
}

type ambientKey struct{}

// WithAmbient attaches a to the context.
func WithAmbient(ctx context.Context, a *Ambient) context.Context {
	return context.WithValue(ctx, ambientKey{}, a)
}

// FromContext returns the ambient context attached to ctx, or nil.
func FromContext(ctx context.Context) *Ambient {
	a, _ := ctx.Value(ambientKey{}).(*Ambient)
	return a
}

// Lookup returns the value of key in a KEY=VALUE list. Later entries win.
func Lookup(env []string, key string) (string, bool) {
	prefix := key + "="
	for i := len(env) - 1; i >= 0; i-- {
		if v, ok := strings.CutPrefix(env[i], prefix); ok {
			return v, true
		}
	}
	return "", false
}

// Apply returns env with vars applied. A nil value unsets the variable.
// The input slice is not modified.
func Apply(env []string, vars map[string]*string) []string {
	if len(vars) == 0 {
		return slices.Clone(env)
	}
	result := make([]string, 0, len(env)+len(vars))
	for _, kv := range env {
		key, _, _ := strings.Cut(kv, "=")
		if _, overridden := vars[key]; !overridden {
			result = append(result, kv)
		}
	}
	for _, key := range slices.Sorted(maps.Keys(vars)) {
		if v := vars[key]; v != nil {
			result = append(result, key+"="+*v)
		}
	}
	return result
}
