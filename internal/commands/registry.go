package commands

import (
	"context"
	"slices"

	"github.com/raphi011/pm/internal/config"
	"github.com/raphi011/pm/internal/log"
	"github.com/raphi011/pm/internal/project"
)

// LocalKey is the directory-local config key holding custom commands.
const LocalKey = "commands"

// TrustChecker decides whether a local config source may be evaluated.
type TrustChecker interface {
	Allow(ctx context.Context, root, source string) bool
}

// Registry resolves the custom command set for a project.
type Registry struct {
	defaults []Spec
	trust    TrustChecker
}

// NewRegistry validates the default command set from cfg. Invalid defaults
// are reported and replaced by an empty set. A nil trust checker trusts
// every local source.
func NewRegistry(ctx context.Context, cfg *config.Config, trust TrustChecker) *Registry {
	defaults, err := Validate(cfg.DefaultCommands())
	if err != nil {
		log.FromContext(ctx).Warnf("invalid default commands in global config: %v", err)
		defaults = nil
	}
	return &Registry{defaults: defaults, trust: trust}
}

// Defaults returns a copy of the default command set.
func (r *Registry) Defaults() []Spec {
	return slices.Clone(r.defaults)
}

// Load returns the command set for p: its local commands when present,
// trusted and valid, otherwise the defaults.
func (r *Registry) Load(ctx context.Context, p project.Project) []Spec {
	l := log.FromContext(ctx)

	local, err := config.LoadLocal(p.Root)
	if err != nil {
		l.Warnf("%v; using default commands", err)
		return r.Defaults()
	}
	raw, ok := local.Get(LocalKey)
	if !ok {
		return r.Defaults()
	}
	if r.trust != nil && !r.trust.Allow(ctx, p.Root, local.Source) {
		return r.Defaults()
	}

	specs, err := Validate(raw)
	if err != nil {
		l.Warnf("rejecting commands in %s: %v; using default commands", local.Source, err)
		return r.Defaults()
	}
	l.Debug("loaded local commands", "source", local.Source, "count", len(specs))
	return specs
}
