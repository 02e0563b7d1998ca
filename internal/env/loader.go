package env

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/raphi011/pm/internal/cmd"
	"github.com/raphi011/pm/internal/config"
)

// Loader activates a directory-scoped tool for a directory.
type Loader interface {
	Name() string
	// Active reports whether the tool should be loaded given the ambient
	// context before the scope was entered.
	Active(a *Ambient) bool
	// Load returns the variables the tool sets for dir. A nil value unsets.
	Load(ctx context.Context, dir string, env []string) (map[string]*string, error)
}

// toolLoader runs a tool that prints its environment as JSON.
type toolLoader struct {
	name   string
	marker string // variable present while the tool's shell hook is active
	mode   string // config.EnvAuto, EnvAlways or EnvNever
	args   []string
	parse  func([]byte) (map[string]*string, error)
}

// Direnv returns the direnv loader ("direnv export json").
func Direnv(mode string) Loader {
	return &toolLoader{
		name:   "direnv",
		marker: "DIRENV_DIR",
		mode:   mode,
		args:   []string{"export", "json"},
		parse:  parseNullable,
	}
}

// Mise returns the mise loader ("mise env --json").
func Mise(mode string) Loader {
	return &toolLoader{
		name:   "mise",
		marker: "MISE_SHELL",
		mode:   mode,
		args:   []string{"env", "--json"},
		parse:  parseStrings,
	}
}

// Loaders returns the loaders configured in cfg.
func Loaders(cfg *config.Config) []Loader {
	return []Loader{Direnv(cfg.Env.Direnv), Mise(cfg.Env.Mise)}
}

func (t *toolLoader) Name() string { return t.name }

func (t *toolLoader) Active(a *Ambient) bool {
	switch t.mode {
	case config.EnvNever:
		return false
	case config.EnvAlways:
		return true
	}
	_, ok := a.Lookup(t.marker)
	return ok
}

func (t *toolLoader) Load(ctx context.Context, dir string, env []string) (map[string]*string, error) {
	if !cmd.Available(t.name) {
		return nil, fmt.Errorf("%s not found in PATH", t.name)
	}
	out, err := cmd.OutputEnv(ctx, dir, env, t.name, t.args...)
	if err != nil {
		return nil, err
	}
	vars, err := t.parse(out)
	if err != nil {
		return nil, fmt.Errorf("parse %s output: %w", t.name, err)
	}
	return vars, nil
}

// parseNullable decodes {"KEY": "value", "GONE": null}. Empty output means
// no changes.
func parseNullable(out []byte) (map[string]*string, error) {
	if len(out) == 0 {
		return nil, nil
	}
	var vars map[string]*string
	if err := json.Unmarshal(out, &vars); err != nil {
		return nil, err
	}
	return vars, nil
}

// parseStrings decodes {"KEY": "value"}.
func parseStrings(out []byte) (map[string]*string, error) {
	if len(out) == 0 {
		return nil, nil
	}
	var raw map[string]string
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, err
	}
	vars := make(map[string]*string, len(raw))
	for k, v := range raw {
		vars[k] = &v
	}
	return vars, nil
}
