package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raphi011/pm/internal/commands"
	"github.com/raphi011/pm/internal/config"
	"github.com/raphi011/pm/internal/dispatch"
	"github.com/raphi011/pm/internal/env"
	"github.com/raphi011/pm/internal/git"
	"github.com/raphi011/pm/internal/history"
	"github.com/raphi011/pm/internal/project"
	"github.com/raphi011/pm/internal/registry"
	"github.com/raphi011/pm/internal/runner"
	"github.com/raphi011/pm/internal/scope"
	"github.com/raphi011/pm/internal/session"
	"github.com/raphi011/pm/internal/storage"
	"github.com/raphi011/pm/internal/tmux"
	"github.com/raphi011/pm/internal/trust"
	"github.com/raphi011/pm/internal/ui/prompt"
	"github.com/raphi011/pm/internal/workspace"
)

// app holds the components of one pm invocation.
type app struct {
	cfg        *config.Config
	dir        string // invoking directory
	resolver   *project.Resolver
	commands   *commands.Registry
	runner     *runner.Shell
	dispatcher *dispatch.Dispatcher
	history    string // switch history file
}

func newApp(ctx context.Context) (*app, error) {
	return newAppWith(ctx, confirm)
}

// newAppWith wires an app whose trust checker asks confirm about undecided
// local configuration. A nil confirm treats it as untrusted.
func newAppWith(ctx context.Context, confirm trust.ConfirmFunc) (*app, error) {
	cfg := config.FromContext(ctx)

	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	registryPath, err := orDefault(cfg.RegistryPath, registry.DefaultPath)
	if err != nil {
		return nil, err
	}
	trustPath, err := orDefault(cfg.TrustedPath, trust.DefaultPath)
	if err != nil {
		return nil, err
	}
	logDir, err := orDefault(cfg.LogDir, func() (string, error) {
		state, err := storage.StateDir()
		return filepath.Join(state, "logs"), err
	})
	if err != nil {
		return nil, err
	}
	historyPath, err := history.DefaultPath()
	if err != nil {
		return nil, err
	}

	opts := project.Options{
		Workspace:   workspace.New(),
		Store:       registry.NewStore(registryPath),
		InvokingDir: dir,
	}
	if tmux.Available() {
		opts.OpenDirs = tmux.PaneDirs
	}

	ambient, err := env.FromProcess()
	if err != nil {
		return nil, fmt.Errorf("capture environment: %w", err)
	}
	executor := env.NewExecutor(ambient, env.Loaders(cfg)...)
	shell := runner.NewShell(runner.Options{Shell: cfg.Shell, LogDir: logDir})

	checker := trust.NewChecker(trust.NewStore(trustPath), cfg.TrustAll, confirm)

	return &app{
		cfg:        cfg,
		dir:        dir,
		resolver:   project.NewResolver(opts),
		commands:   commands.NewRegistry(ctx, cfg, checker),
		runner:     shell,
		dispatcher: dispatch.New(executor, shell, nil),
		history:    historyPath,
	}, nil
}

func orDefault(path string, def func() (string, error)) (string, error) {
	if path != "" {
		return path, nil
	}
	return def()
}

// confirm asks a trust question on the terminal. A cancelled prompt is a no.
func confirm(_ context.Context, question string) (bool, error) {
	res, err := prompt.Confirm(question)
	if err != nil {
		return false, err
	}
	return res.Confirmed && !res.Cancelled, nil
}

// store creates the root scope store of a session.
func (a *app) store() *scope.Store {
	return scope.NewStore(scope.Deps{
		Resolver:          a.resolver,
		Commands:          a.commands,
		InvokingDir:       a.dir,
		PreferOtherWindow: a.cfg.PreferOtherWindow,
	})
}

// session creates a menu session on store.
func (a *app) session(store *scope.Store) *session.Session {
	return session.New(session.Options{
		Store:         store,
		Dispatcher:    a.dispatcher,
		Projects:      a.resolver,
		Runner:        a.runner,
		Shell:         a.cfg.Shell,
		RememberDepth: a.cfg.RememberDepth,
		InvokingDir:   a.dir,
		Hyperlinks:    prompt.Interactive(),
		History:       a.history,
		Status:        git.Status,
	})
}

// registerBuiltins makes the menu's built-in actions available to custom
// commands dispatched without opening the menu.
func (a *app) registerBuiltins(store *scope.Store) {
	a.session(store).RegisterBuiltins()
}

// project resolves ref to a project: the working directory when empty, an
// existing directory, or else a known project matched by name or fuzzy query.
func (a *app) project(ctx context.Context, ref string) (project.Project, error) {
	if ref == "" {
		return a.resolver.Resolve(ctx, a.dir)
	}
	if fi, err := os.Stat(ref); err == nil && fi.IsDir() {
		return a.resolver.Resolve(ctx, ref)
	}
	matches := a.resolver.Match(ctx, ref)
	if len(matches) == 0 {
		return project.Project{}, fmt.Errorf("%w: no known project matches %q", project.ErrNotFound, ref)
	}
	return matches[0], nil
}

// scoped returns a session store with ref's project selected.
func (a *app) scoped(ctx context.Context, ref string) (*scope.Store, project.Project, error) {
	p, err := a.project(ctx, ref)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) && ref == "" {
			return nil, p, fmt.Errorf("%w (use --project to pick one)", err)
		}
		return nil, p, err
	}
	store := a.store()
	store.Build(ctx, scope.Overrides{SelectedProject: &p})
	return store, p, nil
}
