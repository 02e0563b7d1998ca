// Package session runs pm's interactive menus.
//
// A session is a small state machine over four menus: Main, CustomDispatch,
// VCSDispatch and ManageProjects. Opening a submenu pushes it, backing out
// pops it, and leaving Main ends the session. VCSDispatch and
// ManageProjects work on the caller's scope store; CustomDispatch works on
// a child store so its project selection does not leak into the menu it
// was opened from. Menus are rebuilt before every choice, so switching
// projects refreshes the custom commands and whether the VCS menu is shown.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/raphi011/pm/internal/commands"
	"github.com/raphi011/pm/internal/dispatch"
	"github.com/raphi011/pm/internal/log"
	"github.com/raphi011/pm/internal/project"
	"github.com/raphi011/pm/internal/runner"
	"github.com/raphi011/pm/internal/scope"
	"github.com/raphi011/pm/internal/ui/prompt"
	"github.com/raphi011/pm/internal/ui/styles"
	"github.com/raphi011/pm/internal/workspace"
)

// Menu identifies a menu of the session.
type Menu string

const (
	MenuMain   Menu = "main"
	MenuCustom Menu = "custom"
	MenuVCS    Menu = "vcs"
	MenuManage Menu = "manage"
)

// Projects is the project registry as seen by the menus.
type Projects interface {
	Workspace() workspace.Workspace
	Known(ctx context.Context) []project.Project
	Zombies(ctx context.Context) []project.Project
	ActiveProjects(ctx context.Context) []project.Project
	Forget(ctx context.Context, p project.Project) bool
	ForgetUnder(ctx context.Context, path string) []project.Project
	ForgetZombies(ctx context.Context) []project.Project
	RememberUnder(ctx context.Context, path string, depth int) []project.Project
}

// Options wires a session.
type Options struct {
	Store         *scope.Store
	Dispatcher    *dispatch.Dispatcher
	Projects      Projects
	Runner        runner.Backend
	Chooser       Chooser
	Shell         string // interactive shell when SHELL is unset
	RememberDepth int
	InvokingDir   string
	Hyperlinks    bool   // link project roots in listings
	History       string // switch history file, empty disables
	Status        func(ctx context.Context, root string) (branch string, dirty bool)
	Copy          func(string) error // defaults to the system clipboard
}

// Session is one interactive menu session.
type Session struct {
	opts        Options
	lastCompile map[string]string // project root -> last compile command
	trail       []Menu            // menus in the order they were opened
}

// New creates a session.
func New(opts Options) *Session {
	if opts.Chooser == nil {
		opts.Chooser = Terminal{}
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	if opts.Shell == "" {
		opts.Shell = "/bin/sh"
	}
	return &Session{opts: opts, lastCompile: make(map[string]string)}
}

// Run registers the built-in actions and shows the main menu until the
// user leaves it.
func (s *Session) Run(ctx context.Context) error {
	s.RegisterBuiltins()
	return s.loop(ctx, MenuMain, s.opts.Store, s.mainMenu)
}

// entry is one menu line. A nil run leaves the menu.
type entry struct {
	key   string
	label string
	hint  string
	run   func(ctx context.Context, store *scope.Store) error
}

type builder func(ctx context.Context, store *scope.Store) (title string, entries []entry)

func (s *Session) loop(ctx context.Context, m Menu, store *scope.Store, build builder) error {
	s.trail = append(s.trail, m)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		heading, entries := build(ctx, store)

		options := make([]prompt.Option, len(entries))
		for i, e := range entries {
			options[i] = prompt.Option{Label: e.key + "  " + e.label, Hint: e.hint}
		}
		i, err := s.opts.Chooser.Choose(ctx, heading, options)
		if errors.Is(err, prompt.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}

		e := entries[i]
		if e.run == nil {
			return nil
		}
		if err := e.run(ctx, store); err != nil {
			if errors.Is(err, prompt.ErrNotInteractive) || ctx.Err() != nil {
				return err
			}
			report(ctx, e.label, err)
		}
	}
}

// report shows a failed menu action. Cancelled prompts are silent.
func report(ctx context.Context, what string, err error) {
	l := log.FromContext(ctx)
	if errors.Is(err, prompt.ErrCancelled) {
		l.Debug("cancelled", "action", what)
		return
	}
	l.Println(styles.ErrorStyle.Render(fmt.Sprintf("%s: %v", what, err)))
}

func title(name string, p project.Project) string {
	if p.IsZero() {
		return name + " (no project)"
	}
	return fmt.Sprintf("%s %s %s", name, styles.BackendSymbol(p.Backend), p.Name())
}

func back(label string) entry {
	return entry{key: "q", label: label}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// selected returns the store's project, asking for one if none is selected.
func (s *Session) selected(ctx context.Context, store *scope.Store) (project.Project, error) {
	return store.EnsureSelected(ctx, s.pickProject)
}

func (s *Session) invoke(ctx context.Context, store *scope.Store, spec commands.Spec) error {
	p, err := s.selected(ctx, store)
	if err != nil {
		return err
	}
	return s.opts.Dispatcher.Invoke(ctx, spec, p, store.Scope(ctx).PreferOtherWindow)
}
