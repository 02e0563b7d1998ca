package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/raphi011/pm/internal/commands"
	"github.com/raphi011/pm/internal/history"
	"github.com/raphi011/pm/internal/log"
	"github.com/raphi011/pm/internal/output"
	"github.com/raphi011/pm/internal/project"
	"github.com/raphi011/pm/internal/scope"
	"github.com/raphi011/pm/internal/ui/prompt"
	"github.com/raphi011/pm/internal/ui/static"
	"github.com/raphi011/pm/internal/ui/styles"
	"github.com/raphi011/pm/internal/workspace"
)

// ErrNoProjects is returned when a project must be picked but none is known.
var ErrNoProjects = errors.New("no known projects; remember some from the manage projects menu")

func (s *Session) specEntry(spec commands.Spec) entry {
	return entry{
		key:   spec.Key,
		label: spec.Description,
		run: func(ctx context.Context, store *scope.Store) error {
			return s.invoke(ctx, store, spec)
		},
	}
}

func (s *Session) mainMenu(ctx context.Context, store *scope.Store) (string, []entry) {
	sc := store.Scope(ctx)
	p := sc.SelectedProject

	entries := []entry{
		s.specEntry(listFilesSpec),
		s.specEntry(shellSpec),
		s.specEntry(compileSpec),
		s.specEntry(shellCommandSpec),
	}
	if p.IsVCS("") {
		entries = append(entries, entry{key: "v", label: "Version control", hint: string(p.Backend), run: s.openVCS})
	}
	entries = append(entries,
		entry{key: "x", label: "Custom commands", run: s.openCustom},
		entry{key: "p", label: "Manage projects", run: s.openManage},
		entry{key: "o", label: "Prefer other window", hint: onOff(sc.PreferOtherWindow), run: togglePlacement},
		entry{key: "w", label: "Switch project", run: s.switchProject},
		back("Quit"),
	)
	return title("pm", p) + s.branch(ctx, p), entries
}

// branch describes the checked-out branch of a git project, marked with *
// when the work tree is dirty.
func (s *Session) branch(ctx context.Context, p project.Project) string {
	if !p.IsVCS(workspace.BackendGit) || s.opts.Status == nil {
		return ""
	}
	b, dirty := s.opts.Status(ctx, p.Root)
	if b == "" {
		return ""
	}
	if dirty {
		b += "*"
	}
	return " [" + b + "]"
}

func (s *Session) openVCS(ctx context.Context, store *scope.Store) error {
	if _, err := s.selected(ctx, store); err != nil {
		return err
	}
	return s.loop(ctx, MenuVCS, store, s.vcsMenu)
}

func (s *Session) vcsMenu(ctx context.Context, store *scope.Store) (string, []entry) {
	p := store.Scope(ctx).SelectedProject
	var entries []entry
	for _, spec := range vcsCommands[p.Backend] {
		entries = append(entries, s.specEntry(spec))
	}
	return title("Version control", p), append(entries, back("Back"))
}

// openCustom enters the custom command menu on a child store, resolving
// the selected project first.
func (s *Session) openCustom(ctx context.Context, store *scope.Store) error {
	child := store.Child(ctx, scope.Overrides{})
	if _, err := s.selected(ctx, child); err != nil {
		return err
	}
	return s.loop(ctx, MenuCustom, child, s.customMenu)
}

func (s *Session) customMenu(ctx context.Context, store *scope.Store) (string, []entry) {
	p := store.Scope(ctx).SelectedProject
	var entries []entry
	for _, spec := range store.Commands(ctx) {
		e := s.specEntry(spec)
		e.hint = string(spec.Type) + ": " + spec.Command.String()
		entries = append(entries, e)
	}
	return title("Custom commands", p), append(entries, back("Back"))
}

func (s *Session) openManage(ctx context.Context, store *scope.Store) error {
	return s.loop(ctx, MenuManage, store, s.manageMenu)
}

func (s *Session) manageMenu(ctx context.Context, store *scope.Store) (string, []entry) {
	zombies := len(s.opts.Projects.Zombies(ctx))
	return title("Manage projects", store.Scope(ctx).SelectedProject), []entry{
		{key: "w", label: "Switch project", run: s.switchProject},
		{key: "a", label: "Switch to active project", run: s.switchActive},
		{key: "d", label: "Forget project", run: s.forgetProject},
		{key: "u", label: "Forget projects under directory", run: s.forgetUnder},
		{key: "z", label: "Forget missing projects", hint: fmt.Sprintf("%d missing", zombies), run: s.forgetZombies},
		{key: "r", label: "Remember projects under directory", run: s.rememberUnder},
		{key: "y", label: "Copy project root", run: func(ctx context.Context, store *scope.Store) error {
			p, err := s.selected(ctx, store)
			if err != nil {
				return err
			}
			return s.copyRoot(ctx, p)
		}},
		{key: "l", label: "List known projects", run: s.listKnown},
		back("Back"),
	}
}

func togglePlacement(ctx context.Context, store *scope.Store) error {
	return store.Set(ctx, scope.KeyPreferOtherWindow, !store.Scope(ctx).PreferOtherWindow)
}

// choose asks the user to pick one of projects.
func (s *Session) choose(ctx context.Context, what string, projects []project.Project) (project.Project, error) {
	if len(projects) == 0 {
		return project.Project{}, ErrNoProjects
	}
	options := make([]prompt.Option, len(projects))
	for i, p := range projects {
		options[i] = prompt.Option{Label: styles.BackendSymbol(p.Backend) + " " + p.Name(), Hint: p.Root}
	}
	i, err := s.opts.Chooser.Choose(ctx, what, options)
	if err != nil {
		return project.Project{}, err
	}
	return projects[i], nil
}

// pickProject is the session's project prompt.
func (s *Session) pickProject(ctx context.Context) (project.Project, error) {
	return s.choose(ctx, "Select project", s.opts.Projects.Known(ctx))
}

func (s *Session) switchTo(ctx context.Context, store *scope.Store, p project.Project) error {
	if err := store.Set(ctx, scope.KeySelectedProject, p); err != nil {
		return err
	}
	store.Refresh(ctx)
	if s.opts.History != "" {
		if err := history.RecordAccess(s.opts.History, p.Root); err != nil {
			log.FromContext(ctx).Warnf("record switch history: %v", err)
		}
	}
	output.FromContext(ctx).Printf("Switched to %s (%s)\n", p.Name(), p.Root)
	return nil
}

// recent orders projects by switch history, most recent first.
func (s *Session) recent(ctx context.Context, projects []project.Project) []project.Project {
	if s.opts.History == "" {
		return projects
	}
	h, err := history.Load(s.opts.History)
	if err != nil {
		log.FromContext(ctx).Debug("switch history unavailable", "error", err)
		return projects
	}
	projects = slices.Clone(projects)
	slices.SortStableFunc(projects, func(a, b project.Project) int {
		return h.Rank(a.Root) - h.Rank(b.Root)
	})
	return projects
}

func (s *Session) switchProject(ctx context.Context, store *scope.Store) error {
	p, err := s.choose(ctx, "Switch project", s.recent(ctx, s.opts.Projects.Known(ctx)))
	if err != nil {
		return err
	}
	return s.switchTo(ctx, store, p)
}

func (s *Session) switchActive(ctx context.Context, store *scope.Store) error {
	p, err := s.choose(ctx, "Switch to active project", s.opts.Projects.ActiveProjects(ctx))
	if err != nil {
		return err
	}
	return s.switchTo(ctx, store, p)
}

func (s *Session) forgetProject(ctx context.Context, _ *scope.Store) error {
	registered := append(s.opts.Projects.Known(ctx), s.opts.Projects.Zombies(ctx)...)
	p, err := s.choose(ctx, "Forget project", registered)
	if err != nil {
		return err
	}
	ok, err := s.opts.Chooser.Confirm(ctx, fmt.Sprintf("Forget %s (%s)?", p.Name(), p.Root))
	if err != nil || !ok {
		return err
	}
	if s.opts.Projects.Forget(ctx, p) {
		output.FromContext(ctx).Printf("Forgot %s\n", p.Root)
	}
	return nil
}

// directory asks for a directory, defaulting to the invoking one.
func (s *Session) directory(ctx context.Context, what string) (string, error) {
	dir, err := s.input(ctx, what, s.opts.InvokingDir)
	if err != nil {
		return "", err
	}
	return filepath.Abs(dir)
}

func (s *Session) forgetUnder(ctx context.Context, _ *scope.Store) error {
	dir, err := s.directory(ctx, "Forget projects under")
	if err != nil {
		return err
	}
	printRoots(ctx, "Forgot", s.opts.Projects.ForgetUnder(ctx, dir))
	return nil
}

func (s *Session) forgetZombies(ctx context.Context, _ *scope.Store) error {
	printRoots(ctx, "Forgot", s.opts.Projects.ForgetZombies(ctx))
	return nil
}

func (s *Session) rememberUnder(ctx context.Context, _ *scope.Store) error {
	dir, err := s.directory(ctx, "Remember projects under")
	if err != nil {
		return err
	}
	printRoots(ctx, "Remembered", s.opts.Projects.RememberUnder(ctx, dir, s.opts.RememberDepth))
	return nil
}

func printRoots(ctx context.Context, verb string, projects []project.Project) {
	out := output.FromContext(ctx)
	for _, p := range projects {
		out.Printf("%s %s\n", verb, p.Root)
	}
	out.Printf("%s %d projects\n", verb, len(projects))
}

func (s *Session) listKnown(ctx context.Context, _ *scope.Store) error {
	var rows [][]string
	for _, p := range s.opts.Projects.Known(ctx) {
		rows = append(rows, static.ProjectRow(p, false, s.opts.Hyperlinks))
	}
	for _, p := range s.opts.Projects.Zombies(ctx) {
		rows = append(rows, static.ProjectRow(p, true, s.opts.Hyperlinks))
	}
	output.FromContext(ctx).Print(static.RenderTable(static.ProjectHeaders, rows))
	return nil
}
