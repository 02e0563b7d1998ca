package session

import (
	"context"
	"strings"

	"github.com/raphi011/pm/internal/cmd"
	"github.com/raphi011/pm/internal/commands"
	"github.com/raphi011/pm/internal/dispatch"
	"github.com/raphi011/pm/internal/env"
	"github.com/raphi011/pm/internal/output"
	"github.com/raphi011/pm/internal/project"
	"github.com/raphi011/pm/internal/runner"
	"github.com/raphi011/pm/internal/scope"
	"github.com/raphi011/pm/internal/ui/prompt"
	"github.com/raphi011/pm/internal/workspace"
)

// Built-in action names. Custom commands reference them as
// command = { action = "<name>" }.
const (
	ActionListFiles      = "list-files"
	ActionShell          = "shell"
	ActionShellCommand   = "shell-command"
	ActionCompile        = "compile" // producer, for compile commands
	ActionVCS            = "vcs"
	ActionManageProjects = "manage-projects"
	ActionCopyRoot       = "copy-root"
)

// DefaultCompileCommand pre-fills the first compile prompt of a project.
const DefaultCompileCommand = "make -k"

// Main menu commands, dispatched like custom commands.
var (
	listFilesSpec = commands.Spec{
		Key: "f", Description: "List files", Type: commands.Call,
		Command: commands.Payload{Action: ActionListFiles},
	}
	shellSpec = commands.Spec{
		Key: "s", Description: "Shell", Type: commands.Call,
		Command: commands.Payload{Action: ActionShell}, Identifier: "shell",
	}
	compileSpec = commands.Spec{
		Key: "c", Description: "Compile", Type: commands.Compile,
		Command: commands.Payload{Action: ActionCompile}, Identifier: "compile",
	}
	shellCommandSpec = commands.Spec{
		Key: "!", Description: "Run shell command", Type: commands.Call,
		Command: commands.Payload{Action: ActionShellCommand}, Identifier: "shell-command",
	}
)

func vcsSpec(key, line string) commands.Spec {
	return commands.Spec{Key: key, Description: line, Type: commands.Compile, Command: commands.Payload{Literal: line}}
}

// vcsCommands are the VCS menu entries per backend.
var vcsCommands = map[workspace.Backend][]commands.Spec{
	workspace.BackendGit: {
		vcsSpec("s", "git status"),
		vcsSpec("l", "git log --oneline -n 30"),
		vcsSpec("d", "git diff"),
		vcsSpec("b", "git branch -vv"),
	},
	workspace.BackendJJ: {
		vcsSpec("s", "jj status"),
		vcsSpec("l", "jj log"),
		vcsSpec("d", "jj diff"),
	},
	workspace.BackendHg: {
		vcsSpec("s", "hg status"),
		vcsSpec("l", "hg log -l 30"),
		vcsSpec("d", "hg diff"),
	},
	workspace.BackendSVN: {
		vcsSpec("s", "svn status"),
		vcsSpec("l", "svn log -l 30"),
		vcsSpec("d", "svn diff"),
	},
}

// RegisterBuiltins registers the built-in actions with the session's
// dispatcher, so custom commands can reference them by name.
func (s *Session) RegisterBuiltins() {
	a := s.opts.Dispatcher.Actions()
	a.Register(ActionListFiles, s.listFiles)
	a.Register(ActionShell, s.shell)
	a.Register(ActionShellCommand, s.shellCommand)
	a.RegisterProducer(ActionCompile, s.compileCommand)
	a.Register(ActionVCS, func(ctx context.Context, p project.Project) error {
		return s.loop(ctx, MenuVCS, s.opts.Store.Child(ctx, scope.Overrides{SelectedProject: &p}), s.vcsMenu)
	})
	a.Register(ActionManageProjects, func(ctx context.Context, _ project.Project) error {
		return s.loop(ctx, MenuManage, s.opts.Store, s.manageMenu)
	})
	a.Register(ActionCopyRoot, s.copyRoot)
}

func (s *Session) listFiles(ctx context.Context, p project.Project) error {
	files, err := s.opts.Projects.Workspace().ListFiles(ctx, p.Root, p.Backend)
	if err != nil {
		return err
	}
	out := output.FromContext(ctx)
	for _, f := range files {
		out.Println(f)
	}
	return nil
}

// ambient returns the scoped execution context, or p's root with the
// process environment when the action runs unscoped.
func ambient(ctx context.Context, p project.Project) *env.Ambient {
	if a := env.FromContext(ctx); a != nil {
		return a
	}
	return &env.Ambient{Dir: p.Root, Placement: env.PlacementDefault}
}

func instance(ctx context.Context, p project.Project, identifier string) string {
	if name, ok := dispatch.InstanceName(ctx); ok {
		return name
	}
	return dispatch.Name(p, identifier)
}

// shell starts the user's interactive shell in the project environment.
func (s *Session) shell(ctx context.Context, p project.Project) error {
	a := ambient(ctx, p)
	sh, ok := a.Lookup("SHELL")
	if !ok || sh == "" {
		sh = s.opts.Shell
	}
	_, err := s.opts.Runner.Shell(ctx, runner.RunSpec{
		Name:      instance(ctx, p, "shell"),
		Command:   cmd.Quote(sh),
		Dir:       a.Dir,
		Env:       a.Env,
		Placement: a.Placement,
	})
	return err
}

// shellCommand asks for a command and runs it in the foreground.
func (s *Session) shellCommand(ctx context.Context, p project.Project) error {
	line, err := s.input(ctx, "Shell command in "+p.Name(), "")
	if err != nil {
		return err
	}
	a := ambient(ctx, p)
	_, err = s.opts.Runner.Shell(ctx, runner.RunSpec{
		Name:      instance(ctx, p, "shell-command"),
		Command:   line,
		Dir:       a.Dir,
		Env:       a.Env,
		Placement: env.PlacementDefault,
	})
	return err
}

// compileCommand asks for the compile command, pre-filled with the one
// used last for p.
func (s *Session) compileCommand(ctx context.Context, p project.Project) (string, error) {
	initial, ok := s.lastCompile[p.Root]
	if !ok {
		initial = DefaultCompileCommand
	}
	line, err := s.input(ctx, "Compile command in "+p.Name(), initial)
	if err != nil {
		return "", err
	}
	s.lastCompile[p.Root] = line
	return line, nil
}

// input asks for a non-empty line. An empty answer counts as cancelled.
func (s *Session) input(ctx context.Context, title, initial string) (string, error) {
	line, err := s.opts.Chooser.Input(ctx, title, initial)
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", prompt.ErrCancelled
	}
	return line, nil
}

func (s *Session) copyRoot(ctx context.Context, p project.Project) error {
	if err := s.opts.Copy(p.Root); err != nil {
		return err
	}
	output.FromContext(ctx).Printf("Copied %s\n", p.Root)
	return nil
}
