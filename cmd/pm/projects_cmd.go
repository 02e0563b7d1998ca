package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raphi011/pm/internal/output"
	"github.com/raphi011/pm/internal/project"
	"github.com/raphi011/pm/internal/ui/progress"
	"github.com/raphi011/pm/internal/ui/prompt"
	"github.com/raphi011/pm/internal/ui/static"
)

func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Short:   "Manage known projects",
		Aliases: []string{"p"},
		GroupID: GroupProjects,
		Long: `Manage the registry of known projects (~/.pm/projects.json).

Projects are remembered whenever pm resolves them. A project whose root
no longer exists is a zombie; it is hidden from menus until forgotten.`,
		Example: `  pm projects                       # List known projects
  pm projects remember-under ~/src  # Remember every project below ~/src
  pm projects forget-zombies        # Forget projects whose root is gone`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listProjects(cmd.Context(), false)
		},
	}

	cmd.AddCommand(newProjectsListCmd())
	cmd.AddCommand(newProjectsActiveCmd())
	cmd.AddCommand(newProjectsForgetCmd())
	cmd.AddCommand(newProjectsForgetUnderCmd())
	cmd.AddCommand(newProjectsForgetZombiesCmd())
	cmd.AddCommand(newProjectsRememberUnderCmd())

	return cmd
}

type projectJSON struct {
	Name    string `json:"name"`
	Root    string `json:"root"`
	Backend string `json:"backend"`
	Missing bool   `json:"missing,omitempty"`
}

func printProjects(ctx context.Context, jsonOutput bool, known, zombies []project.Project) error {
	out := output.FromContext(ctx)

	if jsonOutput {
		list := make([]projectJSON, 0, len(known)+len(zombies))
		for _, p := range known {
			list = append(list, projectJSON{Name: p.Name(), Root: p.Root, Backend: string(p.Backend)})
		}
		for _, p := range zombies {
			list = append(list, projectJSON{Name: p.Name(), Root: p.Root, Backend: string(p.Backend), Missing: true})
		}
		return out.JSON(list)
	}

	link := prompt.Interactive()
	rows := make([][]string, 0, len(known)+len(zombies))
	for _, p := range known {
		rows = append(rows, static.ProjectRow(p, false, link))
	}
	for _, p := range zombies {
		rows = append(rows, static.ProjectRow(p, true, link))
	}
	out.Print(static.RenderTable(static.ProjectHeaders, rows))
	return nil
}

func listProjects(ctx context.Context, jsonOutput bool) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	return printProjects(ctx, jsonOutput, a.resolver.Known(ctx), a.resolver.Zombies(ctx))
}

func newProjectsListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List known projects",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listProjects(cmd.Context(), jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newProjectsActiveCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "active",
		Short: "List projects with open terminals",
		Long: `List projects with an open resource: the working directory and, inside
tmux, the current directory of every pane.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			return printProjects(ctx, jsonOutput, a.resolver.ActiveProjects(ctx), nil)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newProjectsForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "forget <project>",
		Short:             "Forget a known project",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeProjects,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			p, err := a.registered(ctx, args[0])
			if err != nil {
				return err
			}
			if !a.resolver.Forget(ctx, p) {
				return fmt.Errorf("%s is not a known project", p.Root)
			}
			output.FromContext(ctx).Printf("Forgot %s\n", p.Root)
			return nil
		},
	}
}

func newProjectsForgetUnderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget-under <dir>",
		Short: "Forget every project at or below a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			printRoots(ctx, "Forgot", a.resolver.ForgetUnder(ctx, args[0]))
			return nil
		},
	}
}

func newProjectsForgetZombiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget-zombies",
		Short: "Forget projects whose root no longer exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			printRoots(ctx, "Forgot", a.resolver.ForgetZombies(ctx))
			return nil
		},
	}
}

func newProjectsRememberUnderCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "remember-under [dir]",
		Short: "Remember every project below a directory",
		Long: `Search a directory for project roots and remember them. The search
descends at most --depth levels (remember_depth in the config) and does not
enter discovered projects or hidden directories.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			dir := a.dir
			if len(args) == 1 {
				if dir, err = filepath.Abs(args[0]); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("depth") {
				depth = a.cfg.RememberDepth
			}

			sp := progress.NewSpinner("Searching " + dir)
			if prompt.Interactive() && !quiet {
				sp.Start()
			}
			added := a.resolver.RememberUnder(ctx, dir, depth)
			sp.Stop()

			printRoots(ctx, "Remembered", added)
			return nil
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "Directory levels to search")
	return cmd
}

func printRoots(ctx context.Context, verb string, projects []project.Project) {
	out := output.FromContext(ctx)
	for _, p := range projects {
		out.Printf("%s %s\n", verb, p.Root)
	}
	if len(projects) == 0 {
		out.Printf("%s nothing\n", verb)
	}
}

// registered finds a known project, including zombies, by name or root.
func (a *app) registered(ctx context.Context, ref string) (project.Project, error) {
	if abs, err := filepath.Abs(ref); err == nil {
		if c, err := project.Canonical(abs); err == nil {
			abs = c
		}
		for _, p := range append(a.resolver.Known(ctx), a.resolver.Zombies(ctx)...) {
			if p.Root == abs {
				return p, nil
			}
		}
	}
	for _, p := range append(a.resolver.Known(ctx), a.resolver.Zombies(ctx)...) {
		if p.Name() == ref || p.Root == ref {
			return p, nil
		}
	}
	return project.Project{}, fmt.Errorf("%w: %s is not a known project", project.ErrNotFound, ref)
}
