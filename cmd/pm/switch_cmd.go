package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/pm/internal/history"
	"github.com/raphi011/pm/internal/log"
	"github.com/raphi011/pm/internal/output"
	"github.com/raphi011/pm/internal/project"
	"github.com/raphi011/pm/internal/scope"
)

func newSwitchCmd() *cobra.Command {
	var printRoot bool

	cmd := &cobra.Command{
		Use:     "switch [query]",
		Short:   "Open the menu for a known project",
		Aliases: []string{"sw"},
		GroupID: GroupProjects,
		Args:    cobra.MaximumNArgs(1),
		Long: `Fuzzy-match a known project by name or root and open the menu with it
selected. Without a query, switch to the most recently switched-to project
other than the current one. With --print, print the project root instead.`,
		Example: `  pm switch api
  pm switch                      # Back to the previous project
  cd "$(pm switch --print api)"`,
		ValidArgsFunction: completeProjects,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}

			var p project.Project
			if len(args) == 1 {
				p, err = a.project(ctx, args[0])
			} else {
				p, err = a.previous(ctx)
			}
			if err != nil {
				return err
			}

			if err := history.RecordAccess(a.history, p.Root); err != nil {
				log.FromContext(ctx).Warnf("record switch history: %v", err)
			}
			if printRoot {
				output.FromContext(ctx).Println(p.Root)
				return nil
			}

			store := a.store()
			store.Build(ctx, scope.Overrides{SelectedProject: &p})
			return a.session(store).Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&printRoot, "print", false, "Print the project root instead of opening the menu")
	return cmd
}

// previous returns the most recently switched-to project other than the one
// containing the working directory.
func (a *app) previous(ctx context.Context) (project.Project, error) {
	h, err := history.Load(a.history)
	if err != nil {
		return project.Project{}, fmt.Errorf("load switch history: %w", err)
	}
	var current string
	if p, err := a.resolver.Resolve(ctx, a.dir); err == nil {
		current = p.Root
	}
	root, ok := h.MostRecent(current)
	if !ok {
		return project.Project{}, fmt.Errorf("%w: no previous project in switch history", project.ErrNotFound)
	}
	return a.resolver.Resolve(ctx, root)
}
