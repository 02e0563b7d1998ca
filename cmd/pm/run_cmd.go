package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/pm/internal/commands"
	"github.com/raphi011/pm/internal/dispatch"
	"github.com/raphi011/pm/internal/output"
	"github.com/raphi011/pm/internal/ui/static"
)

func newRunCmd() *cobra.Command {
	var (
		projectRef  string
		otherWindow bool
	)

	cmd := &cobra.Command{
		Use:     "run <key>",
		Short:   "Run a custom command",
		GroupID: GroupCore,
		Args:    cobra.ExactArgs(1),
		Long: `Run one of the project's custom commands without opening the menu.

Commands come from the project's .pm.toml or .pm.yaml, or from the default
set in the global config when the project defines none.`,
		Example: `  pm run b              # Run the command with key "b"
  pm run b -p api       # ... in the known project "api"
  pm run b -o           # ... with output in another window`,
		ValidArgsFunction: completeCommandKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			store, p, err := a.scoped(ctx, projectRef)
			if err != nil {
				return err
			}
			spec, ok := commands.Find(store.Commands(ctx), args[0])
			if !ok {
				return fmt.Errorf("no command with key %q in %s (see 'pm commands')", args[0], p.Name())
			}

			a.registerBuiltins(store)
			prefer := store.Scope(ctx).PreferOtherWindow
			if cmd.Flags().Changed("other-window") {
				prefer = otherWindow
			}
			return a.dispatcher.Invoke(ctx, spec, p, prefer)
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project name, root or fuzzy query")
	cmd.Flags().BoolVarP(&otherWindow, "other-window", "o", false, "Show output in another window")
	_ = cmd.RegisterFlagCompletionFunc("project", completeProjects)

	return cmd
}

func newCommandsCmd() *cobra.Command {
	var (
		projectRef string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "commands",
		Short:   "List the custom commands of a project",
		Aliases: []string{"cmds"},
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			store, _, err := a.scoped(ctx, projectRef)
			if err != nil {
				return err
			}
			specs := store.Commands(ctx)
			out := output.FromContext(ctx)

			if jsonOutput {
				type commandJSON struct {
					Key         string `json:"key"`
					Description string `json:"description"`
					Type        string `json:"type"`
					Command     string `json:"command"`
					Identifier  string `json:"identifier"`
				}
				list := make([]commandJSON, 0, len(specs))
				for _, s := range specs {
					list = append(list, commandJSON{
						Key:         s.Key,
						Description: s.Description,
						Type:        string(s.Type),
						Command:     s.Command.String(),
						Identifier:  s.InstanceIdentifier(),
					})
				}
				return out.JSON(list)
			}

			rows := make([][]string, 0, len(specs))
			for _, s := range specs {
				rows = append(rows, static.CommandRow(s))
			}
			out.Print(static.RenderTable(static.CommandHeaders, rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project name, root or fuzzy query")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	_ = cmd.RegisterFlagCompletionFunc("project", completeProjects)

	return cmd
}

func newNameCmd() *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "name <identifier>",
		Short: "Print the instance name of a command",
		Long: `Print the instance name a command with the given identifier gets in the
project: "<project>-command|<identifier>". Runs of commands sharing a name
are reported as duplicates, and the name is used for tmux windows and
background log files.`,
		Example: `  pm name make                      # api-command|make
  tmux select-window -t "$(pm name make)"`,
		GroupID: GroupCore,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			p, err := a.project(ctx, projectRef)
			if err != nil {
				return err
			}
			output.FromContext(ctx).Println(dispatch.Name(p, args[0]))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Project name, root or fuzzy query")
	_ = cmd.RegisterFlagCompletionFunc("project", completeProjects)

	return cmd
}
