package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphi011/pm/internal/config"
	"github.com/raphi011/pm/internal/log"
	"github.com/raphi011/pm/internal/output"
	"github.com/raphi011/pm/internal/project"
	"github.com/raphi011/pm/internal/scope"
	"github.com/raphi011/pm/internal/ui/styles"
)

var (
	verbose bool
	quiet   bool
)

// Command group IDs for organizing help output
const (
	GroupCore     = "core"
	GroupProjects = "projects"
	GroupConfig   = "config"
)

func newRootCmd() *cobra.Command {
	var (
		projectRef  string
		otherWindow bool
	)

	cmd := &cobra.Command{
		Use:   "pm",
		Short: "Project command menu",
		Long: `pm is an interactive command menu for the project you are in.

Without a subcommand it opens the menu for the project containing the
working directory: list files, open a shell, compile, run version control
commands, run the project's custom commands from .pm.toml or .pm.yaml, and
manage the list of known projects.`,
		Example: `  pm                   # Open the menu for the current project
  pm -p api            # Open the menu for a known project
  pm run test          # Run the custom command with key "test"
  pm projects list     # List known projects`,
		Args:                       cobra.NoArgs,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}
			ctx := log.WithLogger(cmd.Context(), log.New(os.Stderr, verbose, quiet))
			cmd.SetContext(ctx)
			styles.Init(config.FromContext(ctx).Theme)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}

			var o scope.Overrides
			if projectRef != "" {
				p, err := a.project(ctx, projectRef)
				if err != nil {
					return err
				}
				o.SelectedProject = &p
			}
			if cmd.Flags().Changed("other-window") {
				o.PreferOtherWindow = &otherWindow
			}

			store := a.store()
			store.Build(ctx, o)
			return a.session(store).Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&projectRef, "project", "p", "", "Select a known project by name, root or fuzzy query")
	cmd.Flags().BoolVarP(&otherWindow, "other-window", "o", false, "Show command output in another window")
	_ = cmd.RegisterFlagCompletionFunc("project", completeProjects)

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands being executed")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.Version = versionString()
	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core Commands:"},
		&cobra.Group{ID: GroupProjects, Title: "Project Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newCommandsCmd())
	cmd.AddCommand(newNameCmd())

	cmd.AddCommand(newProjectsCmd())
	cmd.AddCommand(newSwitchCmd())

	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newCompletionCmd())

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx = config.WithConfig(ctx, &cfg)
	ctx = output.WithPrinter(ctx, os.Stdout)

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, project.ErrNotFound) {
			fmt.Fprintln(os.Stderr, "Run 'pm projects list' for known projects or 'pm -h' for help")
		}
		cancel()
		os.Exit(1)
	}
}
