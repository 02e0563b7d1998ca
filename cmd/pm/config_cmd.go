package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/raphi011/pm/internal/config"
	"github.com/raphi011/pm/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage pm configuration.

Global config: ~/.config/pm/config.toml (or $PM_CONFIG)
Local config:  .pm.toml or .pm.yaml in the project root`,
		Example: `  pm config init          # Create default global config
  pm config init --local  # Create .pm.toml in the current project
  pm config show          # Show effective global config`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force  bool
		stdout bool
		local  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Long: `Create default config file.

Without flags, creates the global config. With --local, creates .pm.toml in
the root of the project containing the working directory.`,
		Example: `  pm config init           # Create global config
  pm config init --local   # Create local project config
  pm config init -f        # Overwrite existing config
  pm config init -s        # Print config to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			if stdout {
				if local {
					out.Print(config.DefaultLocalConfig())
				} else {
					out.Print(config.DefaultConfig())
				}
				return nil
			}

			var (
				path string
				err  error
			)
			if local {
				a, aerr := newApp(ctx)
				if aerr != nil {
					return aerr
				}
				p, perr := a.project(ctx, "")
				if perr != nil {
					return fmt.Errorf("not in a project: %w", perr)
				}
				path, err = config.InitLocal(p.Root, force)
			} else {
				path, err = config.Init(force)
			}
			if err != nil {
				return fmt.Errorf("%w (use -f to overwrite)", err)
			}
			out.Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print config to stdout")
	cmd.Flags().BoolVar(&local, "local", false, "Create .pm.toml in the project root instead of global config")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective global config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			out := output.FromContext(ctx)
			if jsonOutput {
				return out.JSON(cfg)
			}
			return toml.NewEncoder(out.Writer()).Encode(cfg)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
