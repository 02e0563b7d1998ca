package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/pm/internal/doctor"
	"github.com/raphi011/pm/internal/output"
)

func newDoctorCmd() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:     "doctor",
		Short:   "Diagnose registry and configuration issues",
		GroupID: GroupConfig,
		Args:    cobra.NoArgs,
		Long: `Diagnose pm's state and environment.

Checks:
- Known projects whose root no longer exists
- Local .pm.toml/.pm.yaml command definitions that fail validation
- Optional tools (git, tmux, direnv, mise) on PATH`,
		Example: `  pm doctor          # Check for issues
  pm doctor --fix    # Forget projects whose root is gone`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}

			report := doctor.Run(ctx, output.FromContext(ctx).Writer(), doctor.Options{Projects: a.resolver}, fix)
			// Missing optional tools are informational.
			remaining := 0
			for _, is := range report.Issues {
				if is.Category != doctor.CategoryTools && !(fix && is.Fixable) {
					remaining++
				}
			}
			if remaining > 0 {
				return fmt.Errorf("%d issues found", remaining)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Forget projects whose root is gone")

	return cmd
}
