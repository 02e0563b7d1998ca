package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion <shell>",
		Short:     "Generate completion script",
		GroupID:   GroupConfig,
		Long:      `Generate shell completion script.`,
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Args:      cobra.ExactArgs(1),
		Example: `  # Fish
  pm completion fish > ~/.config/fish/completions/pm.fish

  # Bash
  pm completion bash > ~/.local/share/bash-completion/completions/pm

  # Zsh
  pm completion zsh > ~/.zfunc/_pm`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}
