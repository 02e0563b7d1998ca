package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/pm/internal/log"
)

// completionApp wires an app for shell completion. Diagnostics are silenced
// and untrusted local configuration is skipped instead of prompted for.
func completionApp(cmd *cobra.Command) (*app, bool) {
	ctx := log.WithLogger(cmd.Context(), log.New(nil, false, true))
	a, err := newAppWith(ctx, nil)
	if err != nil {
		return nil, false
	}
	cmd.SetContext(ctx)
	return a, true
}

// completeProjects completes known project names.
func completeProjects(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	a, ok := completionApp(cmd)
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, p := range a.resolver.Known(cmd.Context()) {
		if strings.HasPrefix(p.Name(), toComplete) {
			names = append(names, p.Name()+"\t"+p.Root)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeCommandKeys completes the custom command keys of the selected project.
func completeCommandKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	a, ok := completionApp(cmd)
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ref, _ := cmd.Flags().GetString("project")
	store, _, err := a.scoped(cmd.Context(), ref)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var keys []string
	for _, s := range store.Commands(cmd.Context()) {
		if strings.HasPrefix(s.Key, toComplete) {
			keys = append(keys, s.Key+"\t"+s.Description)
		}
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}
