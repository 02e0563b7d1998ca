package doctor

import (
	"context"
	"fmt"
	"io"

	"github.com/raphi011/pm/internal/cmd"
	"github.com/raphi011/pm/internal/commands"
	"github.com/raphi011/pm/internal/config"
	"github.com/raphi011/pm/internal/project"
)

// Tools are the optional binaries pm integrates with.
var Tools = []string{"git", "tmux", "direnv", "mise"}

// Projects is the registry view doctor inspects.
type Projects interface {
	Known(ctx context.Context) []project.Project
	Zombies(ctx context.Context) []project.Project
	ForgetZombies(ctx context.Context) []project.Project
}

// Options configures a doctor run.
type Options struct {
	Projects  Projects
	Available func(name string) bool // defaults to cmd.Available
}

// Check inspects the registry, every known project's local configuration and
// the optional tools.
func Check(ctx context.Context, opts Options) Report {
	available := opts.Available
	if available == nil {
		available = cmd.Available
	}

	var r Report
	for _, p := range opts.Projects.Zombies(ctx) {
		r.Issues = append(r.Issues, Issue{
			Category:    CategoryRegistry,
			Key:         p.Root,
			Description: "project root no longer exists",
			Fixable:     true,
		})
	}

	known := opts.Projects.Known(ctx)
	r.Projects = len(known)
	for _, p := range known {
		if is, ok := checkLocal(p); !ok {
			r.Issues = append(r.Issues, is)
		}
	}

	for _, name := range Tools {
		if !available(name) {
			r.Issues = append(r.Issues, Issue{
				Category:    CategoryTools,
				Key:         name,
				Description: "not found in PATH",
			})
		}
	}
	return r
}

// checkLocal validates the commands declared in p's local configuration.
// Trust is not consulted; doctor only reads the file.
func checkLocal(p project.Project) (Issue, bool) {
	local, err := config.LoadLocal(p.Root)
	if err != nil {
		return Issue{Category: CategoryConfig, Key: p.Root, Description: err.Error()}, false
	}
	raw, ok := local.Get(commands.LocalKey)
	if !ok {
		return Issue{}, true
	}
	if _, err := commands.Validate(raw); err != nil {
		return Issue{
			Category:    CategoryConfig,
			Key:         local.Source,
			Description: err.Error() + " (default commands are used instead)",
		}, false
	}
	return Issue{}, true
}

// Run checks, prints a summary to w and, with fix, forgets zombie projects.
func Run(ctx context.Context, w io.Writer, opts Options, fix bool) Report {
	fmt.Fprintln(w, "Checking registry, local configuration and tools...")
	report := Check(ctx, opts)

	fmt.Fprintf(w, "\n  ✓ %d projects registered\n", report.Projects)
	if len(report.Issues) == 0 {
		fmt.Fprintln(w, "\n✓ No issues found")
		return report
	}

	fmt.Fprintf(w, "\nFound %d issues:\n", len(report.Issues))
	printByCategory(w, report.Issues)

	fixable := report.Fixable()
	switch {
	case len(fixable) == 0:
	case fix:
		for _, p := range opts.Projects.ForgetZombies(ctx) {
			fmt.Fprintf(w, "  ✓ Forgot %s\n", p.Root)
		}
	default:
		fmt.Fprintln(w, "\nRun 'pm doctor --fix' to forget missing projects.")
	}
	return report
}

func printByCategory(w io.Writer, issues []Issue) {
	byCategory := make(map[Category][]Issue)
	for _, is := range issues {
		byCategory[is.Category] = append(byCategory[is.Category], is)
	}
	for _, cat := range []Category{CategoryRegistry, CategoryConfig, CategoryTools} {
		if len(byCategory[cat]) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", categoryTitles[cat])
		for _, is := range byCategory[cat] {
			fmt.Fprintf(w, "  • %s: %s\n", is.Key, is.Description)
		}
	}
}
