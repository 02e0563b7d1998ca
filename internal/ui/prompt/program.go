package prompt

import (
	"errors"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/mattn/go-isatty"
)

var (
	// ErrNotInteractive is returned when a prompt cannot be shown because
	// the session has no terminal.
	ErrNotInteractive = errors.New("not running in an interactive terminal")
	// ErrCancelled is returned by callers that turn a cancelled prompt
	// result into an error, abandoning the operation that asked.
	ErrCancelled = errors.New("cancelled")
)

// Interactive reports whether stdin and stderr are terminals.
func Interactive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stderr)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// run executes model on stderr and returns the final model.
func run[M tea.Model](model M) (M, error) {
	if !Interactive() {
		return model, ErrNotInteractive
	}
	p := tea.NewProgram(model,
		tea.WithOutput(os.Stderr),
		tea.WithColorProfile(colorprofile.Detect(os.Stderr, os.Environ())),
	)
	final, err := p.Run()
	if err != nil {
		return model, err
	}
	return final.(M), nil
}
