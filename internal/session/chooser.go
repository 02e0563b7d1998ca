package session

import (
	"context"

	"github.com/raphi011/pm/internal/ui/prompt"
)

// Chooser drives the menus. Every method returns prompt.ErrCancelled when
// the user backs out.
type Chooser interface {
	// Choose returns the index of the picked option.
	Choose(ctx context.Context, title string, options []prompt.Option) (int, error)
	// Input asks for a line of text, pre-filled with initial.
	Input(ctx context.Context, title, initial string) (string, error)
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, question string) (bool, error)
}

// Terminal is the bubbletea-backed Chooser.
type Terminal struct{}

// Choose implements Chooser.
func (Terminal) Choose(_ context.Context, title string, options []prompt.Option) (int, error) {
	res, err := prompt.Select(title, options)
	if err != nil {
		return -1, err
	}
	if res.Cancelled {
		return -1, prompt.ErrCancelled
	}
	return res.Index, nil
}

// Input implements Chooser.
func (Terminal) Input(_ context.Context, title, initial string) (string, error) {
	res, err := prompt.TextInput(title, initial)
	if err != nil {
		return "", err
	}
	if res.Cancelled {
		return "", prompt.ErrCancelled
	}
	return res.Value, nil
}

// Confirm implements Chooser.
func (Terminal) Confirm(_ context.Context, question string) (bool, error) {
	res, err := prompt.Confirm(question)
	if err != nil {
		return false, err
	}
	if res.Cancelled {
		return false, prompt.ErrCancelled
	}
	return res.Confirmed, nil
}
