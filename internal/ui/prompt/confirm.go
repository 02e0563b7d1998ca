package prompt

import (
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/pm/internal/ui/styles"
)

// ConfirmResult holds the answer to a yes/no question.
type ConfirmResult struct {
	Confirmed bool
	Cancelled bool
}

type confirmModel struct {
	prompt    string
	confirmed bool
	done      bool
	cancelled bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.confirmed = true
	case "n", "N", "enter":
	case "ctrl+c", "q", "esc":
		m.cancelled = true
	default:
		return m, nil
	}
	m.done = true
	return m, tea.Quit
}

func (m confirmModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}
	return tea.NewView(styles.Bold.Render(m.prompt) + styles.MutedStyle.Render(" [y/N] "))
}

// Confirm asks a yes/no question. Enter answers no.
func Confirm(prompt string) (ConfirmResult, error) {
	m, err := run(confirmModel{prompt: prompt})
	if err != nil {
		return ConfirmResult{}, err
	}
	return ConfirmResult{Confirmed: m.confirmed, Cancelled: m.cancelled}, nil
}
