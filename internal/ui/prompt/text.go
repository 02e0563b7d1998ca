package prompt

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/pm/internal/ui/styles"
)

// TextInputResult holds the entered text.
type TextInputResult struct {
	Value     string
	Cancelled bool
}

type textInputModel struct {
	textInput textinput.Model
	prompt    string
	done      bool
	cancelled bool
}

func (m textInputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textInputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "enter":
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m textInputModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}
	return tea.NewView(styles.TitleStyle.Render(m.prompt) + "\n" + m.textInput.View())
}

func newTextInputModel(prompt, initial string) textInputModel {
	ti := textinput.New()
	ti.SetValue(initial)
	ti.Focus()
	ti.CharLimit = 1024
	ti.SetWidth(72)
	return textInputModel{textInput: ti, prompt: prompt}
}

// TextInput asks for one line of text, pre-filled with initial.
func TextInput(prompt, initial string) (TextInputResult, error) {
	m, err := run(newTextInputModel(prompt, initial))
	if err != nil {
		return TextInputResult{}, err
	}
	return TextInputResult{Value: m.textInput.Value(), Cancelled: m.cancelled}, nil
}
