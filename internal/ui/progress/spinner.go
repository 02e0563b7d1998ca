// Package progress shows activity on stderr during long-running scans.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/pm/internal/ui/styles"
)

// Spinner animates a one-line status message until stopped.
// The zero value is not usable; create one with [NewSpinner].
type Spinner struct {
	out     io.Writer
	message string

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

type spinnerModel struct {
	spinner spinner.Model
	message string
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(tea.KeyPressMsg); ok {
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m spinnerModel) View() tea.View {
	return tea.NewView(fmt.Sprintf("%s %s", m.spinner.View(), m.message))
}

// NewSpinner returns a spinner showing message on stderr.
func NewSpinner(message string) *Spinner {
	return &Spinner{out: os.Stderr, message: message}
}

// Start begins the animation. Calling Start twice has no effect.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.program != nil {
		return
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.AccentStyle))
	s.program = tea.NewProgram(spinnerModel{spinner: sp, message: s.message},
		tea.WithoutSignalHandler(), tea.WithInput(nil), tea.WithOutput(s.out))
	s.done = make(chan struct{})

	go func() {
		_, _ = s.program.Run()
		close(s.done)
	}()
}

// Stop ends the animation and clears the line. It is safe to call on a
// spinner that was never started.
func (s *Spinner) Stop() {
	s.mu.Lock()
	program, done := s.program, s.done
	s.program = nil
	s.mu.Unlock()

	if program == nil {
		return
	}
	program.Quit()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
	}
	fmt.Fprint(s.out, "\r\033[K")
}
