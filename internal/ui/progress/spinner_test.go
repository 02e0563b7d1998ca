package progress

import (
	"strings"
	"testing"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
)

func TestSpinnerStopBeforeStart(t *testing.T) {
	t.Parallel()

	s := NewSpinner("Scanning")
	// Must not block or panic.
	s.Stop()
	s.Stop()
}

func TestSpinnerModelView(t *testing.T) {
	t.Parallel()

	m := spinnerModel{spinner: spinner.New(), message: "Scanning ~/src"}
	if got := m.View().Content; !strings.HasSuffix(got, " Scanning ~/src") {
		t.Errorf("View() = %q, want message after the spinner frame", got)
	}
}

func TestSpinnerModelIgnoresKeys(t *testing.T) {
	t.Parallel()

	m := spinnerModel{spinner: spinner.New(), message: "Scanning"}
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if cmd != nil {
		t.Error("Update(key) returned a command, want nil")
	}
}
