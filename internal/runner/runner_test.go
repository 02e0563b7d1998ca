package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raphi011/pm/internal/env"
	"github.com/raphi011/pm/internal/log"
)

func notInTmux() bool { return false }

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return NewShell(Options{
		LogDir:     filepath.Join(t.TempDir(), "logs"),
		Stdin:      strings.NewReader(""),
		Stdout:     &out,
		Stderr:     &out,
		InsideTmux: notInTmux,
	}), &out
}

func logContext() (context.Context, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.WithLogger(context.Background(), log.New(&buf, false, false)), &buf
}

func TestShellForeground(t *testing.T) {
	t.Parallel()

	s, out := newTestShell(t)
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	inst, err := s.Shell(context.Background(), RunSpec{
		Name:    "api-command|pwd",
		Command: "pwd; echo $PM_SCOPED",
		Dir:     dir,
		Env:     []string{"PM_SCOPED=yes"},
	})
	if err != nil {
		t.Fatalf("Shell() error = %v", err)
	}
	if inst.Mode != ModeForeground || inst.Name != "api-command|pwd" {
		t.Errorf("instance = %+v", inst)
	}
	if got, want := out.String(), dir+"\nyes\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if len(s.Live(inst.Name)) != 0 {
		t.Error("finished foreground instance still live")
	}
}

func TestShellForegroundFailure(t *testing.T) {
	t.Parallel()

	s, _ := newTestShell(t)
	inst, err := s.Shell(context.Background(), RunSpec{Name: "x-command|fail", Command: "exit 3"})
	if err == nil {
		t.Fatal("Shell() error = nil, want exit status")
	}
	if !strings.HasPrefix(err.Error(), "x-command|fail: ") {
		t.Errorf("error %q does not name the instance", err)
	}
	if inst == nil || inst.Wait() == nil {
		t.Error("instance does not report the exit error")
	}
}

func TestShellBackgroundLogsAndWarnsOnDuplicate(t *testing.T) {
	t.Parallel()

	s, _ := newTestShell(t)
	ctx, logs := logContext()
	spec := RunSpec{
		Name:      "A-command|make",
		Command:   "echo started; sleep 0.3",
		Placement: env.PlacementOtherWindow,
	}

	first, err := s.Shell(ctx, spec)
	if err != nil {
		t.Fatalf("first Shell() error = %v", err)
	}
	second, err := s.Shell(ctx, spec)
	if err != nil {
		t.Fatalf("second Shell() error = %v", err)
	}

	if first.Mode != ModeBackground || second.Mode != ModeBackground {
		t.Errorf("modes = %s, %s, want background", first.Mode, second.Mode)
	}
	if first.Name != second.Name {
		t.Errorf("names differ: %q vs %q", first.Name, second.Name)
	}
	if !strings.Contains(logs.String(), "Warning: A-command|make is already running") {
		t.Errorf("missing duplicate warning in %q", logs.String())
	}

	for _, inst := range []*Instance{first, second} {
		if err := inst.Wait(); err != nil {
			t.Errorf("Wait() = %v", err)
		}
	}
	data, err := os.ReadFile(second.LogPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "started" {
		t.Errorf("log = %q, want started", data)
	}
	if len(s.Live(spec.Name)) != 0 {
		t.Error("exited instances still live")
	}
}

func TestShellRequiresName(t *testing.T) {
	t.Parallel()

	s, _ := newTestShell(t)
	if _, err := s.Shell(context.Background(), RunSpec{Command: "true"}); err == nil {
		t.Error("Shell() without name succeeded")
	}
}

func TestLogFileName(t *testing.T) {
	t.Parallel()

	if got := LogFileName("web-command|build/all"); got != "web-command|build_all.log" {
		t.Errorf("LogFileName() = %q", got)
	}
}

func TestWindowCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		unset []string
		want  string
	}{
		{"inherit", nil, `/bin/sh -c 'make -k'; printf '\n[%s exited with status %d] ' 'a-command|it'\''s' $?; read -r _`},
		{"unset", []string{"DB_URL", "TOKEN"}, `env -u 'DB_URL' -u 'TOKEN' /bin/sh -c 'make -k'; printf '\n[%s exited with status %d] ' 'a-command|it'\''s' $?; read -r _`},
	}
	for _, tt := range tests {
		got := windowCommand("/bin/sh", RunSpec{Name: "a-command|it's", Command: "make -k"}, tt.unset)
		if got != tt.want {
			t.Errorf("%s: windowCommand() =\n%s\nwant\n%s", tt.name, got, tt.want)
		}
	}
}

func TestEnvDiff(t *testing.T) {
	t.Parallel()

	set, unset := envDiff([]string{"A=1", "B=2", "C=3"}, []string{"A=1", "B=1", "SECRET=x"})
	if strings.Join(set, ",") != "B=2,C=3" {
		t.Errorf("envDiff() set = %v, want B=2,C=3", set)
	}
	if strings.Join(unset, ",") != "SECRET" {
		t.Errorf("envDiff() unset = %v, want SECRET removed by the loader", unset)
	}
	if set, unset := envDiff(nil, []string{"A=1"}); set != nil || unset != nil {
		t.Errorf("envDiff(nil) = %v, %v; want base unchanged", set, unset)
	}
}
