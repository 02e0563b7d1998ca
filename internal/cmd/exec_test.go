package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raphi011/pm/internal/log"
)

func logCtx() context.Context {
	l := log.New(&bytes.Buffer{}, false, false)
	return log.WithLogger(context.Background(), l)
}

func TestRunContext_Success(t *testing.T) {
	t.Parallel()
	err := RunContext(logCtx(), "", "echo", "hello")
	if err != nil {
		t.Errorf("RunContext(echo hello) = %v, want nil", err)
	}
}

func TestRunContext_Failure(t *testing.T) {
	t.Parallel()
	err := RunContext(logCtx(), "", "sh", "-c", "exit 1")
	if err == nil {
		t.Error("RunContext(exit 1) = nil, want error")
	}
}

func TestRunContext_StderrMessage(t *testing.T) {
	t.Parallel()
	err := RunContext(logCtx(), "", "sh", "-c", "echo 'bad thing' >&2; exit 1")
	if err == nil {
		t.Fatal("RunContext = nil, want error")
	}
	if err.Error() != "bad thing" {
		t.Errorf("RunContext error = %q, want %q", err.Error(), "bad thing")
	}
}

func TestRunContext_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(logCtx())
	cancel()
	err := RunContext(ctx, "", "sleep", "10")
	if err == nil {
		t.Error("RunContext with cancelled context = nil, want error")
	}
	if err != context.Canceled {
		t.Errorf("RunContext error = %v, want context.Canceled", err)
	}
}

func TestOutputContext_Dir(t *testing.T) {
	t.Parallel()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	out, err := OutputContext(logCtx(), dir, "pwd")
	if err != nil {
		t.Fatalf("OutputContext(pwd) = %v, want nil", err)
	}
	if got := strings.TrimSpace(string(out)); got != dir {
		t.Errorf("pwd = %q, want %q", got, dir)
	}
}

func TestOutputContext_VerboseTrace(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(&buf, true, false))
	if _, err := OutputContext(ctx, "", "echo", "traced"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "$ echo traced") {
		t.Errorf("trace = %q, want to contain %q", buf.String(), "$ echo traced")
	}
}

func TestAvailable(t *testing.T) {
	t.Parallel()
	if !Available("sh") {
		t.Error("Available(sh) = false, want true")
	}
	if Available("pm-definitely-not-a-binary") {
		t.Error("Available(missing) = true, want false")
	}
}

func TestOutputContext_Success(t *testing.T) {
	t.Parallel()
	out, err := OutputContext(logCtx(), "", "echo", "hello")
	if err != nil {
		t.Fatalf("OutputContext(echo hello) = %v, want nil", err)
	}
	if got := string(out); got != "hello\n" {
		t.Errorf("OutputContext output = %q, want %q", got, "hello\n")
	}
}

func TestOutputContext_Failure(t *testing.T) {
	t.Parallel()
	_, err := OutputContext(logCtx(), "", "sh", "-c", "exit 1")
	if err == nil {
		t.Error("OutputContext(exit 1) = nil, want error")
	}
}

func TestOutputContext_StderrMessage(t *testing.T) {
	t.Parallel()
	_, err := OutputContext(logCtx(), "", "sh", "-c", "echo 'error msg' >&2; exit 1")
	if err == nil {
		t.Fatal("OutputContext = nil, want error")
	}
	if err.Error() != "error msg" {
		t.Errorf("OutputContext error = %q, want %q", err.Error(), "error msg")
	}
}

func TestOutputContext_ContextCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(logCtx())
	cancel()
	_, err := OutputContext(ctx, "", "sleep", "10")
	if err == nil {
		t.Error("OutputContext with cancelled context = nil, want error")
	}
	if err != context.Canceled {
		t.Errorf("OutputContext error = %v, want context.Canceled", err)
	}
}

func TestOutputEnv(t *testing.T) {
	t.Parallel()
	out, err := OutputEnv(logCtx(), "", []string{"PM_TEST_VALUE=scoped"}, "/bin/sh", "-c", "echo $PM_TEST_VALUE")
	if err != nil {
		t.Fatalf("OutputEnv() error = %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "scoped" {
		t.Errorf("OutputEnv() = %q, want scoped", got)
	}
}

func TestQuote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"", "''"},
		{"it's", `'it'\''s'`},
		{"$(rm -rf /)", "'$(rm -rf /)'"},
	}
	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	out, err := OutputContext(logCtx(), "", "sh", "-c", "printf %s "+Quote("it's a $HOME"))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "it's a $HOME" {
		t.Errorf("quoted round trip = %q", out)
	}
}
