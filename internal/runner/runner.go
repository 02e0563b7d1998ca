// Package runner is the execution back end for dispatched shell commands.
//
// Every run carries an instance name. Output placement decides where the
// command runs: the foreground terminal by default, or for other-window
// placement a new tmux window (inside tmux) or a background process
// logging to <log_dir>/<name>.log. Instances sharing a name are allowed to
// run concurrently; starting one while another with the same name is live
// produces a warning.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/raphi011/pm/internal/cmd"
	"github.com/raphi011/pm/internal/env"
	"github.com/raphi011/pm/internal/log"
	"github.com/raphi011/pm/internal/tmux"
)

// Mode is how an instance was started.
type Mode string

const (
	ModeForeground Mode = "foreground"
	ModeWindow     Mode = "window"
	ModeBackground Mode = "background"
)

// RunSpec describes a shell command to run.
type RunSpec struct {
	Name      string // instance name
	Command   string // shell command line
	Dir       string
	Env       []string // nil inherits the process environment
	Placement env.Placement
}

// Instance is a started command.
type Instance struct {
	Name    string
	Mode    Mode
	PID     int    // 0 for tmux windows
	LogPath string // background instances only
	Started time.Time

	done chan struct{}
	err  error
}

// Wait blocks until a process instance exits and returns its error.
// Window instances return immediately.
func (i *Instance) Wait() error {
	if i.done == nil {
		return nil
	}
	<-i.done
	return i.err
}

func (i *Instance) exited() bool {
	if i.done == nil {
		return true
	}
	select {
	case <-i.done:
		return true
	default:
		return false
	}
}

// Backend runs shell commands under an instance name.
type Backend interface {
	Shell(ctx context.Context, spec RunSpec) (*Instance, error)
}

// Options configures a Shell backend.
type Options struct {
	Shell  string // defaults to /bin/sh
	LogDir string // background logs
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// InsideTmux overrides tmux detection.
	InsideTmux func() bool
}

// Shell runs commands through a POSIX shell.
type Shell struct {
	opts Options

	mu   sync.Mutex
	live map[string][]*Instance
}

// NewShell creates a Shell backend.
func NewShell(opts Options) *Shell {
	if opts.Shell == "" {
		opts.Shell = "/bin/sh"
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.InsideTmux == nil {
		opts.InsideTmux = tmux.Inside
	}
	return &Shell{opts: opts, live: make(map[string][]*Instance)}
}

// Shell implements Backend.
func (s *Shell) Shell(ctx context.Context, spec RunSpec) (*Instance, error) {
	if spec.Name == "" {
		return nil, errors.New("run: instance name required")
	}
	s.warnIfLive(ctx, spec.Name)

	var (
		inst *Instance
		err  error
	)
	switch {
	case spec.Placement != env.PlacementOtherWindow:
		inst, err = s.foreground(ctx, spec)
	case s.opts.InsideTmux():
		inst, err = s.window(ctx, spec)
	default:
		inst, err = s.background(ctx, spec)
	}
	if inst != nil {
		s.track(inst)
	}
	return inst, err
}

// Live returns instances of name that have not exited.
func (s *Shell) Live(name string) []*Instance {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.live[name] = slices.DeleteFunc(s.live[name], (*Instance).exited)
	return slices.Clone(s.live[name])
}

func (s *Shell) track(inst *Instance) {
	if inst.Mode == ModeWindow {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live[inst.Name] = append(s.live[inst.Name], inst)
}

func (s *Shell) warnIfLive(ctx context.Context, name string) {
	running := len(s.Live(name)) > 0
	if !running && s.opts.InsideTmux() {
		exists, err := tmux.WindowExists(ctx, name)
		if err != nil {
			log.FromContext(ctx).Debug("cannot list tmux windows", "error", err)
		}
		running = exists
	}
	if running {
		log.FromContext(ctx).Warnf("%s is already running; starting another instance", name)
	}
}

func (s *Shell) command(ctx context.Context, spec RunSpec) *exec.Cmd {
	c := exec.CommandContext(ctx, s.opts.Shell, "-c", spec.Command)
	c.Dir = spec.Dir
	c.Env = spec.Env
	return c
}

func (s *Shell) foreground(ctx context.Context, spec RunSpec) (*Instance, error) {
	c := s.command(ctx, spec)
	c.Stdin = s.opts.Stdin
	c.Stdout = s.opts.Stdout
	c.Stderr = s.opts.Stderr

	done := log.FromContext(ctx).Command(spec.Dir, s.opts.Shell, "-c", spec.Command)
	inst := &Instance{Name: spec.Name, Mode: ModeForeground, Started: time.Now(), done: make(chan struct{})}
	if err := c.Start(); err != nil {
		close(inst.done)
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}
	inst.PID = c.Process.Pid

	inst.err = c.Wait()
	close(inst.done)
	done(time.Since(inst.Started))

	if inst.err != nil {
		return inst, fmt.Errorf("%s: %w", spec.Name, inst.err)
	}
	return inst, nil
}

func (s *Shell) background(ctx context.Context, spec RunSpec) (*Instance, error) {
	if err := os.MkdirAll(s.opts.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	logPath := filepath.Join(s.opts.LogDir, LogFileName(spec.Name))
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	// Detached from ctx and the terminal's process group so the command
	// outlives the menu.
	c := exec.Command(s.opts.Shell, "-c", spec.Command)
	c.Dir = spec.Dir
	c.Env = spec.Env
	c.Stdout = f
	c.Stderr = f
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := c.Start(); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}

	inst := &Instance{
		Name:    spec.Name,
		Mode:    ModeBackground,
		PID:     c.Process.Pid,
		LogPath: logPath,
		Started: time.Now(),
		done:    make(chan struct{}),
	}
	go func() {
		inst.err = c.Wait()
		f.Close()
		close(inst.done)
	}()

	log.FromContext(ctx).Printf("Started %s (pid %d), output in %s\n", spec.Name, inst.PID, logPath)
	return inst, nil
}

// window runs spec in a new tmux window. The window inherits the tmux
// server's environment, so variables set for spec are passed with -e and
// variables spec lacks are removed with env -u.
func (s *Shell) window(ctx context.Context, spec RunSpec) (*Instance, error) {
	set, unset := envDiff(spec.Env, os.Environ())
	err := tmux.NewWindow(ctx, tmux.Window{
		Name:    spec.Name,
		Dir:     spec.Dir,
		Env:     set,
		Command: windowCommand(s.opts.Shell, spec, unset),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}
	return &Instance{Name: spec.Name, Mode: ModeWindow, Started: time.Now()}, nil
}

// windowCommand keeps the window open after the command exits so its
// output stays readable. unset names variables removed before the shell
// starts.
func windowCommand(shell string, spec RunSpec, unset []string) string {
	var prefix strings.Builder
	if len(unset) > 0 {
		prefix.WriteString("env")
		for _, key := range unset {
			prefix.WriteString(" -u " + cmd.Quote(key))
		}
		prefix.WriteString(" ")
	}
	return fmt.Sprintf("%s%s -c %s; printf '\\n[%%s exited with status %%d] ' %s $?; read -r _",
		prefix.String(), shell, cmd.Quote(spec.Command), cmd.Quote(spec.Name))
}

// LogFileName returns the log file name for an instance.
func LogFileName(name string) string {
	return strings.ReplaceAll(name, string(filepath.Separator), "_") + ".log"
}

// envDiff compares env with base. set holds entries of env that are absent
// from or differ in base; unset holds keys of base that env lacks. A nil env
// means base is used unchanged.
func envDiff(env, base []string) (set, unset []string) {
	if env == nil {
		return nil, nil
	}
	keys := make(map[string]bool, len(env))
	for _, kv := range env {
		key, _, _ := strings.Cut(kv, "=")
		keys[key] = true
		if !slices.Contains(base, kv) {
			set = append(set, kv)
		}
	}
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if !keys[key] && !slices.Contains(unset, key) {
			unset = append(unset, key)
		}
	}
	return set, unset
}
