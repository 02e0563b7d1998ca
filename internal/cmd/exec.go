// Package cmd provides helpers for executing external commands with proper error handling.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/raphi011/pm/internal/log"
)

// RunContext executes name with args in dir. On failure the error carries the
// trimmed stderr output when there is any. A cancelled context yields ctx.Err().
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	_, err := OutputContext(ctx, dir, name, args...)
	return err
}

// OutputContext executes name with args in dir and returns stdout.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	return OutputEnv(ctx, dir, nil, name, args...)
}

// OutputEnv is OutputContext with an explicit environment.
// A nil env inherits the current process environment.
func OutputEnv(ctx context.Context, dir string, env []string, name string, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	c.Env = env
	var stderr bytes.Buffer
	c.Stderr = &stderr

	done := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()
	out, err := c.Output()
	done(time.Since(start))

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.New(msg)
		}
		return nil, err
	}
	return out, nil
}

// Available reports whether name is found in PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
