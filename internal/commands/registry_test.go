package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raphi011/pm/internal/config"
	"github.com/raphi011/pm/internal/log"
	"github.com/raphi011/pm/internal/project"
)

type stubTrust bool

func (s stubTrust) Allow(context.Context, string, string) bool { return bool(s) }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Commands = []map[string]any{
		{"key": "m", "description": "make", "type": "compile", "command": "make -k"},
	}
	return &cfg
}

func testContext() (context.Context, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.WithLogger(context.Background(), log.New(&buf, false, false)), &buf
}

func writeLocal(t *testing.T, content string) project.Project {
	t.Helper()
	root := t.TempDir()
	if content != "" {
		if err := os.WriteFile(filepath.Join(root, ".pm.toml"), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return project.Project{Root: root}
}

func TestRegistryLoad_NoLocalConfig(t *testing.T) {
	t.Parallel()

	ctx, _ := testContext()
	r := NewRegistry(ctx, testConfig(), stubTrust(true))

	specs := r.Load(ctx, writeLocal(t, ""))
	if len(specs) != 1 || specs[0].Key != "m" {
		t.Errorf("Load() = %+v, want defaults", specs)
	}
}

func TestRegistryLoad_LocalCommands(t *testing.T) {
	t.Parallel()

	ctx, _ := testContext()
	r := NewRegistry(ctx, testConfig(), stubTrust(true))

	p := writeLocal(t, `
[[commands]]
key = "c"
description = "compile"
type = "compile"
command = "make -k"
identifier = "make"
`)
	specs := r.Load(ctx, p)
	if len(specs) != 1 || specs[0].Key != "c" || specs[0].Identifier != "make" {
		t.Errorf("Load() = %+v, want local command c", specs)
	}
}

func TestRegistryLoad_MissingTypeFallsBack(t *testing.T) {
	t.Parallel()

	ctx, buf := testContext()
	r := NewRegistry(ctx, testConfig(), stubTrust(true))

	p := writeLocal(t, `
[[commands]]
key = "a"
description = "ok"
type = "compile"
command = "true"

[[commands]]
key = "b"
description = "broken"
command = "make"
`)
	specs := r.Load(ctx, p)
	if len(specs) != 1 || specs[0].Key != "m" {
		t.Errorf("Load() = %+v, want the default set, not a partial list", specs)
	}
	if !strings.Contains(buf.String(), `missing required field "type"`) || !strings.Contains(buf.String(), `"broken"`) {
		t.Errorf("warning does not name the offending value: %q", buf.String())
	}
}

func TestRegistryLoad_UntrustedFallsBack(t *testing.T) {
	t.Parallel()

	ctx, _ := testContext()
	r := NewRegistry(ctx, testConfig(), stubTrust(false))

	p := writeLocal(t, "[[commands]]\nkey = \"c\"\ndescription = \"c\"\ntype = \"compile\"\ncommand = \"make\"\n")
	if specs := r.Load(ctx, p); len(specs) != 1 || specs[0].Key != "m" {
		t.Errorf("Load() = %+v, want defaults for untrusted config", specs)
	}
}

func TestRegistryLoad_ParseErrorFallsBack(t *testing.T) {
	t.Parallel()

	ctx, buf := testContext()
	r := NewRegistry(ctx, testConfig(), stubTrust(true))

	if specs := r.Load(ctx, writeLocal(t, "commands = [")); len(specs) != 1 || specs[0].Key != "m" {
		t.Errorf("Load() = %+v, want defaults", specs)
	}
	if !strings.Contains(buf.String(), "Warning: failed to parse local config") {
		t.Errorf("missing parse warning: %q", buf.String())
	}
}

func TestNewRegistry_InvalidDefaults(t *testing.T) {
	t.Parallel()

	ctx, buf := testContext()
	cfg := config.Default()
	cfg.Commands = []map[string]any{{"key": "x"}}

	r := NewRegistry(ctx, &cfg, nil)
	if len(r.Defaults()) != 0 {
		t.Errorf("Defaults() = %+v, want empty", r.Defaults())
	}
	if !strings.Contains(buf.String(), "invalid default commands") {
		t.Errorf("missing warning: %q", buf.String())
	}
}

func TestDefaultsAreCopies(t *testing.T) {
	t.Parallel()

	ctx, _ := testContext()
	r := NewRegistry(ctx, testConfig(), nil)

	d := r.Defaults()
	d[0].Key = "changed"
	if r.Defaults()[0].Key != "m" {
		t.Error("mutating Defaults() result changed the registry")
	}
}
