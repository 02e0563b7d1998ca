package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLocal(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func TestLoadLocal_NoFile(t *testing.T) {
	t.Parallel()

	local, err := LoadLocal(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if local != nil {
		t.Fatalf("expected nil, got %+v", local)
	}
}

func TestLoadLocal_EmptyFile(t *testing.T) {
	t.Parallel()

	for _, name := range LocalConfigFileNames {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeLocal(t, dir, name, "")

			local, err := LoadLocal(dir)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if local == nil || local.Values == nil {
				t.Fatalf("expected empty non-nil values, got %+v", local)
			}
		})
	}
}

func TestLoadLocal_TOML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLocal(t, dir, ".pm.toml", `
[[commands]]
key = "t"
description = "test"
type = "compile"
command = "go test ./..."
`)

	local, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if local.Source != filepath.Join(dir, ".pm.toml") {
		t.Errorf("Source = %q", local.Source)
	}

	raw, ok := local.Get("commands")
	if !ok {
		t.Fatal("commands key missing")
	}
	list, ok := raw.([]map[string]any)
	if !ok || len(list) != 1 || list[0]["key"] != "t" {
		t.Errorf("commands = %#v", raw)
	}
}

func TestLoadLocal_YAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLocal(t, dir, ".pm.yaml", `
commands:
  - key: b
    description: build
    type: compile
    command: make
    identifier: make
`)

	local, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, _ := local.Get("commands")
	list, ok := raw.([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("commands = %#v, want one-element list", raw)
	}
	entry, ok := list[0].(map[string]any)
	if !ok || entry["identifier"] != "make" {
		t.Errorf("entry = %#v", list[0])
	}
}

func TestLoadLocal_TOMLWinsOverYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLocal(t, dir, ".pm.yml", "source: yaml\n")
	writeLocal(t, dir, ".pm.toml", "source = \"toml\"\n")

	local, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := local.Get("source"); v != "toml" {
		t.Errorf("source = %v, want toml", v)
	}
}

func TestLoadLocal_ParseError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLocal(t, dir, ".pm.yaml", "commands: [unterminated\n")

	if _, err := LoadLocal(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestInitLocal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := InitLocal(dir, false)
	if err != nil {
		t.Fatalf("InitLocal() error = %v", err)
	}
	if FindLocal(dir) != path {
		t.Errorf("FindLocal() = %q, want %q", FindLocal(dir), path)
	}
	if _, err := InitLocal(dir, false); err == nil {
		t.Error("second InitLocal(false) succeeded, want already exists error")
	}
}
