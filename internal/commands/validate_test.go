package commands

import (
	"errors"
	"strings"
	"testing"
)

func entry(kv ...any) map[string]any {
	m := make(map[string]any)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

func TestValidate(t *testing.T) {
	t.Parallel()

	compile := entry("key", "c", "description", "build", "type", "compile", "command", "make -k", "identifier", "make")
	call := entry("key", "s", "description", "shell", "type", "call", "command", map[string]any{"action": "shell"})

	specs, err := Validate([]any{compile, call})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	want := []Spec{
		{Key: "c", Description: "build", Type: Compile, Command: Payload{Literal: "make -k"}, Identifier: "make"},
		{Key: "s", Description: "shell", Type: Call, Command: Payload{Action: "shell"}},
	}
	if len(specs) != len(want) {
		t.Fatalf("Validate() = %+v, want %+v", specs, want)
	}
	for i := range want {
		if specs[i] != want[i] {
			t.Errorf("specs[%d] = %+v, want %+v", i, specs[i], want[i])
		}
	}
}

func TestValidate_TOMLTableList(t *testing.T) {
	t.Parallel()

	raw := []map[string]any{entry("key", "c", "description", "build", "type", "compile", "command", "make")}
	specs, err := Validate(raw)
	if err != nil || len(specs) != 1 {
		t.Fatalf("Validate([]map) = %+v, %v", specs, err)
	}
}

func TestValidate_Nil(t *testing.T) {
	t.Parallel()

	specs, err := Validate(nil)
	if err != nil || len(specs) != 0 {
		t.Errorf("Validate(nil) = %+v, %v, want empty", specs, err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	valid := entry("key", "a", "description", "ok", "type", "compile", "command", "true")

	tests := []struct {
		name    string
		raw     any
		wantErr string
	}{
		{"not a list", "make", "expected a list"},
		{"entry not a record", []any{"make"}, "commands[0]: expected a record"},
		{"missing type", []any{valid, entry("key", "b", "description", "build", "command", "make")}, `commands[1]: missing required field "type"`},
		{"missing command", []any{entry("key", "b", "description", "build", "type", "compile")}, `missing required field "command"`},
		{"unknown type", []any{entry("key", "b", "description", "build", "type", "spawn", "command", "make")}, `invalid type "spawn"`},
		{"unknown field", []any{entry("key", "b", "description", "build", "type", "compile", "command", "make", "cwd", "/")}, `unknown field "cwd"`},
		{"key not string", []any{entry("key", 1, "description", "build", "type", "compile", "command", "make")}, `field "key" must be a string`},
		{"empty description", []any{entry("key", "b", "description", " ", "type", "compile", "command", "make")}, `field "description" must not be empty`},
		{"empty identifier", []any{entry("key", "b", "description", "build", "type", "compile", "command", "make", "identifier", "")}, `field "identifier" must not be empty`},
		{"call with literal", []any{entry("key", "b", "description", "build", "type", "call", "command", "make")}, `type "call" requires command = {action`},
		{"bad command table", []any{entry("key", "b", "description", "build", "type", "call", "command", map[string]any{"run": "x"})}, `must contain only "action"`},
		{"command number", []any{entry("key", "b", "description", "build", "type", "compile", "command", 42)}, `must be a string or`},
		{"duplicate key", []any{valid, valid}, `commands[1]: duplicate key "a" (also commands[0])`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			specs, err := Validate(tt.raw)
			if err == nil {
				t.Fatalf("Validate() = %+v, want error", specs)
			}
			if specs != nil {
				t.Errorf("Validate() returned partial specs %+v", specs)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("error %T is not a *ValidationError", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorNamesValue(t *testing.T) {
	t.Parallel()

	_, err := Validate([]any{entry("key", "b", "description", "build", "command", "make")})
	want := `commands[0]: missing required field "type": {command: "make", description: "build", key: "b"}`
	if err == nil || err.Error() != want {
		t.Errorf("error = %v, want %s", err, want)
	}
}

func TestSpecInstanceIdentifier(t *testing.T) {
	t.Parallel()

	if got := (Spec{Description: "build all", Identifier: "make"}).InstanceIdentifier(); got != "make" {
		t.Errorf("InstanceIdentifier() = %q, want make", got)
	}
	if got := (Spec{Description: "build all"}).InstanceIdentifier(); got != "build all" {
		t.Errorf("InstanceIdentifier() = %q, want description", got)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	specs := []Spec{{Key: "a"}, {Key: "b", Description: "second"}}
	if s, ok := Find(specs, "b"); !ok || s.Description != "second" {
		t.Errorf("Find(b) = %+v, %v", s, ok)
	}
	if _, ok := Find(specs, "z"); ok {
		t.Error("Find(z) found a spec")
	}
}
