package commands

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/raphi011/pm/internal/config"
)

// Record field names.
const (
	fieldKey         = "key"
	fieldDescription = "description"
	fieldType        = "type"
	fieldCommand     = "command"
	fieldIdentifier  = "identifier"
	fieldAction      = "action"
)

var requiredFields = []string{fieldKey, fieldDescription, fieldType, fieldCommand}

var knownFields = append(slices.Clone(requiredFields), fieldIdentifier)

// ValidationError describes the first schema violation in a command list.
type ValidationError struct {
	Index  int // entry index, -1 for the list itself
	Value  any // offending value
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("commands: %s: %s", e.Reason, formatValue(e.Value))
	}
	return fmt.Sprintf("commands[%d]: %s: %s", e.Index, e.Reason, formatValue(e.Value))
}

// Validate checks raw against the command schema: a list of records with
// string fields key, description and type, a command that is either a
// string or an {action = "..."} table, and an optional string identifier.
// Keys must be unique. Actions are required for call and bare-call.
// A nil raw value is an empty list.
func Validate(raw any) ([]Spec, error) {
	entries, err := toList(raw)
	if err != nil {
		return nil, err
	}

	specs := make([]Spec, 0, len(entries))
	seen := make(map[string]int)
	for i, entry := range entries {
		spec, err := validateEntry(i, entry)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[spec.Key]; dup {
			return nil, &ValidationError{Index: i, Value: entry, Reason: fmt.Sprintf("duplicate key %q (also commands[%d])", spec.Key, prev)}
		}
		seen[spec.Key] = i
		specs = append(specs, spec)
	}
	return specs, nil
}

func toList(raw any) ([]any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case []map[string]any:
		list := make([]any, len(v))
		for i, m := range v {
			list[i] = m
		}
		return list, nil
	default:
		return nil, &ValidationError{Index: -1, Value: raw, Reason: "expected a list of command records"}
	}
}

func validateEntry(i int, entry any) (Spec, error) {
	fail := func(reason string, args ...any) (Spec, error) {
		return Spec{}, &ValidationError{Index: i, Value: entry, Reason: fmt.Sprintf(reason, args...)}
	}

	m, ok := entry.(map[string]any)
	if !ok {
		return fail("expected a record")
	}
	for _, f := range requiredFields {
		if _, ok := m[f]; !ok {
			return fail("missing required field %q", f)
		}
	}
	for f := range m {
		if !slices.Contains(knownFields, f) {
			return fail("unknown field %q", f)
		}
	}

	var spec Spec
	var err error
	if spec.Key, err = nonEmptyString(m, fieldKey); err != nil {
		return fail("%v", err)
	}
	if spec.Description, err = nonEmptyString(m, fieldDescription); err != nil {
		return fail("%v", err)
	}
	typ, err := nonEmptyString(m, fieldType)
	if err != nil {
		return fail("%v", err)
	}
	spec.Type = Type(typ)
	if !spec.Type.Valid() {
		return fail("invalid type %q: must be %s", typ, config.FormatOptions(ValidTypes))
	}
	if _, ok := m[fieldIdentifier]; ok {
		if spec.Identifier, err = nonEmptyString(m, fieldIdentifier); err != nil {
			return fail("%v", err)
		}
	}

	if spec.Command, err = parsePayload(m[fieldCommand]); err != nil {
		return fail("%v", err)
	}
	if spec.Type != Compile && !spec.Command.IsAction() {
		return fail("type %q requires command = {action = \"...\"}", spec.Type)
	}
	return spec, nil
}

func nonEmptyString(m map[string]any, field string) (string, error) {
	s, ok := m[field].(string)
	if !ok {
		return "", fmt.Errorf("field %q must be a string", field)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("field %q must not be empty", field)
	}
	return s, nil
}

func parsePayload(v any) (Payload, error) {
	switch c := v.(type) {
	case string:
		if strings.TrimSpace(c) == "" {
			return Payload{}, fmt.Errorf("field %q must not be empty", fieldCommand)
		}
		return Payload{Literal: c}, nil
	case map[string]any:
		if _, ok := c[fieldAction]; !ok || len(c) != 1 {
			return Payload{}, fmt.Errorf("field %q table must contain only %q", fieldCommand, fieldAction)
		}
		name, err := nonEmptyString(c, fieldAction)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Action: name}, nil
	default:
		return Payload{}, fmt.Errorf("field %q must be a string or {action = \"...\"}", fieldCommand)
	}
}

// formatValue renders a raw config value with sorted map keys so warnings
// are stable.
func formatValue(v any) string {
	switch x := v.(type) {
	case map[string]any:
		parts := make([]string, 0, len(x))
		for _, k := range slices.Sorted(maps.Keys(x)) {
			parts = append(parts, k+": "+formatValue(x[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case string:
		return fmt.Sprintf("%q", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
