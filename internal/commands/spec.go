// Package commands loads, validates and normalizes custom command specs.
//
// Specs come from the "commands" value of a project's directory-local
// configuration, or from the default set in the global config. A local set
// is all-or-nothing: one invalid entry rejects the whole set and the
// defaults are used instead.
package commands

import (
	"fmt"
	"slices"
)

// Type selects how a spec is executed.
type Type string

const (
	// BareCall runs the action as-is, without environment scoping or naming.
	BareCall Type = "bare-call"
	// Call runs the action inside the project environment with an instance name.
	Call Type = "call"
	// Compile runs a shell command in the project environment under an instance name.
	Compile Type = "compile"
)

// ValidTypes lists the accepted type values.
var ValidTypes = []string{string(BareCall), string(Call), string(Compile)}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	return slices.Contains(ValidTypes, string(t))
}

// Payload is a spec's command: either a literal shell command or the name
// of a registered action. Exactly one field is set.
type Payload struct {
	Literal string
	Action  string
}

// IsAction reports whether the payload names a registered action.
func (p Payload) IsAction() bool {
	return p.Action != ""
}

func (p Payload) String() string {
	if p.IsAction() {
		return "action:" + p.Action
	}
	return p.Literal
}

// Spec is a validated custom command.
type Spec struct {
	Key         string
	Description string
	Type        Type
	Command     Payload
	Identifier  string // optional, see InstanceIdentifier
}

// InstanceIdentifier returns the identifier used for instance naming:
// the explicit identifier, else the description.
func (s Spec) InstanceIdentifier() string {
	if s.Identifier != "" {
		return s.Identifier
	}
	return s.Description
}

func (s Spec) String() string {
	return fmt.Sprintf("%s (%s, %s)", s.Key, s.Description, s.Type)
}

// Find returns the spec bound to key.
func Find(specs []Spec, key string) (Spec, bool) {
	i := slices.IndexFunc(specs, func(s Spec) bool { return s.Key == key })
	if i < 0 {
		return Spec{}, false
	}
	return specs[i], true
}
