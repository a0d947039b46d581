package sim

import (
	"fmt"
	"slices"
)

// Kind is the declared type of a simulation parameter.
type Kind string

const (
	// KindInteger is a whole number entered as text and range-checked by the validator.
	KindInteger Kind = "integer"
	// KindBoolean is a toggle; every boolean representation is accepted.
	KindBoolean Kind = "boolean"
	// KindEnum is one value out of a declared choice set.
	KindEnum Kind = "enum"
)

// validKinds maps accepted kind strings.
var validKinds = map[Kind]bool{
	KindInteger: true,
	KindBoolean: true,
	KindEnum:    true,
}

// IsValidKind returns true if the given string names a parameter kind.
func IsValidKind(kind string) bool {
	return validKinds[Kind(kind)]
}

// ParameterDescriptor declares one configurable simulation input.
// Descriptors are immutable once a scenario is loaded.
type ParameterDescriptor struct {
	Name    string   `yaml:"name"`
	Field   string   `yaml:"field,omitempty"` // request body key; empty means Name
	Kind    Kind     `yaml:"kind"`
	Min     *int64   `yaml:"min,omitempty"` // integer only; nil = unbounded
	Max     *int64   `yaml:"max,omitempty"` // integer only; nil = unbounded
	Choices []string `yaml:"choices,omitempty"`
	Default string   `yaml:"default"`
	Label   string   `yaml:"label,omitempty"`
	Message string   `yaml:"message,omitempty"` // inline error text; generated when empty
}

// Bound returns a pointer to v, for building descriptors in code.
func Bound(v int64) *int64 {
	return &v
}

// WireName returns the key this parameter is sent under.
func (d ParameterDescriptor) WireName() string {
	if d.Field != "" {
		return d.Field
	}
	return d.Name
}

// DisplayName returns the label shown to learners.
func (d ParameterDescriptor) DisplayName() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Name
}

// Validate checks that the descriptor is internally consistent:
// known kind, ordered bounds, and a default that is structurally valid for the kind.
func (d ParameterDescriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("parameter name must not be empty")
	}
	if !validKinds[d.Kind] {
		return fmt.Errorf("parameter %q: unknown kind %q; valid: integer, boolean, enum", d.Name, d.Kind)
	}
	switch d.Kind {
	case KindInteger:
		if d.Min != nil && d.Max != nil && *d.Min > *d.Max {
			return fmt.Errorf("parameter %q: min %d exceeds max %d", d.Name, *d.Min, *d.Max)
		}
		if len(d.Choices) > 0 {
			return fmt.Errorf("parameter %q: choices are only valid for enum parameters", d.Name)
		}
	case KindBoolean:
		if _, err := parseBool(d.Default); err != nil {
			return fmt.Errorf("parameter %q: default: %w", d.Name, err)
		}
		if d.Min != nil || d.Max != nil {
			return fmt.Errorf("parameter %q: bounds are only valid for integer parameters", d.Name)
		}
	case KindEnum:
		if len(d.Choices) == 0 {
			return fmt.Errorf("parameter %q: enum requires at least one choice", d.Name)
		}
		if !slices.Contains(d.Choices, d.Default) {
			return fmt.Errorf("parameter %q: default %q is not one of %v", d.Name, d.Default, d.Choices)
		}
		if d.Min != nil || d.Max != nil {
			return fmt.Errorf("parameter %q: bounds are only valid for integer parameters", d.Name)
		}
	}
	return nil
}

// ValidateDescriptors checks each descriptor and rejects duplicate names or wire keys.
func ValidateDescriptors(descs []ParameterDescriptor) error {
	names := make(map[string]bool, len(descs))
	fields := make(map[string]bool, len(descs))
	for i, d := range descs {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("parameters[%d]: %w", i, err)
		}
		if names[d.Name] {
			return fmt.Errorf("parameters[%d]: duplicate parameter name %q", i, d.Name)
		}
		if fields[d.WireName()] {
			return fmt.Errorf("parameters[%d]: duplicate field %q", i, d.WireName())
		}
		if d.WireName() == "userName" || d.WireName() == "email" {
			return fmt.Errorf("parameters[%d]: field %q is reserved for identity", i, d.WireName())
		}
		names[d.Name] = true
		fields[d.WireName()] = true
	}
	return nil
}
