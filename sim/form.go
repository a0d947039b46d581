package sim

import (
	"fmt"
	"strconv"
	"strings"
)

// FormModel holds the current input values of one scenario form and a touched
// flag per field. It starts at descriptor defaults and changes only through
// Set, SetBool and Touch.
//
// Boolean fields always hold a parsed boolean ("true" or "false"); integer and
// enum fields hold the raw text the learner typed. Range and membership are
// checked by Validate, not here.
//
// A FormModel is owned by a single form instance and is not safe for concurrent
// mutation.
type FormModel struct {
	descriptors []ParameterDescriptor
	index       map[string]int
	values      map[string]string
	touched     map[string]bool
}

// Param is one request body entry derived from the form.
type Param struct {
	Field string
	Value any
}

// NewFormModel creates a form initialized to the descriptors' defaults.
// Boolean defaults that do not parse fall back to false.
func NewFormModel(descs []ParameterDescriptor) *FormModel {
	m := &FormModel{
		descriptors: append([]ParameterDescriptor(nil), descs...),
		index:       make(map[string]int, len(descs)),
		values:      make(map[string]string, len(descs)),
		touched:     make(map[string]bool, len(descs)),
	}
	for i, d := range m.descriptors {
		m.index[d.Name] = i
	}
	m.Reset()
	return m
}

// Reset restores every field to its default and clears all touched flags.
func (m *FormModel) Reset() {
	for _, d := range m.descriptors {
		v := d.Default
		if d.Kind == KindBoolean {
			b, err := parseBool(v)
			if err != nil {
				b = false
			}
			v = strconv.FormatBool(b)
		}
		m.values[d.Name] = v
	}
	clear(m.touched)
}

// Descriptors returns a copy of the descriptors backing this form.
func (m *FormModel) Descriptors() []ParameterDescriptor {
	return append([]ParameterDescriptor(nil), m.descriptors...)
}

// Value returns the current value of a field.
func (m *FormModel) Value(name string) (string, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Set replaces one field's value and marks it touched.
// Unknown fields and non-boolean text for boolean fields are rejected and
// leave the model unchanged.
func (m *FormModel) Set(name, raw string) error {
	i, ok := m.index[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q", name)
	}
	if m.descriptors[i].Kind == KindBoolean {
		b, err := parseBool(raw)
		if err != nil {
			return fmt.Errorf("parameter %q: %w", name, err)
		}
		raw = strconv.FormatBool(b)
	}
	m.values[name] = raw
	m.touched[name] = true
	return nil
}

// SetBool sets a boolean field and marks it touched.
func (m *FormModel) SetBool(name string, v bool) error {
	i, ok := m.index[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q", name)
	}
	if m.descriptors[i].Kind != KindBoolean {
		return fmt.Errorf("parameter %q is %s, not boolean", name, m.descriptors[i].Kind)
	}
	m.values[name] = strconv.FormatBool(v)
	m.touched[name] = true
	return nil
}

// Touch marks a field touched without changing its value.
func (m *FormModel) Touch(name string) error {
	if _, ok := m.index[name]; !ok {
		return fmt.Errorf("unknown parameter %q", name)
	}
	m.touched[name] = true
	return nil
}

// TouchAll marks every field touched, as a submit attempt does.
func (m *FormModel) TouchAll() {
	for _, d := range m.descriptors {
		m.touched[d.Name] = true
	}
}

// Touched reports whether a field has been touched.
func (m *FormModel) Touched(name string) bool {
	return m.touched[name]
}

// Params returns the request body entries in descriptor order.
// Integers that parse are sent as numbers, anything else as its text.
func (m *FormModel) Params() []Param {
	params := make([]Param, 0, len(m.descriptors))
	for _, d := range m.descriptors {
		raw := m.values[d.Name]
		var value any = raw
		switch d.Kind {
		case KindInteger:
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				value = n
			}
		case KindBoolean:
			value = raw == "true"
		}
		params = append(params, Param{Field: d.WireName(), Value: value})
	}
	return params
}

// parseBool accepts the usual strconv forms plus checkbox-style on/off and yes/no.
// The empty string is false.
func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "off", "no":
		return false, nil
	case "on", "yes":
		return true, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("%q is not a boolean", raw)
	}
	return b, nil
}
