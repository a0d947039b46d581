package sim

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// ViolationReason classifies why a field failed validation.
type ViolationReason string

const (
	ReasonNotInteger ViolationReason = "not_integer"
	ReasonBelowMin   ViolationReason = "below_min"
	ReasonAboveMax   ViolationReason = "above_max"
	ReasonOutOfRange ViolationReason = "out_of_range" // too large for a 64-bit integer
	ReasonNotChoice  ViolationReason = "not_a_choice"
)

// Violation is one field-level validation failure.
type Violation struct {
	Field   string
	Reason  ViolationReason
	Value   string
	Message string
}

// ValidationResult maps parameter name to its violation. An empty result means
// the form may be submitted.
type ValidationResult map[string]Violation

// OK reports whether no field is flagged.
func (r ValidationResult) OK() bool {
	return len(r) == 0
}

// Fields returns the flagged parameter names in sorted order.
func (r ValidationResult) Fields() []string {
	fields := make([]string, 0, len(r))
	for name := range r {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

// ValidationMode selects how many violations a pass reports.
type ValidationMode string

const (
	// ValidateAll reports every violating field in one pass.
	ValidateAll ValidationMode = "all"
	// ValidateFirstOnly stops at the first violating field in descriptor order.
	ValidateFirstOnly ValidationMode = "first"
)

// IsValidValidationMode returns true if the given string names a validation mode.
// The empty string defaults to ValidateAll.
func IsValidValidationMode(mode string) bool {
	switch ValidationMode(mode) {
	case "", ValidateAll, ValidateFirstOnly:
		return true
	}
	return false
}

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// Validate checks every descriptor against the model and reports all violations.
func Validate(m *FormModel, descs []ParameterDescriptor) ValidationResult {
	result := make(ValidationResult)
	for _, d := range descs {
		if v, bad := checkField(d, formValue(m, d.Name)); bad {
			result[d.Name] = v
		}
	}
	return result
}

// ValidateFirst checks descriptors in order and reports only the first violation.
func ValidateFirst(m *FormModel, descs []ParameterDescriptor) ValidationResult {
	result := make(ValidationResult)
	for _, d := range descs {
		if v, bad := checkField(d, formValue(m, d.Name)); bad {
			result[d.Name] = v
			return result
		}
	}
	return result
}

// ValidateWith dispatches on mode.
func ValidateWith(mode ValidationMode, m *FormModel, descs []ParameterDescriptor) ValidationResult {
	if mode == ValidateFirstOnly {
		return ValidateFirst(m, descs)
	}
	return Validate(m, descs)
}

// VisibleViolations keeps only violations on touched fields; untouched fields
// do not show inline errors.
func VisibleViolations(m *FormModel, r ValidationResult) ValidationResult {
	visible := make(ValidationResult, len(r))
	for name, v := range r {
		if m != nil && m.Touched(name) {
			visible[name] = v
		}
	}
	return visible
}

func formValue(m *FormModel, name string) string {
	if m == nil {
		return ""
	}
	v, _ := m.Value(name)
	return v
}

func checkField(d ParameterDescriptor, value string) (Violation, bool) {
	switch d.Kind {
	case KindInteger:
		if !digitsOnly.MatchString(value) {
			return violation(d, value, ReasonNotInteger), true
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			// only overflow reaches here; digits-only text is otherwise parseable
			return overflow(d, value), true
		}
		if d.Min != nil && n < *d.Min {
			return violation(d, value, ReasonBelowMin), true
		}
		if d.Max != nil && n > *d.Max {
			return violation(d, value, ReasonAboveMax), true
		}
	case KindEnum:
		if !slices.Contains(d.Choices, value) {
			return violation(d, value, ReasonNotChoice), true
		}
	}
	return Violation{}, false
}

func violation(d ParameterDescriptor, value string, reason ViolationReason) Violation {
	msg := d.Message
	if msg == "" {
		msg = defaultMessage(d)
	}
	return Violation{Field: d.Name, Reason: reason, Value: value, Message: msg}
}

// overflow reports a value beyond int64. Without an upper bound the default
// message would only name the lower one, so it names the int64 limit instead.
func overflow(d ParameterDescriptor, value string) Violation {
	v := violation(d, value, ReasonOutOfRange)
	if d.Message == "" && d.Max == nil {
		v.Message = fmt.Sprintf("Please provide %s of at most %d.", d.DisplayName(), int64(math.MaxInt64))
	}
	return v
}

func defaultMessage(d ParameterDescriptor) string {
	label := d.DisplayName()
	if d.Kind == KindEnum {
		return fmt.Sprintf("Please choose %s from: %s.", label, strings.Join(d.Choices, ", "))
	}
	switch {
	case d.Min != nil && d.Max != nil:
		return fmt.Sprintf("Please provide %s in the range of [%d, %d].", label, *d.Min, *d.Max)
	case d.Min != nil:
		return fmt.Sprintf("Please provide %s of at least %d.", label, *d.Min)
	case d.Max != nil:
		return fmt.Sprintf("Please provide %s of at most %d.", label, *d.Max)
	}
	return fmt.Sprintf("Please provide %s as a whole number.", label)
}
