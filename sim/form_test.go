package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormModel_StartsAtDefaults(t *testing.T) {
	m := NewFormModel(ioDescriptors())

	v, ok := m.Value("numTasks")
	require.True(t, ok)
	assert.Equal(t, "1", v)
	v, _ = m.Value("overlapAllowed")
	assert.Equal(t, "false", v)
	assert.False(t, m.Touched("numTasks"))
}

func TestNewFormModel_EmptyBooleanDefault_IsFalse(t *testing.T) {
	m := NewFormModel([]ParameterDescriptor{{Name: "local", Kind: KindBoolean, Default: ""}})

	v, _ := m.Value("local")
	assert.Equal(t, "false", v)
}

func TestFormModel_Set_ReplacesValueAndTouches(t *testing.T) {
	m := NewFormModel(ioDescriptors())

	require.NoError(t, m.Set("numTasks", "42"))

	v, _ := m.Value("numTasks")
	assert.Equal(t, "42", v)
	assert.True(t, m.Touched("numTasks"))
	assert.False(t, m.Touched("taskGflop"), "no cross-field coupling")
}

func TestFormModel_Set_UnknownField_Rejected(t *testing.T) {
	m := NewFormModel(ioDescriptors())

	err := m.Set("numHosts", "3")

	assert.Error(t, err)
	_, ok := m.Value("numHosts")
	assert.False(t, ok)
}

func TestFormModel_Set_BooleanKeepsStructuralValidity(t *testing.T) {
	// GIVEN a boolean field
	m := NewFormModel(ioDescriptors())

	// WHEN set to a checkbox representation
	require.NoError(t, m.Set("overlapAllowed", "on"))

	// THEN it is stored normalized
	v, _ := m.Value("overlapAllowed")
	assert.Equal(t, "true", v)

	// WHEN set to something that is not a boolean
	err := m.Set("overlapAllowed", "maybe")

	// THEN the update is rejected and the value is unchanged
	assert.Error(t, err)
	v, _ = m.Value("overlapAllowed")
	assert.Equal(t, "true", v)
}

func TestFormModel_SetBool_OnlyForBooleans(t *testing.T) {
	m := NewFormModel(ioDescriptors())

	require.NoError(t, m.SetBool("overlapAllowed", true))
	assert.Error(t, m.SetBool("numTasks", true))
	assert.Error(t, m.SetBool("missing", true))
}

func TestFormModel_TouchAndReset(t *testing.T) {
	m := NewFormModel(ioDescriptors())
	require.NoError(t, m.Touch("taskGflop"))
	require.NoError(t, m.Set("numTasks", "9"))
	assert.Error(t, m.Touch("missing"))

	m.Reset()

	v, _ := m.Value("numTasks")
	assert.Equal(t, "1", v)
	assert.False(t, m.Touched("taskGflop"))
	assert.False(t, m.Touched("numTasks"))

	m.TouchAll()
	for _, d := range m.Descriptors() {
		assert.True(t, m.Touched(d.Name), d.Name)
	}
}

func TestFormModel_Params_TypedByKind(t *testing.T) {
	// GIVEN a form with one unparseable integer
	m := NewFormModel(ioDescriptors())
	require.NoError(t, m.Set("numTasks", "12"))
	require.NoError(t, m.Set("taskGflop", "lots"))
	require.NoError(t, m.SetBool("overlapAllowed", true))

	// WHEN params are derived
	params := m.Params()

	// THEN they follow descriptor order and wire names, typed per kind
	want := []Param{
		{Field: "num_tasks", Value: int64(12)},
		{Field: "task_gflop", Value: "lots"},
		{Field: "task_input", Value: int64(1)},
		{Field: "io_overlap", Value: true},
		{Field: "scheduler", Value: "random"},
	}
	assert.Equal(t, want, params)
}

func TestParameterDescriptor_Validate(t *testing.T) {
	tests := []struct {
		name string
		desc ParameterDescriptor
		ok   bool
	}{
		{"integer", ParameterDescriptor{Name: "n", Kind: KindInteger, Min: Bound(1), Max: Bound(2), Default: "1"}, true},
		{"inverted bounds", ParameterDescriptor{Name: "n", Kind: KindInteger, Min: Bound(3), Max: Bound(2)}, false},
		{"unknown kind", ParameterDescriptor{Name: "n", Kind: "float"}, false},
		{"empty name", ParameterDescriptor{Kind: KindBoolean}, false},
		{"bad boolean default", ParameterDescriptor{Name: "b", Kind: KindBoolean, Default: "maybe"}, false},
		{"enum default not a choice", ParameterDescriptor{Name: "e", Kind: KindEnum, Choices: []string{"a"}, Default: "b"}, false},
		{"enum without choices", ParameterDescriptor{Name: "e", Kind: KindEnum}, false},
		{"enum", ParameterDescriptor{Name: "e", Kind: KindEnum, Choices: []string{"a", "b"}, Default: "b"}, true},
		{"bounds on boolean", ParameterDescriptor{Name: "b", Kind: KindBoolean, Max: Bound(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateDescriptors_RejectsDuplicatesAndReservedFields(t *testing.T) {
	assert.NoError(t, ValidateDescriptors(ioDescriptors()))

	dupName := append(ioDescriptors(), ParameterDescriptor{Name: "numTasks", Field: "other", Kind: KindBoolean})
	assert.ErrorContains(t, ValidateDescriptors(dupName), "duplicate parameter name")

	dupField := append(ioDescriptors(), ParameterDescriptor{Name: "other", Field: "num_tasks", Kind: KindBoolean})
	assert.ErrorContains(t, ValidateDescriptors(dupField), "duplicate field")

	reserved := []ParameterDescriptor{{Name: "email", Kind: KindBoolean}}
	assert.ErrorContains(t, ValidateDescriptors(reserved), "reserved")
}

func TestIsValidKind(t *testing.T) {
	assert.True(t, IsValidKind("integer"))
	assert.True(t, IsValidKind("boolean"))
	assert.True(t, IsValidKind("enum"))
	assert.False(t, IsValidKind("Integer"))
	assert.False(t, IsValidKind(""))
}
