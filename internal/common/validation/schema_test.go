package validation

import (
	"testing"

	"readiness-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *registry.ActivityRegistry {
	return &registry.ActivityRegistry{
		Activities: []registry.Activity{
			{
				TaskType: "compare-investors",
				InputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"assessmentId", "investorIds"},
					"properties": map[string]interface{}{
						"assessmentId": map[string]interface{}{"type": "string", "minLength": 1},
						"investorIds": map[string]interface{}{
							"type":  "array",
							"items": map[string]interface{}{"type": "string"},
						},
					},
				},
			},
			{TaskType: "list-investor-matches"},
		},
	}
}

func TestInputValidator_Validate(t *testing.T) {
	v, err := NewInputValidator(testRegistry())
	require.NoError(t, err)

	tests := []struct {
		name      string
		taskType  string
		variables string
		valid     bool
		field     string
	}{
		{"valid", "compare-investors", `{"assessmentId":"a1","investorIds":["i1","i2"]}`, true, ""},
		{"missing required", "compare-investors", `{"assessmentId":"a1"}`, false, "investorIds"},
		{"wrong item type", "compare-investors", `{"assessmentId":"a1","investorIds":[3]}`, false, "investorIds"},
		{"empty id", "compare-investors", `{"assessmentId":"","investorIds":[]}`, false, "assessmentId"},
		{"no schema", "list-investor-matches", `{"anything":true}`, true, ""},
		{"unknown task", "not-registered", `{}`, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.taskType, tt.variables)
			assert.Equal(t, tt.valid, result.Valid)
			if tt.field != "" {
				assert.True(t, result.HasErrors(tt.field), "%v", result.GetErrorMessages())
			}
		})
	}
}

func TestInputValidator_MalformedJSON(t *testing.T) {
	v, err := NewInputValidator(testRegistry())
	require.NoError(t, err)

	result := v.Validate("compare-investors", `{"assessmentId":`)
	assert.False(t, result.Valid)
	assert.Equal(t, "MALFORMED_JSON", result.Errors[0].Code)
}

func TestInputValidator_HasSchema(t *testing.T) {
	v, err := NewInputValidator(testRegistry())
	require.NoError(t, err)

	assert.True(t, v.Has("compare-investors"))
	assert.False(t, v.Has("list-investor-matches"))
}

func TestNewInputValidator_BadSchema(t *testing.T) {
	reg := &registry.ActivityRegistry{Activities: []registry.Activity{{
		TaskType:    "broken",
		InputSchema: map[string]interface{}{"type": 12},
	}}}
	_, err := NewInputValidator(reg)
	assert.Error(t, err)
}
