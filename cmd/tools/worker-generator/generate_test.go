package main

import (
	"os"
	"path/filepath"
	"testing"

	"readiness-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listActivity() registry.Activity {
	return registry.Activity{
		ID:          "investor.match.list",
		DisplayName: "List Investor Matches",
		Description: "returns stored matches ordered by score",
		Category:    "investor",
		TaskType:    "list-investor-matches",
		Timeout:     "10s",
		ErrorCodes:  []string{"NO_INVESTOR_MATCHES"},
		InputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"assessmentId"},
			"properties": map[string]interface{}{
				"limit":        map[string]interface{}{"type": "integer"},
				"assessmentId": map[string]interface{}{"type": "string"},
				"investorIds":  map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			},
		},
		OutputSchema: map[string]interface{}{
			"properties": map[string]interface{}{
				"matches": map[string]interface{}{"type": "array"},
				"count":   map[string]interface{}{"type": "integer"},
			},
		},
	}
}

func TestNewWorkerData(t *testing.T) {
	data := newWorkerData(listActivity())

	assert.Equal(t, "listinvestormatches", data.PackageName)
	assert.True(t, data.HasRequiredInput())
	assert.Equal(t, []Field{
		{Name: "AssessmentID", GoType: "string", JSONName: "assessmentId", Required: true},
		{Name: "InvestorIDs", GoType: "[]string", JSONName: "investorIds"},
		{Name: "Limit", GoType: "int", JSONName: "limit"},
	}, data.InputFields)
	assert.Equal(t, []Field{
		{Name: "Count", GoType: "int", JSONName: "count"},
		{Name: "Matches", GoType: "[]interface{}", JSONName: "matches"},
	}, data.OutputFields)
}

func TestFieldTag(t *testing.T) {
	assert.Equal(t, "`json:\"assessmentId\" validate:\"required\"`", Field{JSONName: "assessmentId", Required: true}.Tag())
	assert.Equal(t, "`json:\"limit,omitempty\"`", Field{JSONName: "limit"}.Tag())
}

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "investor", "list-investor-matches")
	data := newWorkerData(listActivity())

	written, err := generate(dir, data, false)
	require.NoError(t, err)
	assert.Len(t, written, 4)

	models, err := os.ReadFile(filepath.Join(dir, "models.go"))
	require.NoError(t, err)
	assert.Contains(t, string(models), "package listinvestormatches")
	assert.Contains(t, string(models), "AssessmentID string   `json:\"assessmentId\" validate:\"required\"`")

	handler, err := os.ReadFile(filepath.Join(dir, "handler.go"))
	require.NoError(t, err)
	assert.Contains(t, string(handler), `TaskType = "list-investor-matches"`)
	assert.Contains(t, string(handler), "NO_INVESTOR_MATCHES")

	test, err := os.ReadFile(filepath.Join(dir, "handler_test.go"))
	require.NoError(t, err)
	assert.Contains(t, string(test), "require.Error(t, err)")

	_, err = generate(dir, data, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = generate(dir, data, true)
	assert.NoError(t, err)
}

func TestFindActivity(t *testing.T) {
	reg := &registry.ActivityRegistry{Activities: []registry.Activity{listActivity()}}

	for _, key := range []string{"investor.match.list", "list-investor-matches"} {
		a, ok := findActivity(reg, key)
		require.True(t, ok, key)
		assert.Equal(t, "List Investor Matches", a.DisplayName)
	}

	_, ok := findActivity(reg, "send-email")
	assert.False(t, ok)
}
