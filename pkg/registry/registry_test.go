package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRegistry = `{
  "version": "1.0.0",
  "lastUpdated": "2026-10-01",
  "activities": [
    {"id": "readiness.score.calculate", "taskType": "calculate-readiness-score", "errorCodes": ["ASSESSMENT_NOT_FOUND"], "retries": 3},
    {"id": "investor.match.list", "taskType": "list-investor-matches"}
  ]
}`

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleRegistry), 0o600))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"calculate-readiness-score", "list-investor-matches"}, reg.TaskTypes())

	a, ok := reg.Find("calculate-readiness-score")
	require.True(t, ok)
	assert.Equal(t, []string{"ASSESSMENT_NOT_FOUND"}, a.ErrorCodes)
	assert.Equal(t, 3, a.Retries)

	_, ok = reg.Find("send-email")
	assert.False(t, ok)
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = LoadRegistry(bad)
	assert.Error(t, err)
}
