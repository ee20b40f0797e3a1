package camunda

import (
	"testing"

	"readiness-workers/internal/common/validation"
	"readiness-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	calls int
}

func (h *recordingHandler) Handle(worker.JobClient, entities.Job) {
	h.calls++
}

func jobWithVariables(vars string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7, Type: "list-investor-matches", Variables: vars}}
}

func TestDispatch_SchemaGate(t *testing.T) {
	v, err := validation.NewInputValidator(&registry.ActivityRegistry{Activities: []registry.Activity{{
		TaskType: "list-investor-matches",
		InputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"assessmentId"},
		},
	}}})
	require.NoError(t, err)

	tests := []struct {
		name      string
		vars      string
		wantCalls int
	}{
		{name: "valid variables reach the handler", vars: `{"assessmentId":"a-1"}`, wantCalls: 1},
		{name: "invalid variables are rejected", vars: `{"limit":3}`, wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &recordingHandler{}
			dispatch(nil, jobWithVariables(tt.vars), "list-investor-matches", h, Options{Validator: v})
			assert.Equal(t, tt.wantCalls, h.calls)
		})
	}
}

func TestDispatch_NoValidator(t *testing.T) {
	h := &recordingHandler{}
	dispatch(nil, jobWithVariables(`{}`), "list-investor-matches", h, Options{})
	assert.Equal(t, 1, h.calls)
}
