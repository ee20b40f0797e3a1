package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"readiness-workers/internal/common/config"
	"readiness-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{RetryConfig: &RetryConfig{
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   4 * time.Millisecond,
	}}}
}

func TestExecuteWithRetry(t *testing.T) {
	tests := []struct {
		name         string
		failures     []error
		maxRetries   int
		wantCalls    int
		wantCode     errors.ErrorCode
		wantNoErrors bool
	}{
		{name: "first attempt", wantCalls: 1, maxRetries: 3, wantNoErrors: true},
		{
			name:         "transient then success",
			failures:     []error{stderrors.New("rpc error: code = Unavailable"), stderrors.New("connection refused")},
			maxRetries:   3,
			wantCalls:    3,
			wantNoErrors: true,
		},
		{
			name:       "retries exhausted",
			failures:   []error{stderrors.New("timeout"), stderrors.New("timeout"), stderrors.New("timeout")},
			maxRetries: 2,
			wantCalls:  3,
			wantCode:   errors.ErrCodeWorkflowEngineUnavailable,
		},
		{
			name:       "rejected is not retried",
			failures:   []error{stderrors.New("rpc error: code = NotFound desc = job 42 not found")},
			maxRetries: 3,
			wantCalls:  1,
			wantCode:   errors.ErrCodeWorkflowEngineRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := testClient(tt.maxRetries).ExecuteWithRetry(context.Background(), "complete-job", func(context.Context) error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantNoErrors {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.Normalize(err).Code)
		})
	}
}

func TestExecuteWithRetry_ContextCancelled(t *testing.T) {
	c := &Client{config: &ClientConfig{RetryConfig: &RetryConfig{
		MaxRetries: 5,
		BaseDelay:  time.Hour,
		MaxDelay:   time.Hour,
	}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.ExecuteWithRetry(ctx, "topology", func(context.Context) error {
		return stderrors.New("connection reset by peer")
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeWorkflowEngineUnavailable, errors.Normalize(err).Code)
}

func TestBackoff(t *testing.T) {
	retry := &RetryConfig{BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, backoff(retry, 0))
	assert.Equal(t, 2*time.Second, backoff(retry, 1))
	assert.Equal(t, 4*time.Second, backoff(retry, 2))
	assert.Equal(t, 5*time.Second, backoff(retry, 3))
}

func TestClientConfigFrom(t *testing.T) {
	cfg := ClientConfigFrom(config.CamundaConfig{
		BrokerAddress:  "zeebe:26500",
		Timeout:        30000,
		RequestTimeout: 5000,
	})

	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.True(t, cfg.UsePlaintextConnection)
	assert.Equal(t, 30*time.Second, cfg.ConnectionTimeout)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Same(t, DefaultRetryConfig, cfg.RetryConfig)
}
