// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"encoding/json"
	"time"

	"readiness-workers/internal/common/config"
	"readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/common/metrics"
	"readiness-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every task handler. Handlers complete or fail
// the job themselves.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// Options carries the optional collaborators of a registered worker.
type Options struct {
	Validator    *validation.InputValidator
	ErrorHandler *errors.ErrorHandler
}

// NewWorker opens a job worker for taskType. Variables are checked against
// the task's registry input schema before the handler sees them.
func NewWorker(
	client zbc.Client,
	taskType string,
	cfg config.WorkerConfig,
	handler JobHandler,
	opts Options,
	log logger.Logger,
) *CamundaWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(func(jc worker.JobClient, job entities.Job) {
			dispatch(jc, job, taskType, handler, opts)
		}).
		MaxJobsActive(cfg.MaxJobsActive).
		Timeout(config.GetDuration(cfg.Timeout)).
		Open()

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

func dispatch(jc worker.JobClient, job entities.Job, taskType string, handler JobHandler, opts Options) {
	active := metrics.WorkerJobsActive.WithLabelValues(taskType)
	active.Inc()
	start := time.Now()
	defer func() {
		active.Dec()
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
	}()

	if opts.Validator != nil {
		if result := opts.Validator.Validate(taskType, job.Variables); !result.Valid {
			details, _ := json.Marshal(result.GetErrorMessages())
			stdErr := errors.NewInvalidInputError(string(details)).
				WithMetadata("validationErrors", result.GetErrorMessages())
			metrics.WorkerJobsFailed.WithLabelValues(taskType, string(stdErr.Code)).Inc()
			if opts.ErrorHandler != nil {
				opts.ErrorHandler.HandleJobError(context.Background(), jc, job, stdErr)
			}
			return
		}
	}

	handler.Handle(jc, job)
}

func (w *CamundaWorker) Start() {
	w.logger.Info("worker started", nil)
}

// Stop closes the job worker and waits for in-flight jobs. The shared
// client is closed by its owner.
func (w *CamundaWorker) Stop(ctx context.Context) {
	w.logger.Info("stopping worker", nil)
	done := make(chan struct{})
	go func() {
		w.worker.Close()
		w.worker.AwaitClose()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("worker stop timed out", nil)
	}
}
