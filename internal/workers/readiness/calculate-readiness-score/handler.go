// internal/workers/readiness/calculate-readiness-score/handler.go
package calculatereadinessscore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"readiness-workers/internal/assessment"
	"readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/common/metrics"
	"readiness-workers/internal/common/observability"
	"readiness-workers/internal/models"
	"readiness-workers/internal/scoring"
	"readiness-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "calculate-readiness-score"
)

type Handler struct {
	config *Config
	store  *store.Store
	cache  *store.Cache
	obs    *observability.Observability
	errs   *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		store:  store.New(db),
		cache:  store.NewCache(redis, config.CacheTTL),
		obs:    obs,
		errs:   errors.NewErrorHandler(log),
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	ctx, span := h.obs.StartSpan(ctx, TaskType, attribute.Int64("jobKey", job.Key))
	defer span.End()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)), start)
		return
	}
	span.SetAttributes(attribute.String("assessmentId", input.AssessmentID))

	output, err := h.execute(ctx, &input)
	if err != nil {
		span.RecordError(err)
		h.failJob(ctx, client, job, err, start)
		return
	}

	h.completeJob(ctx, client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := models.ValidateStruct(input); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}

	a, err := h.store.GetAssessment(ctx, input.AssessmentID)
	if store.IsNotFound(err) {
		return nil, errors.NewAssessmentNotFoundError(input.AssessmentID)
	}
	if err != nil {
		return nil, store.JobError("get_assessment", err)
	}

	questions, err := h.store.ListQuestions(ctx, true)
	if err != nil {
		return nil, store.JobError("list_questions", err)
	}
	answers, err := h.store.ListAnswers(ctx, a.ID)
	if err != nil {
		return nil, store.JobError("list_answers", err)
	}

	scores := assessment.Score(questions, answers)
	if len(scores) == 0 {
		return nil, errors.NewAssessmentNotScorableError(a.ID)
	}

	readiness := scoring.EvaluateReadiness(scores)
	percentages := scores.Percentages()

	// Only completed assessments are frozen; partial scores stay out of the
	// cache that matching reads from.
	if a.Status == models.AssessmentStatusCompleted {
		if err := h.cache.SetDimensionScores(ctx, a.ID, a.Status, percentages); err != nil {
			h.logger.Warn("failed to cache dimension scores", map[string]interface{}{
				"assessmentId": a.ID,
				"error":        err,
			})
		}
	}
	metrics.ReadinessTiers.WithLabelValues(string(readiness.Tier)).Inc()

	out := &Output{
		AssessmentID:     a.ID,
		OverallScore:     readiness.Percentage,
		Points150:        readiness.Points150,
		Tier:             readiness.Tier,
		TierDescription:  readiness.Tier.Description(),
		DimensionScores:  percentages,
		DimensionDetails: scores,
		AnsweredCount:    answeredCount(scores),
	}
	if input.IncludeCertification || len(input.Deliverables) > 0 {
		cert := scoring.EvaluateCertification(scores, input.Deliverables)
		out.Certification = &cert
	}

	h.logger.Info("readiness score calculated", map[string]interface{}{
		"assessmentId": a.ID,
		"points150":    readiness.Points150,
		"percentage":   readiness.Percentage,
		"tier":         readiness.Tier,
	})

	return out, nil
}

func answeredCount(scores scoring.DimensionScores) int {
	n := 0
	for _, s := range scores {
		n += s.Questions
	}
	return n
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
	h.errs.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
