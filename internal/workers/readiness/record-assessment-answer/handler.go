// internal/workers/readiness/record-assessment-answer/handler.go
package recordassessmentanswer

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
	TaskType = "record-assessment-answer"
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

	if err := assessment.CanAnswer(a); err != nil {
		if !input.Reopen {
			return nil, errors.NewAssessmentCompletedError(a.ID)
		}
		if a, err = assessment.Reopen(a); err != nil {
			return nil, errors.NewAssessmentCompletedError(a.ID)
		}
		h.logger.Info("assessment reopened for editing", map[string]interface{}{"assessmentId": a.ID})
	}

	q, err := h.store.GetQuestion(ctx, input.QuestionID)
	if store.IsNotFound(err) || (err == nil && !q.Active) {
		return nil, errors.NewQuestionNotFoundError(input.QuestionID)
	}
	if err != nil {
		return nil, store.JobError("get_question", err)
	}

	if err := scoring.ValidateAnswer(input.Value, q); err != nil {
		return nil, errors.NewInvalidAnswerError(q.ID, err)
	}

	answer, err := h.store.UpsertAnswer(ctx, models.Answer{
		AssessmentID: a.ID,
		QuestionID:   q.ID,
		Value:        input.Value,
		ScoreImpact:  scoring.ScoreAnswer(input.Value, q.Type, q.Options),
	})
	if err != nil {
		return nil, store.WriteError("upsert_answer", err)
	}

	questions, err := h.store.ListQuestions(ctx, true)
	if err != nil {
		return nil, store.JobError("list_questions", err)
	}
	answers, err := h.store.ListAnswers(ctx, a.ID)
	if err != nil {
		return nil, store.JobError("list_answers", err)
	}

	updated, cursor := assessment.Advance(a, questions, answers)
	if err := h.store.SaveProgress(ctx, updated); err != nil {
		return nil, store.WriteError("save_progress", err)
	}

	if err := h.cache.InvalidateAssessment(ctx, a.ID); err != nil {
		h.logger.Warn("failed to invalidate cached scores", map[string]interface{}{
			"assessmentId": a.ID,
			"error":        err,
		})
	}

	completed := updated.Status == models.AssessmentStatusCompleted
	if completed {
		metrics.AssessmentsCompleted.Inc()
		if err := h.cache.SetDimensionScores(ctx, a.ID, updated.Status, updated.DimensionScores); err != nil {
			h.logger.Warn("failed to cache dimension scores", map[string]interface{}{
				"assessmentId": a.ID,
				"error":        err,
			})
		}
	}

	h.logger.Info("answer recorded", map[string]interface{}{
		"assessmentId": a.ID,
		"questionId":   q.ID,
		"scoreImpact":  answer.ScoreImpact,
		"progress":     updated.ProgressPercentage,
		"status":       updated.Status,
	})

	out := &Output{
		AnswerID:           answer.ID,
		ScoreImpact:        answer.ScoreImpact,
		Status:             updated.Status,
		ProgressPercentage: updated.ProgressPercentage,
		NextQuestionID:     cursor.QuestionID,
		AnsweredCount:      cursor.Answered,
		TotalQuestions:     cursor.Total,
		Completed:          completed,
	}
	if completed {
		out.OverallReadinessScore = updated.OverallReadinessScore
		out.DimensionScores = updated.DimensionScores
	}
	return out, nil
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
	code := errors.Normalize(err).Code
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
	h.errs.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
