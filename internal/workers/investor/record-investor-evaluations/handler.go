// internal/workers/investor/record-investor-evaluations/handler.go
package recordinvestorevaluations

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/common/metrics"
	"readiness-workers/internal/common/observability"
	"readiness-workers/internal/models"
	"readiness-workers/internal/scoring"
	"readiness-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "record-investor-evaluations"
)

type Handler struct {
	config *Config
	store  *store.Store
	obs    *observability.Observability
	errs   *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		store:  store.New(db),
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
	span.SetAttributes(
		attribute.String("assessmentId", input.AssessmentID),
		attribute.Int("evaluations", len(input.Evaluations)),
	)

	output, err := h.execute(ctx, &input)
	if err != nil {
		span.RecordError(err)
		h.failJob(ctx, client, job, err, start)
		return
	}

	h.completeJob(ctx, client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.AssessmentID) == "" {
		return nil, errors.NewInvalidInputError("assessmentId is required")
	}
	if err := models.ValidateStruct(input); err != nil {
		return nil, errors.NewInvalidEvaluationError(err.Error())
	}

	if _, err := h.store.GetAssessment(ctx, input.AssessmentID); err != nil {
		if store.IsNotFound(err) {
			return nil, errors.NewAssessmentNotFoundError(input.AssessmentID)
		}
		return nil, store.JobError("get_assessment", err)
	}

	ids := make([]string, 0, len(input.Evaluations))
	seen := make(map[string]bool, len(input.Evaluations))
	for _, ev := range input.Evaluations {
		if seen[ev.InvestorID] {
			return nil, errors.NewInvalidEvaluationError("investor evaluated twice: " + ev.InvestorID)
		}
		seen[ev.InvestorID] = true
		ids = append(ids, ev.InvestorID)
	}

	investors, err := h.store.GetInvestorsByIDs(ctx, ids)
	if err != nil {
		return nil, store.JobError("get_investors_by_ids", err)
	}
	byID := make(map[string]models.Investor, len(investors))
	for _, inv := range investors {
		byID[inv.ID] = inv
	}

	results := make([]scoring.MatchResult, 0, len(input.Evaluations))
	for _, ev := range input.Evaluations {
		inv, ok := byID[ev.InvestorID]
		if !ok {
			return nil, errors.NewInvalidEvaluationError("unknown or inactive investor: " + ev.InvestorID)
		}
		score, reasoning := scoring.ScoreInvestorEvaluation(ev.Scores)
		reasoning.FocusAreas = inv.FocusAreas
		reasoning.InvestmentRange = scoring.FormatInvestmentRange(inv.InvestmentRangeMin, inv.InvestmentRangeMax)
		results = append(results, scoring.MatchResult{Investor: inv, Score: score, Reasoning: reasoning})
		metrics.MatchScores.Observe(float64(score))
	}
	ranked := scoring.RankMatches(results)

	matches := make([]models.InvestorMatch, 0, len(ranked))
	out := &Output{
		AssessmentID:  input.AssessmentID,
		Matches:       make([]Match, 0, len(ranked)),
		StoredMatches: len(ranked),
	}
	for _, r := range ranked {
		matches = append(matches, models.InvestorMatch{
			AssessmentID: input.AssessmentID,
			InvestorID:   r.Investor.ID,
			InvestorName: r.Investor.Name,
			MatchScore:   r.Score,
			Reasoning:    r.Reasoning,
			RankPosition: r.Rank,
		})
		out.Matches = append(out.Matches, Match{
			InvestorID:   r.Investor.ID,
			InvestorName: r.Investor.Name,
			MatchScore:   r.Score,
			RankPosition: r.Rank,
			Reasoning:    r.Reasoning,
		})
	}

	if err := h.store.ReplaceMatches(ctx, input.AssessmentID, matches); err != nil {
		return nil, store.WriteError("replace_matches", err)
	}

	h.logger.Info("investor evaluations recorded", map[string]interface{}{
		"assessmentId": input.AssessmentID,
		"investors":    len(ranked),
	})

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
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.obs.RecordJobProcessed(ctx, TaskType, "failed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), "failed")
	h.errs.HandleJobError(context.Background(), client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
