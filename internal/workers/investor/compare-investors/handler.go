// internal/workers/investor/compare-investors/handler.go
package compareinvestors

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
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "compare-investors"
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
	span.SetAttributes(
		attribute.String("assessmentId", input.AssessmentID),
		attribute.StringSlice("investorIds", input.InvestorIDs),
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
	if err := models.ValidateStruct(input); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}

	ids := dedupe(input.InvestorIDs)
	if len(ids) == 0 || len(ids) > h.config.MaxInvestors {
		return nil, errors.NewInvalidComparisonError(
			fmt.Sprintf("compare between 1 and %d investors, got %d", h.config.MaxInvestors, len(ids)))
	}

	company, err := h.companyScores(ctx, input.AssessmentID)
	if err != nil {
		return nil, err
	}

	investors, err := h.store.GetInvestorsByIDs(ctx, ids)
	if err != nil {
		return nil, store.JobError("get_investors_by_ids", err)
	}
	if missing := missingIDs(ids, investors); len(missing) > 0 {
		return nil, errors.NewInvalidComparisonError("unknown or inactive investors: "+strings.Join(missing, ", ")).
			WithMetadata("missingInvestorIds", missing)
	}

	shortlist := make([]scoring.MatchResult, 0, len(investors))
	for _, inv := range investors {
		shortlist = append(shortlist, scoring.ComputeInvestorMatch(company, inv))
	}

	out := &Output{
		AssessmentID: input.AssessmentID,
		Comparison:   scoring.BuildComparisonMatrix(shortlist, company),
	}
	best := scoring.RankMatches(shortlist)[0]
	out.BestMatch = BestMatch{InvestorID: best.Investor.ID, Name: best.Investor.Name, MatchScore: best.Score}

	h.logger.Info("investors compared", map[string]interface{}{
		"assessmentId": input.AssessmentID,
		"investors":    len(shortlist),
		"bestMatch":    out.BestMatch.InvestorID,
	})

	return out, nil
}

func (h *Handler) companyScores(ctx context.Context, assessmentID string) (map[models.Dimension]int, error) {
	if scores, ok := h.cache.DimensionScores(ctx, assessmentID); ok {
		return scores, nil
	}

	a, err := h.store.GetAssessment(ctx, assessmentID)
	if store.IsNotFound(err) {
		return nil, errors.NewAssessmentNotFoundError(assessmentID)
	}
	if err != nil {
		return nil, store.JobError("get_assessment", err)
	}
	if a.Status != models.AssessmentStatusCompleted || len(a.DimensionScores) == 0 {
		return nil, errors.NewAssessmentNotScorableError(assessmentID)
	}
	return a.DimensionScores, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func missingIDs(ids []string, found []models.Investor) []string {
	have := make(map[string]bool, len(found))
	for _, inv := range found {
		have[inv.ID] = true
	}
	var missing []string
	for _, id := range ids {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	return missing
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
