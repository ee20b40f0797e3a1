// internal/workers/investor/generate-investor-matches/handler.go
package generateinvestormatches

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
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
	"golang.org/x/sync/errgroup"
)

const (
	TaskType = "generate-investor-matches"
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
	span.SetAttributes(attribute.Int("matches", len(output.Matches)))

	h.completeJob(ctx, client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := models.ValidateStruct(input); err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}

	company, source, err := h.companyScores(ctx, input.AssessmentID)
	if err != nil {
		return nil, err
	}

	investors, err := h.cache.ActiveInvestors(ctx, h.store.ListActiveInvestors)
	if err != nil {
		return nil, store.JobError("list_active_investors", err)
	}
	if len(investors) == 0 {
		return nil, errors.NewNoInvestorMatchesError(input.AssessmentID)
	}

	results, err := h.scoreInvestors(ctx, company, investors)
	if err != nil {
		return nil, err
	}
	ranked := scoring.RankMatches(results)

	stored := ranked
	if limit := h.config.StoredMatchLimit; limit > 0 && len(stored) > limit {
		stored = stored[:limit]
	}
	if err := h.store.ReplaceMatches(ctx, input.AssessmentID, toInvestorMatches(input.AssessmentID, stored)); err != nil {
		return nil, store.WriteError("replace_matches", err)
	}

	out := &Output{
		AssessmentID:   input.AssessmentID,
		Matches:        make([]Match, 0, len(stored)),
		TotalInvestors: len(investors),
		StoredMatches:  len(stored),
		ScoreSource:    source,
	}
	for _, r := range stored {
		out.Matches = append(out.Matches, Match{
			InvestorID:   r.Investor.ID,
			InvestorName: r.Investor.Name,
			InvestorType: r.Investor.Type,
			MatchScore:   r.Score,
			RankPosition: r.Rank,
			Reasoning:    r.Reasoning,
			FitAnalysis:  r.FitAnalysis,
		})
	}
	if len(stored) > 0 {
		out.TopMatchScore = stored[0].Score
	}

	h.logger.Info("investor matches generated", map[string]interface{}{
		"assessmentId": input.AssessmentID,
		"investors":    len(investors),
		"stored":       len(stored),
		"topScore":     out.TopMatchScore,
		"scoreSource":  source,
	})

	return out, nil
}

// companyScores prefers the cached dimension percentages and falls back to
// the scores frozen on the assessment at completion. Assessments that are not
// completed, including reopened ones, are not scorable.
func (h *Handler) companyScores(ctx context.Context, assessmentID string) (map[models.Dimension]int, string, error) {
	if scores, ok := h.cache.DimensionScores(ctx, assessmentID); ok {
		return scores, "cache", nil
	}

	a, err := h.store.GetAssessment(ctx, assessmentID)
	if store.IsNotFound(err) {
		return nil, "", errors.NewAssessmentNotFoundError(assessmentID)
	}
	if err != nil {
		return nil, "", store.JobError("get_assessment", err)
	}
	if a.Status != models.AssessmentStatusCompleted || len(a.DimensionScores) == 0 {
		return nil, "", errors.NewAssessmentNotScorableError(assessmentID)
	}

	if err := h.cache.SetDimensionScores(ctx, assessmentID, a.Status, a.DimensionScores); err != nil {
		h.logger.Warn("failed to cache dimension scores", map[string]interface{}{
			"assessmentId": assessmentID,
			"error":        err,
		})
	}
	return a.DimensionScores, "assessment", nil
}

// scoreInvestors runs one match per investor, bounded by MatchConcurrency.
// Results keep the investor order so ranking ties are deterministic.
func (h *Handler) scoreInvestors(ctx context.Context, company map[models.Dimension]int, investors []models.Investor) ([]scoring.MatchResult, error) {
	results := make([]scoring.MatchResult, len(investors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.config.MatchConcurrency)
	for i, inv := range investors {
		i, inv := i, inv
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = scoring.ComputeInvestorMatch(company, inv)
			metrics.MatchScores.Observe(float64(results[i].Score))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, store.JobError("score_investors", err)
	}
	return results, nil
}

func toInvestorMatches(assessmentID string, ranked []scoring.MatchResult) []models.InvestorMatch {
	matches := make([]models.InvestorMatch, 0, len(ranked))
	for _, r := range ranked {
		matches = append(matches, models.InvestorMatch{
			AssessmentID: assessmentID,
			InvestorID:   r.Investor.ID,
			InvestorName: r.Investor.Name,
			MatchScore:   r.Score,
			Reasoning:    r.Reasoning,
			RankPosition: r.Rank,
		})
	}
	return matches
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
