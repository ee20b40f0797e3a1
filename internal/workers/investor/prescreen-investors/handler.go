// internal/workers/investor/prescreen-investors/handler.go
package prescreeninvestors

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
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "prescreen-investors"

	sourceIndex     = "index"
	sourceDirectory = "directory"
)

type Handler struct {
	config *Config
	store  *store.Store
	cache  *store.Cache
	index  *store.InvestorIndex
	obs    *observability.Observability
	errs   *errors.ErrorHandler
	logger logger.Logger
}

// NewHandler wires the handler. A nil es client scores the whole active
// directory.
func NewHandler(config *Config, db *sql.DB, redis *redis.Client, es *elasticsearch.Client, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	h := &Handler{
		config: config,
		store:  store.New(db),
		cache:  store.NewCache(redis, config.CacheTTL),
		obs:    obs,
		errs:   errors.NewErrorHandler(log),
		logger: log,
	}
	if es != nil {
		h.index = store.NewInvestorIndex(es, config.InvestorIndex)
	}
	return h
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
	span.SetAttributes(
		attribute.Int("candidates", len(output.Candidates)),
		attribute.String("candidateSource", output.CandidateSource),
	)

	h.completeJob(ctx, client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	profile, err := h.profile(ctx, input)
	if err != nil {
		return nil, err
	}
	if missing := profile.MissingFields(); len(missing) > 0 {
		return nil, errors.NewIncompleteCompanyProfileError(profile.Validate().Error()).
			WithMetadata("missingFields", missing)
	}

	investors, source, err := h.candidates(ctx, profile)
	if err != nil {
		return nil, err
	}
	metrics.PrescreenCandidates.WithLabelValues(source).Add(float64(len(investors)))

	results := scoring.PrescreenInvestors(profile, investors)
	if len(results) > h.config.Limit {
		results = results[:h.config.Limit]
	}

	out := &Output{
		AssessmentID:    input.AssessmentID,
		Candidates:      make([]Candidate, 0, len(results)),
		TotalScreened:   len(investors),
		CandidateSource: source,
	}
	for _, r := range results {
		out.Candidates = append(out.Candidates, Candidate{
			InvestorID:      r.Investor.ID,
			Name:            r.Investor.Name,
			Type:            r.Investor.Type,
			MatchScore:      r.MatchScore,
			MatchReasons:    r.MatchReasons,
			FocusAreas:      r.Investor.FocusAreas,
			InvestmentRange: scoring.FormatInvestmentRange(r.Investor.InvestmentRangeMin, r.Investor.InvestmentRangeMax),
			Website:         r.Investor.Website,
		})
	}

	h.logger.Info("investors prescreened", map[string]interface{}{
		"assessmentId": input.AssessmentID,
		"screened":     len(investors),
		"candidates":   len(out.Candidates),
		"source":       source,
	})

	return out, nil
}

func (h *Handler) profile(ctx context.Context, input *Input) (models.CompanyProfile, error) {
	if input.CompanyProfile != nil {
		return *input.CompanyProfile, nil
	}
	if input.AssessmentID == "" {
		return models.CompanyProfile{}, errors.NewInvalidInputError("assessmentId or companyProfile is required")
	}

	a, err := h.store.GetAssessment(ctx, input.AssessmentID)
	if store.IsNotFound(err) {
		return models.CompanyProfile{}, errors.NewAssessmentNotFoundError(input.AssessmentID)
	}
	if err != nil {
		return models.CompanyProfile{}, store.JobError("get_assessment", err)
	}
	return a.Profile, nil
}

// candidates reads the active directory through the investor index when one
// is configured. An index with no hits falls back to the Postgres list.
func (h *Handler) candidates(ctx context.Context, profile models.CompanyProfile) ([]models.Investor, string, error) {
	if h.index != nil {
		ids, err := h.index.CandidateIDs(ctx, profile, h.config.CandidatePageSize)
		if err != nil {
			return nil, "", errors.NewSearchQueryFailedError("investor_candidates", err)
		}
		if len(ids) > 0 {
			investors, err := h.store.GetInvestorsByIDs(ctx, ids)
			if err != nil {
				return nil, "", store.JobError("get_investors_by_ids", err)
			}
			return investors, sourceIndex, nil
		}
		h.logger.Debug("investor index returned no candidates", nil)
	}

	investors, err := h.cache.ActiveInvestors(ctx, h.store.ListActiveInvestors)
	if err != nil {
		return nil, "", store.JobError("list_active_investors", err)
	}
	return investors, sourceDirectory, nil
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
