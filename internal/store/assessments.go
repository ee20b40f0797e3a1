package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"readiness-workers/internal/models"

	"github.com/rotisserie/eris"
)

const assessmentColumns = `assessment_id, title, company_name, status, progress_percentage,
	overall_readiness_score, dimension_scores, current_question_id,
	industry, annual_revenue, funding_amount_sought, investment_type, company_stage,
	geographic_location, growth_rate, business_model, ebitda,
	created_at, updated_at, completed_at`

func (s *Store) GetAssessment(ctx context.Context, id string) (models.Assessment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE assessment_id = $1`, id)

	var (
		a                                     models.Assessment
		status                                string
		overall                               sql.NullInt64
		dimScores                             []byte
		currentQ                              sql.NullString
		industry, invType, stage, geo, bModel sql.NullString
		revenue, funding, growth, ebitda      sql.NullFloat64
		completedAt                           sql.NullTime
	)
	err := row.Scan(
		&a.ID, &a.Title, &a.CompanyName, &status, &a.ProgressPercentage,
		&overall, &dimScores, &currentQ,
		&industry, &revenue, &funding, &invType, &stage,
		&geo, &growth, &bModel, &ebitda,
		&a.CreatedAt, &a.UpdatedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return a, eris.Wrapf(ErrNotFound, "store: assessment %s", id)
	}
	if err != nil {
		return a, eris.Wrapf(err, "store: get assessment %s", id)
	}

	a.Status = models.AssessmentStatus(status)
	a.OverallReadinessScore = int(overall.Int64)
	a.CurrentQuestionID = nullString(currentQ)
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	if len(dimScores) > 0 {
		if err := json.Unmarshal(dimScores, &a.DimensionScores); err != nil {
			return a, eris.Wrapf(err, "store: decode dimension scores for assessment %s", id)
		}
	}

	a.Profile = models.CompanyProfile{
		Industry:            nullString(industry),
		AnnualRevenue:       nullFloatPtr(revenue),
		FundingAmountSought: nullFloatPtr(funding),
		InvestmentType:      nullString(invType),
		CompanyStage:        nullString(stage),
		GeographicLocation:  nullString(geo),
		GrowthRate:          growth.Float64,
		BusinessModel:       nullString(bModel),
		EBITDA:              ebitda.Float64,
	}
	return a, nil
}

// SaveProgress writes the lifecycle fields of a: status, progress, cursor,
// scores and completion time.
func (s *Store) SaveProgress(ctx context.Context, a models.Assessment) error {
	scores, err := jsonColumn(a.DimensionScores)
	if err != nil {
		return eris.Wrapf(err, "store: encode dimension scores for assessment %s", a.ID)
	}

	var overall sql.NullInt64
	if a.DimensionScores != nil {
		overall = sql.NullInt64{Int64: int64(a.OverallReadinessScore), Valid: true}
	}
	var completedAt sql.NullTime
	if a.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *a.CompletedAt, Valid: true}
	}
	updatedAt := a.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE assessments SET
			status = $2,
			progress_percentage = $3,
			current_question_id = $4,
			overall_readiness_score = $5,
			dimension_scores = $6,
			completed_at = $7,
			updated_at = $8
		WHERE assessment_id = $1`,
		a.ID, string(a.Status), a.ProgressPercentage, toNullString(a.CurrentQuestionID),
		overall, scores, completedAt, updatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "store: save progress for assessment %s", a.ID)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return eris.Wrapf(ErrNotFound, "store: assessment %s", a.ID)
	}
	return nil
}
