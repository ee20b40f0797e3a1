// Package storetest builds sqlmock rows shaped like the store's queries.
package storetest

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"readiness-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var (
	QuestionColumns = []string{"question_id", "question_text", "question_type", "dimension", "module",
		"order_index", "options", "help_text", "is_required", "is_active"}

	AssessmentColumns = []string{"assessment_id", "title", "company_name", "status", "progress_percentage",
		"overall_readiness_score", "dimension_scores", "current_question_id",
		"industry", "annual_revenue", "funding_amount_sought", "investment_type", "company_stage",
		"geographic_location", "growth_rate", "business_model", "ebitda",
		"created_at", "updated_at", "completed_at"}

	AnswerColumns = []string{"answer_id", "assessment_id", "question_id", "answer_value", "score_impact",
		"created_at", "updated_at"}

	InvestorColumns = []string{"investor_id", "name", "type", "focus_areas", "investment_range_min",
		"investment_range_max", "geographic_focus", "criteria_weights", "description", "website", "is_active"}

	MatchColumns = []string{"match_id", "assessment_id", "investor_id", "name", "match_score",
		"match_reasoning", "rank_position", "created_at"}
)

// Fixed is the timestamp every builder uses.
var Fixed = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func MockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func mustJSON(v interface{}) []byte {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func QuestionRows(questions ...models.Question) *sqlmock.Rows {
	rows := sqlmock.NewRows(QuestionColumns)
	for _, q := range questions {
		module := "supplemental"
		if q.Core {
			module = "core"
		}
		var options interface{}
		if len(q.Options) > 0 {
			options = mustJSON(q.Options)
		}
		rows.AddRow(q.ID, q.Text, string(q.Type), string(q.Dimension), module,
			q.OrderIndex, options, nil, q.Required, q.Active)
	}
	return rows
}

func AssessmentRows(a models.Assessment) *sqlmock.Rows {
	var scores, overall, completed interface{}
	if a.DimensionScores != nil {
		scores = mustJSON(a.DimensionScores)
		overall = a.OverallReadinessScore
	}
	if a.CompletedAt != nil {
		completed = *a.CompletedAt
	}
	var current interface{}
	if a.CurrentQuestionID != "" {
		current = a.CurrentQuestionID
	}
	p := a.Profile
	return sqlmock.NewRows(AssessmentColumns).AddRow(
		a.ID, a.Title, a.CompanyName, string(a.Status), a.ProgressPercentage,
		overall, scores, current,
		p.Industry, nullable(p.AnnualRevenue), nullable(p.FundingAmountSought), p.InvestmentType, p.CompanyStage,
		p.GeographicLocation, p.GrowthRate, p.BusinessModel, p.EBITDA,
		Fixed, Fixed, completed,
	)
}

func AnswerRows(answers ...models.Answer) *sqlmock.Rows {
	rows := sqlmock.NewRows(AnswerColumns)
	for _, a := range answers {
		rows.AddRow(a.ID, a.AssessmentID, a.QuestionID, a.Value, a.ScoreImpact, Fixed, Fixed)
	}
	return rows
}

func InvestorRows(investors ...models.Investor) *sqlmock.Rows {
	rows := sqlmock.NewRows(InvestorColumns)
	for _, inv := range investors {
		var focus, geo, weights interface{}
		if inv.FocusAreas != nil {
			focus = mustJSON(inv.FocusAreas)
		}
		if inv.GeographicFocus != nil {
			geo = mustJSON(inv.GeographicFocus)
		}
		if inv.CriteriaWeights != nil {
			weights = mustJSON(inv.CriteriaWeights)
		}
		rows.AddRow(inv.ID, inv.Name, string(inv.Type), focus,
			nullable(inv.InvestmentRangeMin), nullable(inv.InvestmentRangeMax),
			geo, weights, inv.Description, inv.Website, true)
	}
	return rows
}

func MatchRows(matches ...models.InvestorMatch) *sqlmock.Rows {
	rows := sqlmock.NewRows(MatchColumns)
	for _, m := range matches {
		rows.AddRow(m.ID, m.AssessmentID, m.InvestorID, m.InvestorName, m.MatchScore,
			mustJSON(m.Reasoning), m.RankPosition, Fixed)
	}
	return rows
}
