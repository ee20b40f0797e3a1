package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"readiness-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var questionCols = []string{"question_id", "question_text", "question_type", "dimension", "module",
	"order_index", "options", "help_text", "is_required", "is_active"}

func TestListQuestions(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db)

	mock.ExpectQuery(`SELECT (.+) FROM questions WHERE is_active = TRUE ORDER BY order_index`).
		WillReturnRows(sqlmock.NewRows(questionCols).
			AddRow("q1", "Audited financials?", "scale", "financial", "core", 1,
				[]byte(`[{"value":"1","label":"Not Ready","score":1},{"value":"5","label":"Excellent","score":5}]`),
				"Last fiscal year", true, true).
			AddRow("q2", "Describe your moat", "text", "market", "supplemental", 2, nil, nil, false, true))

	questions, err := s.ListQuestions(context.Background(), true)

	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, models.QuestionTypeScale, questions[0].Type)
	assert.True(t, questions[0].Core)
	assert.Len(t, questions[0].Options, 2)
	assert.Equal(t, 5.0, questions[0].Options[1].Score)
	assert.Equal(t, "Last fiscal year", questions[0].HelpText)
	assert.False(t, questions[1].Core)
	assert.Empty(t, questions[1].Options)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuestion_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db)

	mock.ExpectQuery(`SELECT (.+) FROM questions WHERE question_id`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(questionCols))

	_, err := s.GetQuestion(context.Background(), "missing")

	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertQuestion(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db)

	q := models.Question{
		ID: "q1", Text: "Audited?", Type: models.QuestionTypeBoolean,
		Dimension: models.DimensionFinancial, Core: true, Active: true, OrderIndex: 3,
	}
	mock.ExpectExec(`INSERT INTO questions (.+) ON CONFLICT \(question_id\) DO UPDATE`).
		WithArgs("q1", "Audited?", "boolean", "financial", "core", 3, sqlmock.AnyArg(),
			sql.NullString{}, false, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := s.UpsertQuestion(context.Background(), q)

	require.NoError(t, err)
	assert.Equal(t, "q1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var assessmentCols = []string{"assessment_id", "title", "company_name", "status", "progress_percentage",
	"overall_readiness_score", "dimension_scores", "current_question_id",
	"industry", "annual_revenue", "funding_amount_sought", "investment_type", "company_stage",
	"geographic_location", "growth_rate", "business_model", "ebitda",
	"created_at", "updated_at", "completed_at"}

func TestGetAssessment(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM assessments WHERE assessment_id`).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows(assessmentCols).AddRow(
			"a1", "Series A prep", "Acme", "completed", 100,
			72, []byte(`{"financial":80,"legal":55}`), nil,
			"fintech", 2500000.0, nil, "equity", "series_a",
			"Berlin, Germany", 35.0, "b2b_saas", nil,
			created, created, created,
		))

	a, err := s.GetAssessment(context.Background(), "a1")

	require.NoError(t, err)
	assert.Equal(t, models.AssessmentStatusCompleted, a.Status)
	assert.Equal(t, 72, a.OverallReadinessScore)
	assert.Equal(t, 80, a.DimensionScores[models.DimensionFinancial])
	require.NotNil(t, a.Profile.AnnualRevenue)
	assert.Equal(t, 2500000.0, *a.Profile.AnnualRevenue)
	assert.Nil(t, a.Profile.FundingAmountSought)
	assert.Equal(t, []string{"fundingAmountSought"}, a.Profile.MissingFields())
	require.NotNil(t, a.CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAssessment_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db)

	mock.ExpectQuery(`SELECT (.+) FROM assessments`).WithArgs("nope").WillReturnRows(sqlmock.NewRows(assessmentCols))

	_, err := s.GetAssessment(context.Background(), "nope")
	assert.True(t, IsNotFound(err))
}

func TestSaveProgress(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db)
	now := time.Now().UTC()

	a := models.Assessment{
		ID:                 "a1",
		Status:             models.AssessmentStatusInProgress,
		ProgressPercentage: 40,
		CurrentQuestionID:  "q4",
		UpdatedAt:          now,
	}
	mock.ExpectExec(`UPDATE assessments SET`).
		WithArgs("a1", "in_progress", 40, sql.NullString{String: "q4", Valid: true},
			sql.NullInt64{}, sqlmock.AnyArg(), sql.NullTime{}, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.SaveProgress(context.Background(), a))

	mock.ExpectExec(`UPDATE assessments SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	err := s.SaveProgress(context.Background(), models.Assessment{ID: "gone"})
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertAnswer(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO answers (.+) ON CONFLICT \(assessment_id, question_id\) DO UPDATE`).
		WithArgs(sqlmock.AnyArg(), "a1", "q1", "4", 4.0, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"answer_id", "created_at"}).AddRow("ans-existing", created))

	ans, err := s.UpsertAnswer(context.Background(), models.Answer{AssessmentID: "a1", QuestionID: "q1", Value: "4", ScoreImpact: 4})

	require.NoError(t, err)
	assert.Equal(t, "ans-existing", ans.ID)
	assert.Equal(t, created, ans.CreatedAt)
	assert.False(t, ans.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAnswers(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM answers WHERE assessment_id`).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"answer_id", "assessment_id", "question_id", "answer_value", "score_impact", "created_at", "updated_at"}).
			AddRow("x1", "a1", "q1", "4", 4.0, now, now).
			AddRow("x2", "a1", "q2", "", nil, now, now))

	answers, err := s.ListAnswers(context.Background(), "a1")

	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, 4.0, answers[0].ScoreImpact)
	assert.Zero(t, answers[1].ScoreImpact)
}

var investorCols = []string{"investor_id", "name", "type", "focus_areas", "investment_range_min", "investment_range_max",
	"geographic_focus", "criteria_weights", "description", "website", "is_active"}

func TestGetInvestorsByIDs_KeepsRequestOrder(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db)

	mock.ExpectQuery(`SELECT (.+) FROM investors WHERE investor_id = ANY`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(investorCols).
			AddRow("i1", "Alpha", "vc", []byte(`["fintech"]`), 1000000.0, 5000000.0, []byte(`["global"]`),
				[]byte(`{"financial":8,"market":6}`), nil, nil, true).
			AddRow("i2", "Beta", "angel", nil, nil, nil, nil, nil, "Seed checks", "https://beta.vc", true))

	investors, err := s.GetInvestorsByIDs(context.Background(), []string{"i2", "missing", "i1"})

	require.NoError(t, err)
	require.Len(t, investors, 2)
	assert.Equal(t, "i2", investors[0].ID)
	assert.Nil(t, investors[0].CriteriaWeights)
	assert.Nil(t, investors[0].InvestmentRangeMin)
	assert.Equal(t, "https://beta.vc", investors[0].Website)
	assert.Equal(t, "i1", investors[1].ID)
	assert.Equal(t, 8.0, investors[1].CriteriaWeights[models.DimensionFinancial])
	assert.Equal(t, []string{"fintech"}, investors[1].FocusAreas)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetInvestorsByIDs_Empty(t *testing.T) {
	db, _ := setupMockDB(t)
	investors, err := New(db).GetInvestorsByIDs(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, investors)
}

func TestListActiveInvestors_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT (.+) FROM investors WHERE is_active = TRUE`).WillReturnError(sql.ErrConnDone)

	_, err := New(db).ListActiveInvestors(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "store: list active investors")
	assert.False(t, IsNotFound(err))
}

func TestReplaceMatches(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db)

	matches := []models.InvestorMatch{
		{InvestorID: "i1", MatchScore: 82, RankPosition: 1, Reasoning: models.MatchReasoning{Strengths: []string{"s"}}},
		{InvestorID: "i2", MatchScore: 64, RankPosition: 2},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM investor_matches WHERE assessment_id`).WithArgs("a1").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(`INSERT INTO investor_matches`).
		WithArgs(sqlmock.AnyArg(), "a1", "i1", 82, sqlmock.AnyArg(), 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO investor_matches`).
		WithArgs(sqlmock.AnyArg(), "a1", "i2", 64, sqlmock.AnyArg(), 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.ReplaceMatches(context.Background(), "a1", matches))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceMatches_RollsBackOnInsertFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM investor_matches`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO investor_matches`).WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := s.ReplaceMatches(context.Background(), "a1", []models.InvestorMatch{{InvestorID: "ghost", MatchScore: 10, RankPosition: 1}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert match for investor ghost")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListMatches(t *testing.T) {
	db, mock := setupMockDB(t)
	s := New(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM investor_matches m JOIN investors i (.+) ORDER BY m.match_score DESC(.+) LIMIT`).
		WithArgs("a1", 10).
		WillReturnRows(sqlmock.NewRows([]string{"match_id", "assessment_id", "investor_id", "name", "match_score",
			"match_reasoning", "rank_position", "created_at"}).
			AddRow("m1", "a1", "i1", "Alpha", 90, []byte(`{"strengths":["x"],"concerns":[],"opportunities":[],"evaluationBased":true}`), 1, now).
			AddRow("m2", "a1", "i2", "Beta", 70, nil, nil, now))

	matches, err := s.ListMatches(context.Background(), "a1", 10)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Alpha", matches[0].InvestorName)
	assert.True(t, matches[0].Reasoning.EvaluationBased)
	assert.Equal(t, 1, matches[0].RankPosition)
	assert.Zero(t, matches[1].RankPosition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS questions`).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, New(db).Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
