package assessment

import (
	"testing"
	"time"

	"readiness-workers/internal/models"
	"readiness-workers/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func init() {
	now = func() time.Time { return fixedNow }
}

func scale() []models.QuestionOption {
	return []models.QuestionOption{
		{Value: "1", Score: 1}, {Value: "2", Score: 2}, {Value: "3", Score: 3},
		{Value: "4", Score: 4}, {Value: "5", Score: 5},
	}
}

func testQuestions() []models.Question {
	return []models.Question{
		{ID: "q3", Type: models.QuestionTypeBoolean, Dimension: models.DimensionLegal, Active: true, Core: true, OrderIndex: 3},
		{ID: "q1", Type: models.QuestionTypeScale, Dimension: models.DimensionFinancial, Options: scale(), Active: true, Core: true, OrderIndex: 1},
		{ID: "q2", Type: models.QuestionTypeText, Dimension: models.DimensionMarket, Active: true, OrderIndex: 2},
		{ID: "q0", Type: models.QuestionTypeScale, Dimension: models.DimensionFinancial, Options: scale(), Active: false, Core: true, OrderIndex: 0},
	}
}

func TestAdvance_DraftWithoutAnswers(t *testing.T) {
	a, cursor := Advance(models.Assessment{ID: "a1"}, testQuestions(), nil)

	assert.Equal(t, models.AssessmentStatusDraft, a.Status)
	assert.Zero(t, a.ProgressPercentage)
	assert.Equal(t, "q1", cursor.QuestionID)
	assert.Equal(t, 1, cursor.Position)
	assert.Equal(t, 3, cursor.Total)
	assert.Equal(t, "q1", a.CurrentQuestionID)
}

func TestAdvance_InProgress(t *testing.T) {
	answers := []models.Answer{{QuestionID: "q1", Value: "4"}}

	a, cursor := Advance(models.Assessment{ID: "a1", Status: models.AssessmentStatusDraft}, testQuestions(), answers)

	assert.Equal(t, models.AssessmentStatusInProgress, a.Status)
	assert.Equal(t, 50, a.ProgressPercentage)
	assert.Equal(t, "q2", cursor.QuestionID)
	assert.Equal(t, 2, cursor.Position)
	assert.Equal(t, 1, cursor.Answered)
	assert.Nil(t, a.CompletedAt)
	assert.Equal(t, fixedNow, a.UpdatedAt)
}

func TestAdvance_CompletesWhenCoreAnswered(t *testing.T) {
	answers := []models.Answer{
		{QuestionID: "q1", Value: "4", ScoreImpact: 1},
		{QuestionID: "q3", Value: "true"},
	}

	a, cursor := Advance(models.Assessment{ID: "a1", Status: models.AssessmentStatusInProgress}, testQuestions(), answers)

	assert.Equal(t, models.AssessmentStatusCompleted, a.Status)
	assert.Equal(t, 100, a.ProgressPercentage)
	require.NotNil(t, a.CompletedAt)
	assert.Equal(t, fixedNow, *a.CompletedAt)
	// Optional q2 is still the next question to offer.
	assert.Equal(t, "q2", cursor.QuestionID)
	assert.Equal(t, map[models.Dimension]int{
		models.DimensionFinancial: 80,
		models.DimensionLegal:     100,
	}, a.DimensionScores)
	// (4 + 6) / (5 + 6)
	assert.Equal(t, 91, a.OverallReadinessScore)
}

func TestAdvance_CompletedIsFrozen(t *testing.T) {
	frozen := models.Assessment{
		ID:                    "a1",
		Status:                models.AssessmentStatusCompleted,
		OverallReadinessScore: 42,
		DimensionScores:       map[models.Dimension]int{models.DimensionFinancial: 42},
	}
	answers := []models.Answer{{QuestionID: "q1", Value: "5"}, {QuestionID: "q3", Value: "true"}}

	a, cursor := Advance(frozen, testQuestions(), answers)

	assert.Equal(t, frozen, a)
	assert.True(t, cursor.Done())
	assert.Equal(t, 2, cursor.Answered)
}

func TestAdvance_NoCoreQuestionsGateOnAllActive(t *testing.T) {
	questions := []models.Question{
		{ID: "a", Type: models.QuestionTypeText, Dimension: models.DimensionMarket, Active: true, OrderIndex: 1},
		{ID: "b", Type: models.QuestionTypeText, Dimension: models.DimensionMarket, Active: true, OrderIndex: 2},
	}

	a, _ := Advance(models.Assessment{}, questions, []models.Answer{{QuestionID: "a", Value: "x"}})
	assert.Equal(t, 50, a.ProgressPercentage)
	assert.Equal(t, models.AssessmentStatusInProgress, a.Status)

	a, cursor := Advance(a, questions, []models.Answer{{QuestionID: "a", Value: "x"}, {QuestionID: "b", Value: "y"}})
	assert.Equal(t, models.AssessmentStatusCompleted, a.Status)
	assert.True(t, cursor.Done())
}

func TestReopen(t *testing.T) {
	completedAt := fixedNow.Add(-time.Hour)
	a := models.Assessment{Status: models.AssessmentStatusCompleted, CompletedAt: &completedAt}

	reopened, err := Reopen(a)
	require.NoError(t, err)
	assert.Equal(t, models.AssessmentStatusInProgress, reopened.Status)
	assert.Nil(t, reopened.CompletedAt)
	assert.NoError(t, CanAnswer(reopened))

	_, err = Reopen(reopened)
	assert.ErrorIs(t, err, ErrNotCompleted)
	assert.ErrorIs(t, CanAnswer(a), ErrCompleted)
}

func TestPair(t *testing.T) {
	answers := []models.Answer{
		{QuestionID: "q1", Value: "2"},
		{QuestionID: "missing", Value: "5"},
		{QuestionID: "q1", Value: "5"},
	}

	pairs := Pair(testQuestions(), answers)

	require.Len(t, pairs, 1)
	assert.Equal(t, "5", pairs[0].Answer.Value)

	scores := Score(testQuestions(), answers)
	assert.Equal(t, scoring.DimensionScore{Raw: 5, Max: 5, Percent: 100, Questions: 1}, scores[models.DimensionFinancial])
}
