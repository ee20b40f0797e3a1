// internal/workers/readiness/calculate-readiness-score/handler_test.go
package calculatereadinessscore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"readiness-workers/internal/common/errors"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/common/observability"
	"readiness-workers/internal/models"
	"readiness-workers/internal/scoring"
	"readiness-workers/internal/store/storetest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *Config {
	return &Config{
		Timeout:  5 * time.Second,
		CacheTTL: time.Minute,
	}
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *miniredis.Miniredis) {
	db, mock := storetest.MockDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewHandler(createTestConfig(), db, rdb, observability.NewNoop(), logger.NewTestLogger(t)), mock, mr
}

const questionsPerDimension = 5

// maturityQuestions returns five 1-5 maturity questions per dimension, so a
// dimension answered "4" throughout scores 20 of its 25 points.
func maturityQuestions() []models.Question {
	options := make([]models.QuestionOption, 0, 5)
	for score := 1; score <= 5; score++ {
		options = append(options, models.QuestionOption{
			Value: fmt.Sprint(score), Label: fmt.Sprintf("Level %d", score), Score: float64(score),
		})
	}
	questions := make([]models.Question, 0, len(models.Dimensions)*questionsPerDimension)
	for _, d := range models.Dimensions {
		for j := 0; j < questionsPerDimension; j++ {
			n := len(questions) + 1
			questions = append(questions, models.Question{
				ID: fmt.Sprintf("q%d", n), Text: fmt.Sprintf("Rate %s maturity, area %d", d, j+1),
				Type: models.QuestionTypeMultipleChoice, Dimension: d, Options: options,
				Active: true, Core: true, OrderIndex: n,
			})
		}
	}
	return questions
}

func answersFor(questions []models.Question, value string) []models.Answer {
	answers := make([]models.Answer, 0, len(questions))
	for _, q := range questions {
		answers = append(answers, models.Answer{ID: "ans-" + q.ID, AssessmentID: "a1", QuestionID: q.ID, Value: value})
	}
	return answers
}

// answerDimensions overrides every answer in the listed dimensions.
func answerDimensions(questions []models.Question, answers []models.Answer, values map[models.Dimension]string) {
	for i, q := range questions {
		if v, ok := values[q.Dimension]; ok {
			answers[i].Value = v
		}
	}
}

func expectScoringReads(mock sqlmock.Sqlmock, questions []models.Question, answers []models.Answer) {
	expectScoringReadsWithStatus(mock, models.AssessmentStatusCompleted, questions, answers)
}

func expectScoringReadsWithStatus(mock sqlmock.Sqlmock, status models.AssessmentStatus, questions []models.Question, answers []models.Answer) {
	mock.ExpectQuery(`SELECT (.+) FROM assessments WHERE assessment_id`).WithArgs("a1").
		WillReturnRows(storetest.AssessmentRows(models.Assessment{ID: "a1", Title: "Exit prep", CompanyName: "Acme",
			Status: status}))
	mock.ExpectQuery(`SELECT (.+) FROM questions WHERE is_active = TRUE`).
		WillReturnRows(storetest.QuestionRows(questions...))
	mock.ExpectQuery(`SELECT (.+) FROM answers WHERE assessment_id`).WithArgs("a1").
		WillReturnRows(storetest.AnswerRows(answers...))
}

func TestExecute_ReadyCompanyIsCertified(t *testing.T) {
	h, mock, mr := newTestHandler(t)
	questions := maturityQuestions()
	expectScoringReads(mock, questions, answersFor(questions, "4"))

	out, err := h.Execute(context.Background(), &Input{
		AssessmentID: "a1",
		Deliverables: []scoring.Deliverable{{Name: "data room", Complete: true}},
	})

	require.NoError(t, err)
	assert.Equal(t, 120, out.Points150)
	assert.Equal(t, 80, out.OverallScore)
	assert.Equal(t, scoring.TierReady, out.Tier)
	assert.Equal(t, "certified", out.TierDescription)
	assert.Equal(t, 30, out.AnsweredCount)
	assert.Len(t, out.DimensionScores, 6)
	assert.Equal(t, 80, out.DimensionScores[models.DimensionStrategic])
	assert.Equal(t, 20.0, out.DimensionDetails[models.DimensionFinancial].Raw)
	assert.Equal(t, 4.0, out.DimensionDetails[models.DimensionFinancial].Average())

	require.NotNil(t, out.Certification)
	assert.True(t, out.Certification.TransactionReady)
	assert.Empty(t, out.Certification.FailedCriteria)

	cached, err := mr.Get("readiness:assessment:a1:dimensions")
	require.NoError(t, err)
	assert.Contains(t, cached, `"status":"completed"`)
	assert.Contains(t, cached, `"financial":80`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_InProgressScoresAreNotCached(t *testing.T) {
	h, mock, mr := newTestHandler(t)
	questions := maturityQuestions()
	expectScoringReadsWithStatus(mock, models.AssessmentStatusInProgress, questions, answersFor(questions[:10], "4"))

	out, err := h.Execute(context.Background(), &Input{AssessmentID: "a1"})

	require.NoError(t, err)
	assert.Equal(t, 80, out.DimensionScores[models.DimensionFinancial])
	assert.False(t, mr.Exists("readiness:assessment:a1:dimensions"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_TierBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		values map[models.Dimension]string
		points int
		tier   scoring.Tier
	}{
		{
			name:   "all level four",
			points: 120,
			tier:   scoring.TierReady,
		},
		{
			name: "three dimensions at level one",
			values: map[models.Dimension]string{
				models.DimensionMarket:     "1",
				models.DimensionTechnology: "1",
				models.DimensionLegal:      "1",
			},
			points: 75,
			tier:   scoring.TierNearReady,
		},
		{
			name: "four dimensions at level one",
			values: map[models.Dimension]string{
				models.DimensionOperational: "1",
				models.DimensionMarket:      "1",
				models.DimensionTechnology:  "1",
				models.DimensionLegal:       "1",
			},
			points: 60,
			tier:   scoring.TierNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock, _ := newTestHandler(t)
			questions := maturityQuestions()
			answers := answersFor(questions, "4")
			answerDimensions(questions, answers, tt.values)
			expectScoringReads(mock, questions, answers)

			out, err := h.Execute(context.Background(), &Input{AssessmentID: "a1"})

			require.NoError(t, err)
			assert.Equal(t, tt.points, out.Points150)
			assert.Equal(t, tt.tier, out.Tier)
			assert.Nil(t, out.Certification)
		})
	}
}

func TestExecute_CertificationFailures(t *testing.T) {
	h, mock, _ := newTestHandler(t)
	questions := maturityQuestions()[:2*questionsPerDimension]
	answers := answersFor(questions, "5")
	answerDimensions(questions, answers, map[models.Dimension]string{models.DimensionOperational: "1"})
	expectScoringReads(mock, questions, answers)

	out, err := h.Execute(context.Background(), &Input{
		AssessmentID: "a1",
		Deliverables: []scoring.Deliverable{{Name: "quality of earnings report", Complete: false}},
	})

	require.NoError(t, err)
	require.NotNil(t, out.Certification)
	assert.False(t, out.Certification.TransactionReady)
	assert.Contains(t, out.Certification.FailedCriteria, "overall score 30/150 is below 90")
	assert.Contains(t, out.Certification.FailedCriteria, "operational dimension at 20% is below the 40% floor")
	assert.Contains(t, out.Certification.FailedCriteria, "market dimension has no scored answers")
	assert.Contains(t, out.Certification.FailedCriteria, "average dimension score 3.00 is below 4.0")
	assert.Contains(t, out.Certification.FailedCriteria, `deliverable "quality of earnings report" is incomplete`)
}

func TestExecute_ReadyTierStillNeedsAverageOfFour(t *testing.T) {
	h, mock, _ := newTestHandler(t)
	questions := maturityQuestions()
	expectScoringReads(mock, questions, answersFor(questions, "3"))

	out, err := h.Execute(context.Background(), &Input{AssessmentID: "a1", IncludeCertification: true})

	require.NoError(t, err)
	assert.Equal(t, 90, out.Points150)
	assert.Equal(t, scoring.TierReady, out.Tier)
	require.NotNil(t, out.Certification)
	assert.False(t, out.Certification.TransactionReady)
	assert.Equal(t, []string{"average dimension score 3.00 is below 4.0"}, out.Certification.FailedCriteria)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		setup func(mock sqlmock.Sqlmock)
		code  errors.ErrorCode
	}{
		{
			name:  "missing assessment id",
			input: Input{},
			setup: func(sqlmock.Sqlmock) {},
			code:  errors.ErrCodeInvalidInput,
		},
		{
			name:  "unknown assessment",
			input: Input{AssessmentID: "a1"},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM assessments`).WillReturnRows(sqlmock.NewRows(storetest.AssessmentColumns))
			},
			code: errors.ErrCodeAssessmentNotFound,
		},
		{
			name:  "no answers yet",
			input: Input{AssessmentID: "a1"},
			setup: func(mock sqlmock.Sqlmock) {
				expectScoringReads(mock, maturityQuestions(), nil)
			},
			code: errors.ErrCodeAssessmentNotScorable,
		},
		{
			name:  "answers query fails",
			input: Input{AssessmentID: "a1"},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM assessments`).
					WillReturnRows(storetest.AssessmentRows(models.Assessment{ID: "a1", Status: models.AssessmentStatusInProgress}))
				mock.ExpectQuery(`SELECT (.+) FROM questions`).WillReturnRows(storetest.QuestionRows(maturityQuestions()...))
				mock.ExpectQuery(`SELECT (.+) FROM answers`).WillReturnError(fmt.Errorf("relation \"answers\" does not exist"))
			},
			code: errors.ErrCodeQueryExecutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock, _ := newTestHandler(t)
			tt.setup(mock)

			out, err := h.Execute(context.Background(), &tt.input)

			require.Error(t, err)
			assert.Nil(t, out)
			assert.Equal(t, tt.code, errors.Normalize(err).Code)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
