// internal/workers/investor/compare-investors/handler_test.go
package compareinvestors

import (
	"context"
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

const companyJSON = `{"status":"completed","scores":{"financial":80,"operational":40,"market":90,"technology":60,"legal":30,"strategic":70}}`

func createTestConfig() *Config {
	return &Config{
		Timeout:      5 * time.Second,
		CacheTTL:     time.Minute,
		MaxInvestors: 5,
	}
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *miniredis.Miniredis) {
	db, mock := storetest.MockDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewHandler(createTestConfig(), db, rdb, observability.NewNoop(), logger.NewTestLogger(t)), mock, mr
}

func northwind() models.Investor {
	return models.Investor{ID: "inv-1", Name: "Northwind Capital", Type: models.InvestorTypeVC,
		CriteriaWeights: map[models.Dimension]float64{
			models.DimensionFinancial:   8,
			models.DimensionOperational: 3,
			models.DimensionMarket:      9,
			models.DimensionTechnology:  5,
			models.DimensionLegal:       2,
			models.DimensionStrategic:   6,
		}}
}

func harbor() models.Investor {
	return models.Investor{ID: "inv-2", Name: "Harbor Growth", Type: models.InvestorTypePE,
		CriteriaWeights: map[models.Dimension]float64{models.DimensionFinancial: 8}}
}

func TestExecute_BuildsMatrixInRequestOrder(t *testing.T) {
	h, mock, mr := newTestHandler(t)
	require.NoError(t, mr.Set("readiness:assessment:a1:dimensions", companyJSON))

	mock.ExpectQuery(`SELECT (.+) FROM investors WHERE investor_id = ANY`).
		WillReturnRows(storetest.InvestorRows(northwind(), harbor()))

	out, err := h.Execute(context.Background(), &Input{AssessmentID: "a1", InvestorIDs: []string{"inv-2", "inv-1", "inv-2"}})

	require.NoError(t, err)
	m := out.Comparison
	require.Len(t, m.Investors, 2)
	assert.Equal(t, "inv-2", m.Investors[0].InvestorID)
	assert.Equal(t, 80, m.Investors[0].MatchScore)
	assert.Equal(t, "inv-1", m.Investors[1].InvestorID)
	assert.Equal(t, 71, m.Investors[1].MatchScore)

	require.Len(t, m.Rows, 6)
	assert.Equal(t, scoring.AlignmentStrong, m.Rows[0].Cells[1].Alignment)
	require.Len(t, m.Chart.Datasets, 3)
	assert.Equal(t, "Company Performance", m.Chart.Datasets[0].Label)

	assert.Equal(t, BestMatch{InvestorID: "inv-2", Name: "Harbor Growth", MatchScore: 80}, out.BestMatch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_Errors(t *testing.T) {
	six := []string{"i1", "i2", "i3", "i4", "i5", "i6"}

	tests := []struct {
		name  string
		input Input
		setup func(mock sqlmock.Sqlmock, mr *miniredis.Miniredis)
		code  errors.ErrorCode
	}{
		{
			name:  "missing assessment id",
			input: Input{InvestorIDs: []string{"inv-1"}},
			setup: func(sqlmock.Sqlmock, *miniredis.Miniredis) {},
			code:  errors.ErrCodeInvalidInput,
		},
		{
			name:  "no investors",
			input: Input{AssessmentID: "a1", InvestorIDs: []string{" "}},
			setup: func(sqlmock.Sqlmock, *miniredis.Miniredis) {},
			code:  errors.ErrCodeInvalidComparison,
		},
		{
			name:  "too many investors",
			input: Input{AssessmentID: "a1", InvestorIDs: six},
			setup: func(sqlmock.Sqlmock, *miniredis.Miniredis) {},
			code:  errors.ErrCodeInvalidComparison,
		},
		{
			name:  "assessment not scored",
			input: Input{AssessmentID: "a1", InvestorIDs: []string{"inv-1"}},
			setup: func(mock sqlmock.Sqlmock, _ *miniredis.Miniredis) {
				mock.ExpectQuery(`SELECT (.+) FROM assessments`).
					WillReturnRows(storetest.AssessmentRows(models.Assessment{ID: "a1", Status: models.AssessmentStatusDraft}))
			},
			code: errors.ErrCodeAssessmentNotScorable,
		},
		{
			name:  "partial scores cached for open assessment",
			input: Input{AssessmentID: "a1", InvestorIDs: []string{"inv-1"}},
			setup: func(mock sqlmock.Sqlmock, mr *miniredis.Miniredis) {
				mr.Set("readiness:assessment:a1:dimensions", `{"status":"in_progress","scores":{"financial":80}}`)
				mock.ExpectQuery(`SELECT (.+) FROM assessments`).
					WillReturnRows(storetest.AssessmentRows(models.Assessment{ID: "a1", Status: models.AssessmentStatusInProgress,
						DimensionScores: map[models.Dimension]int{models.DimensionFinancial: 80}}))
			},
			code: errors.ErrCodeAssessmentNotScorable,
		},
		{
			name:  "unknown investor",
			input: Input{AssessmentID: "a1", InvestorIDs: []string{"inv-1", "inv-9"}},
			setup: func(mock sqlmock.Sqlmock, mr *miniredis.Miniredis) {
				mr.Set("readiness:assessment:a1:dimensions", companyJSON)
				mock.ExpectQuery(`SELECT (.+) FROM investors`).WillReturnRows(storetest.InvestorRows(northwind()))
			},
			code: errors.ErrCodeInvalidComparison,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock, mr := newTestHandler(t)
			tt.setup(mock, mr)

			out, err := h.Execute(context.Background(), &tt.input)

			require.Error(t, err)
			assert.Nil(t, out)
			assert.Equal(t, tt.code, errors.Normalize(err).Code)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestExecute_MissingInvestorMetadata(t *testing.T) {
	h, mock, mr := newTestHandler(t)
	require.NoError(t, mr.Set("readiness:assessment:a1:dimensions", companyJSON))
	mock.ExpectQuery(`SELECT (.+) FROM investors`).WillReturnRows(storetest.InvestorRows(northwind()))

	_, err := h.Execute(context.Background(), &Input{AssessmentID: "a1", InvestorIDs: []string{"inv-1", "inv-9"}})

	require.Error(t, err)
	assert.Equal(t, []string{"inv-9"}, errors.Normalize(err).Metadata["missingInvestorIds"])
}
