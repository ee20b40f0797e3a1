package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestDimension(t *testing.T) {
	assert.True(t, DimensionLegal.Valid())
	assert.False(t, Dimension("esg").Valid())
	assert.Equal(t, "Technology", DimensionTechnology.Label())
	assert.Equal(t, "", Dimension("").Label())
	assert.Len(t, Dimensions, 6)
}

func TestQuestion_Validate(t *testing.T) {
	options := []QuestionOption{{Value: "1", Score: 1}, {Value: "2", Score: 2}, {Value: "3", Score: 2}}

	tests := []struct {
		name    string
		q       Question
		wantErr string
	}{
		{
			name: "valid scale",
			q:    Question{Text: "Audited financials?", Type: QuestionTypeScale, Dimension: DimensionFinancial, Options: options},
		},
		{
			name: "valid text without options",
			q:    Question{Text: "Describe the market", Type: QuestionTypeText, Dimension: DimensionMarket},
		},
		{
			name:    "scale without options",
			q:       Question{Text: "Rate it", Type: QuestionTypeScale, Dimension: DimensionLegal},
			wantErr: "requires at least one option",
		},
		{
			name: "decreasing option scores",
			q: Question{Text: "Rate it", Type: QuestionTypeMultipleChoice, Dimension: DimensionLegal,
				Options: []QuestionOption{{Value: "a", Score: 4}, {Value: "b", Score: 2}}},
			wantErr: `option "b" scores 2.00`,
		},
		{
			name:    "unknown dimension",
			q:       Question{Text: "ESG?", Type: QuestionTypeBoolean, Dimension: "esg"},
			wantErr: "dimension",
		},
		{
			name:    "unknown type",
			q:       Question{Text: "Slide", Type: "slider", Dimension: DimensionMarket},
			wantErr: "type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCompanyProfile_MissingFields(t *testing.T) {
	complete := CompanyProfile{
		Industry:            "fintech",
		AnnualRevenue:       floatPtr(0),
		FundingAmountSought: floatPtr(5_000_000),
		InvestmentType:      "equity",
		CompanyStage:        "seed",
		GeographicLocation:  "Berlin",
		BusinessModel:       "b2b_saas",
	}
	assert.Empty(t, complete.MissingFields())
	assert.NoError(t, complete.Validate())

	partial := complete
	partial.AnnualRevenue = nil
	partial.Industry = ""

	missing := partial.MissingFields()
	assert.ElementsMatch(t, []string{"industry", "annualRevenue"}, missing)

	err := partial.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "company profile missing required fields")
	assert.Contains(t, err.Error(), "annualRevenue")
}

func TestCompanyProfile_NegativeFunding(t *testing.T) {
	p := CompanyProfile{
		Industry:            "fintech",
		AnnualRevenue:       floatPtr(100),
		FundingAmountSought: floatPtr(-1),
		InvestmentType:      "debt",
		CompanyStage:        "growth",
		GeographicLocation:  "Lagos",
		BusinessModel:       "marketplace",
	}
	assert.Equal(t, []string{"fundingAmountSought"}, p.MissingFields())
}
