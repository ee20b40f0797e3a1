package scoring

import "readiness-workers/internal/models"

// DimensionFit is the per-dimension breakdown stored alongside a match.
type DimensionFit struct {
	CompanyScore   int     `json:"companyScore"`
	InvestorWeight float64 `json:"investorWeight"`
	WeightedScore  float64 `json:"weightedScore"`
	Fit            string  `json:"fit"`
}

// MatchResult is one investor scored against a company.
type MatchResult struct {
	Investor    models.Investor                   `json:"investor"`
	Score       int                               `json:"matchScore"`
	Reasoning   models.MatchReasoning             `json:"matchReasoning"`
	FitAnalysis map[models.Dimension]DimensionFit `json:"fitAnalysis,omitempty"`
	Rank        int                               `json:"rankPosition,omitempty"`

	weights Weights
}

// Weights returns the normalized weights the score was computed with.
func (m MatchResult) Weights() Weights {
	return m.weights
}

// ComputeInvestorMatch scores company dimension percentages against one
// investor. Only dimensions present in both the company scores and the
// investor's weights contribute, to numerator and denominator alike.
func ComputeInvestorMatch(company map[models.Dimension]int, investor models.Investor) MatchResult {
	weights := NormalizeWeights(investor.CriteriaWeights)

	return MatchResult{
		Investor:    investor,
		Score:       WeightedMatchScore(company, weights),
		Reasoning:   GenerateMatchReasoning(company, investor, weights),
		FitAnalysis: fitAnalysis(company, weights),
		weights:     weights,
	}
}

// WeightedMatchScore is the weighted average of company scores. It returns 0
// when no weighted dimension overlaps the company scores.
func WeightedMatchScore(company map[models.Dimension]int, weights Weights) int {
	var total, weightSum float64
	for _, d := range orderedDimensions(weights) {
		score, ok := company[d]
		if !ok {
			continue
		}
		w := weights[d]
		total += float64(score) * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return roundInt(total / weightSum)
}

func fitAnalysis(company map[models.Dimension]int, weights Weights) map[models.Dimension]DimensionFit {
	out := make(map[models.Dimension]DimensionFit, len(weights))
	for d, w := range weights {
		score := company[d]
		fit := "weak"
		switch {
		case score >= 60:
			fit = "strong"
		case score >= 40:
			fit = "moderate"
		}
		out[d] = DimensionFit{
			CompanyScore:   score,
			InvestorWeight: w,
			WeightedScore:  float64(score) * w,
			Fit:            fit,
		}
	}
	return out
}
