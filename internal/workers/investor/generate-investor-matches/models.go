// internal/workers/investor/generate-investor-matches/models.go
package generateinvestormatches

import (
	"readiness-workers/internal/models"
	"readiness-workers/internal/scoring"
)

type Input struct {
	AssessmentID string `json:"assessmentId" validate:"required"`
}

type Match struct {
	InvestorID   string                                    `json:"investorId"`
	InvestorName string                                    `json:"investorName"`
	InvestorType models.InvestorType                       `json:"investorType"`
	MatchScore   int                                       `json:"matchScore"`
	RankPosition int                                       `json:"rankPosition"`
	Reasoning    models.MatchReasoning                     `json:"matchReasoning"`
	FitAnalysis  map[models.Dimension]scoring.DimensionFit `json:"fitAnalysis,omitempty"`
}

type Output struct {
	AssessmentID   string  `json:"assessmentId"`
	Matches        []Match `json:"matches"`
	TotalInvestors int     `json:"totalInvestors"`
	StoredMatches  int     `json:"storedMatches"`
	TopMatchScore  int     `json:"topMatchScore"`
	// ScoreSource is "cache" or "assessment".
	ScoreSource string `json:"scoreSource"`
}
