// internal/workers/investor/compare-investors/models.go
package compareinvestors

import "readiness-workers/internal/scoring"

type Input struct {
	AssessmentID string   `json:"assessmentId" validate:"required"`
	InvestorIDs  []string `json:"investorIds"`
}

type BestMatch struct {
	InvestorID string `json:"investorId"`
	Name       string `json:"name"`
	MatchScore int    `json:"matchScore"`
}

type Output struct {
	AssessmentID string                   `json:"assessmentId"`
	Comparison   scoring.ComparisonMatrix `json:"comparison"`
	BestMatch    BestMatch                `json:"bestMatch"`
}
