// internal/workers/investor/list-investor-matches/models.go
package listinvestormatches

import "readiness-workers/internal/models"

type Input struct {
	AssessmentID string `json:"assessmentId" validate:"required"`
	// Limit of 0 returns every stored match.
	Limit int `json:"limit" validate:"gte=0"`
}

type Output struct {
	AssessmentID string                 `json:"assessmentId"`
	Matches      []models.InvestorMatch `json:"matches"`
	Count        int                    `json:"count"`
}
