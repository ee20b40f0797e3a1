// internal/workers/readiness/calculate-readiness-score/models.go
package calculatereadinessscore

import (
	"readiness-workers/internal/models"
	"readiness-workers/internal/scoring"
)

type Input struct {
	AssessmentID string `json:"assessmentId" validate:"required"`
	// Deliverables switch on the transaction-ready certification check.
	Deliverables         []scoring.Deliverable `json:"deliverables,omitempty"`
	IncludeCertification bool                  `json:"includeCertification"`
}

type Output struct {
	AssessmentID     string                   `json:"assessmentId"`
	OverallScore     int                      `json:"overallScore"`
	Points150        int                      `json:"points150"`
	Tier             scoring.Tier             `json:"tier"`
	TierDescription  string                   `json:"tierDescription"`
	DimensionScores  map[models.Dimension]int `json:"dimensionScores"`
	DimensionDetails scoring.DimensionScores  `json:"dimensionDetails"`
	Certification    *scoring.Certification   `json:"certification,omitempty"`
	AnsweredCount    int                      `json:"answeredCount"`
}
