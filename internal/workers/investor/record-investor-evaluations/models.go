// internal/workers/investor/record-investor-evaluations/models.go
package recordinvestorevaluations

import (
	"readiness-workers/internal/models"
	"readiness-workers/internal/scoring"
)

// InvestorEvaluation is an analyst's manual rating of one investor.
type InvestorEvaluation struct {
	InvestorID string                    `json:"investorId" validate:"required"`
	Scores     []scoring.EvaluationScore `json:"scores" validate:"required,min=1,dive"`
}

type Input struct {
	AssessmentID string               `json:"assessmentId" validate:"required"`
	Evaluations  []InvestorEvaluation `json:"evaluations" validate:"required,min=1,dive"`
}

type Match struct {
	InvestorID   string                `json:"investorId"`
	InvestorName string                `json:"investorName"`
	MatchScore   int                   `json:"matchScore"`
	RankPosition int                   `json:"rankPosition"`
	Reasoning    models.MatchReasoning `json:"matchReasoning"`
}

type Output struct {
	AssessmentID  string  `json:"assessmentId"`
	Matches       []Match `json:"matches"`
	StoredMatches int     `json:"storedMatches"`
}
