// internal/workers/investor/prescreen-investors/models.go
package prescreeninvestors

import "readiness-workers/internal/models"

// Input takes the profile inline or loads it from the assessment when only
// an id is given.
type Input struct {
	AssessmentID   string                 `json:"assessmentId"`
	CompanyProfile *models.CompanyProfile `json:"companyProfile,omitempty"`
}

type Candidate struct {
	InvestorID      string              `json:"investorId"`
	Name            string              `json:"name"`
	Type            models.InvestorType `json:"type"`
	MatchScore      int                 `json:"matchScore"`
	MatchReasons    []string            `json:"matchReasons"`
	FocusAreas      []string            `json:"focusAreas,omitempty"`
	InvestmentRange string              `json:"investmentRange"`
	Website         string              `json:"website,omitempty"`
}

type Output struct {
	AssessmentID    string      `json:"assessmentId,omitempty"`
	Candidates      []Candidate `json:"candidates"`
	TotalScreened   int         `json:"totalScreened"`
	CandidateSource string      `json:"candidateSource"`
}
