// internal/models/investor.go
package models

import "time"

type InvestorType string

const (
	InvestorTypeVC           InvestorType = "vc"
	InvestorTypePE           InvestorType = "pe"
	InvestorTypeStrategic    InvestorType = "strategic"
	InvestorTypeAngel        InvestorType = "angel"
	InvestorTypeFamilyOffice InvestorType = "family_office"
)

// Investor is read-only to scoring. A nil CriteriaWeights means the investor
// never stated weights; an empty non-nil map means it stated none.
type Investor struct {
	ID                 string                `json:"id"`
	Name               string                `json:"name"`
	Type               InvestorType          `json:"type"`
	FocusAreas         []string              `json:"focusAreas,omitempty"`
	InvestmentRangeMin *float64              `json:"investmentRangeMin,omitempty"`
	InvestmentRangeMax *float64              `json:"investmentRangeMax,omitempty"`
	GeographicFocus    []string              `json:"geographicFocus,omitempty"`
	CriteriaWeights    map[Dimension]float64 `json:"criteriaWeights"`
	Description        string                `json:"description,omitempty"`
	Website            string                `json:"website,omitempty"`
	Active             bool                  `json:"active"`
}

// MatchReasoning is the structured explanation persisted with a match.
type MatchReasoning struct {
	Strengths       []string `json:"strengths"`
	Concerns        []string `json:"concerns"`
	Opportunities   []string `json:"opportunities"`
	FocusAreas      []string `json:"focusAreas,omitempty"`
	InvestmentRange string   `json:"investmentRange,omitempty"`
	EvaluationBased bool     `json:"evaluationBased,omitempty"`
}

type InvestorMatch struct {
	ID           string         `json:"id"`
	AssessmentID string         `json:"assessmentId"`
	InvestorID   string         `json:"investorId"`
	InvestorName string         `json:"investorName,omitempty"`
	MatchScore   int            `json:"matchScore"`
	Reasoning    MatchReasoning `json:"matchReasoning"`
	RankPosition int            `json:"rankPosition"`
	CreatedAt    time.Time      `json:"createdAt"`
}
