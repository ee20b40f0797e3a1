// internal/models/assessment.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// Dimension is one of the six fixed evaluation categories.
type Dimension string

const (
	DimensionFinancial   Dimension = "financial"
	DimensionOperational Dimension = "operational"
	DimensionMarket      Dimension = "market"
	DimensionTechnology  Dimension = "technology"
	DimensionLegal       Dimension = "legal"
	DimensionStrategic   Dimension = "strategic"
)

// Dimensions lists every dimension in canonical report order.
var Dimensions = []Dimension{
	DimensionFinancial,
	DimensionOperational,
	DimensionMarket,
	DimensionTechnology,
	DimensionLegal,
	DimensionStrategic,
}

// Valid reports whether d is one of the six known dimensions.
func (d Dimension) Valid() bool {
	for _, known := range Dimensions {
		if d == known {
			return true
		}
	}
	return false
}

// Label is the capitalized display form, e.g. "Financial".
func (d Dimension) Label() string {
	if d == "" {
		return ""
	}
	s := string(d)
	return strings.ToUpper(s[:1]) + s[1:]
}

type QuestionType string

const (
	QuestionTypeScale          QuestionType = "scale"
	QuestionTypeBoolean        QuestionType = "boolean"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeText           QuestionType = "text"
	QuestionTypeNumber         QuestionType = "number"
)

// HasOptions reports whether answers for this type are looked up in an option list.
func (t QuestionType) HasOptions() bool {
	return t == QuestionTypeScale || t == QuestionTypeMultipleChoice
}

type QuestionOption struct {
	Value string  `json:"value" yaml:"value"`
	Label string  `json:"label" yaml:"label"`
	Score float64 `json:"score" yaml:"score"`
}

type Question struct {
	ID         string           `json:"id" yaml:"id"`
	Text       string           `json:"text" yaml:"text" validate:"required"`
	Type       QuestionType     `json:"type" yaml:"type" validate:"required,oneof=scale boolean multiple_choice text number"`
	Dimension  Dimension        `json:"dimension" yaml:"dimension" validate:"required,oneof=financial operational market technology legal strategic"`
	Options    []QuestionOption `json:"options,omitempty" yaml:"options"`
	Required   bool             `json:"required" yaml:"required"`
	Active     bool             `json:"active" yaml:"active"`
	Core       bool             `json:"core" yaml:"core"`
	OrderIndex int              `json:"orderIndex" yaml:"order_index"`
	HelpText   string           `json:"helpText,omitempty" yaml:"help_text"`
}

// Validate checks the option invariant: scale and multiple_choice questions
// need a non-empty option list whose scores never decrease.
func (q Question) Validate() error {
	if err := validate.Struct(q); err != nil {
		return err
	}
	if !q.Type.HasOptions() {
		return nil
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("%s question requires at least one option", q.Type)
	}
	for i := 1; i < len(q.Options); i++ {
		if q.Options[i].Score < q.Options[i-1].Score {
			return fmt.Errorf("option %q scores %.2f, below preceding option %q (%.2f)",
				q.Options[i].Value, q.Options[i].Score, q.Options[i-1].Value, q.Options[i-1].Score)
		}
	}
	return nil
}

type Answer struct {
	ID           string    `json:"id"`
	AssessmentID string    `json:"assessmentId"`
	QuestionID   string    `json:"questionId"`
	Value        string    `json:"value"`
	ScoreImpact  float64   `json:"scoreImpact"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type AssessmentStatus string

const (
	AssessmentStatusDraft      AssessmentStatus = "draft"
	AssessmentStatusInProgress AssessmentStatus = "in_progress"
	AssessmentStatusCompleted  AssessmentStatus = "completed"
)

// CompanyProfile carries the attributes used by prescreening. The required
// tags mark the fields a profile must have before prescreening runs; revenue
// and funding are pointers so a stated zero differs from a missing value.
type CompanyProfile struct {
	Industry            string   `json:"industry" validate:"required"`
	AnnualRevenue       *float64 `json:"annualRevenue" validate:"required,gte=0"`
	FundingAmountSought *float64 `json:"fundingAmountSought" validate:"required,gte=0"`
	InvestmentType      string   `json:"investmentType" validate:"required"`
	CompanyStage        string   `json:"companyStage" validate:"required"`
	GeographicLocation  string   `json:"geographicLocation" validate:"required"`
	GrowthRate          float64  `json:"growthRate"`
	BusinessModel       string   `json:"businessModel" validate:"required"`
	EBITDA              float64  `json:"ebitda"`
}

type Assessment struct {
	ID                    string            `json:"id"`
	Title                 string            `json:"title"`
	CompanyName           string            `json:"companyName"`
	Profile               CompanyProfile    `json:"companyProfile"`
	Status                AssessmentStatus  `json:"status"`
	ProgressPercentage    int               `json:"progressPercentage"`
	OverallReadinessScore int               `json:"overallReadinessScore"`
	DimensionScores       map[Dimension]int `json:"dimensionScores,omitempty"`
	CurrentQuestionID     string            `json:"currentQuestionId,omitempty"`
	CreatedAt             time.Time         `json:"createdAt"`
	UpdatedAt             time.Time         `json:"updatedAt"`
	CompletedAt           *time.Time        `json:"completedAt,omitempty"`
}
