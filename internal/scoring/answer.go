// Package scoring turns questionnaire answers into readiness scores and
// matches a company's readiness profile against investor criteria.
//
// Every function here is pure: inputs are fully materialized, nothing is
// fetched or persisted, and malformed-but-typed data degrades to a documented
// default instead of failing.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"readiness-workers/internal/models"
)

const (
	// BooleanTrueScore is awarded to a "true" answer. It equals DefaultCeiling
	// so a yes reaches 100% of the question's ceiling.
	BooleanTrueScore  = 6.0
	BooleanFalseScore = 1.0
	NeutralScore      = 3.0

	// DefaultCeiling is the max obtainable score for questions without options.
	DefaultCeiling = 6.0

	numberDivisor  = 1_000_000
	minNumberScore = 1.0
	maxNumberScore = 6.0
)

var ErrInvalidAnswer = errors.New("invalid answer")

// ScoreAnswer converts a raw answer into its score_impact. It never fails:
// empty values score 0 and unknown question types score NeutralScore.
func ScoreAnswer(value string, qType models.QuestionType, options []models.QuestionOption) float64 {
	if value == "" {
		return 0
	}

	switch qType {
	case models.QuestionTypeScale, models.QuestionTypeMultipleChoice:
		for _, opt := range options {
			if opt.Value == value {
				return opt.Score
			}
		}
		return 0
	case models.QuestionTypeBoolean:
		if value == "true" {
			return BooleanTrueScore
		}
		return BooleanFalseScore
	case models.QuestionTypeNumber:
		n, err := parseNumber(value)
		if err != nil {
			n = 0
		}
		return clamp(math.Round(n/numberDivisor), minNumberScore, maxNumberScore)
	default:
		return NeutralScore
	}
}

// QuestionCeiling is the denominator used when normalizing a question's score.
func QuestionCeiling(q models.Question) float64 {
	if !q.Type.HasOptions() || len(q.Options) == 0 {
		return DefaultCeiling
	}
	ceiling := q.Options[0].Score
	for _, opt := range q.Options[1:] {
		if opt.Score > ceiling {
			ceiling = opt.Score
		}
	}
	return ceiling
}

// ValidateAnswer enforces the caller-facing type contract that ScoreAnswer
// deliberately does not: number answers must parse, option answers must name
// an option, and boolean answers must be "true" or "false". An empty value is
// accepted unless the question is required.
func ValidateAnswer(value string, q models.Question) error {
	if value == "" {
		if q.Required {
			return fmt.Errorf("%w: question %s requires a value", ErrInvalidAnswer, q.ID)
		}
		return nil
	}

	switch q.Type {
	case models.QuestionTypeNumber:
		if _, err := parseNumber(value); err != nil {
			return fmt.Errorf("%w: %q is not numeric", ErrInvalidAnswer, value)
		}
	case models.QuestionTypeScale, models.QuestionTypeMultipleChoice:
		for _, opt := range q.Options {
			if opt.Value == value {
				return nil
			}
		}
		return fmt.Errorf("%w: %q is not an option of question %s", ErrInvalidAnswer, value, q.ID)
	case models.QuestionTypeBoolean:
		if value != "true" && value != "false" {
			return fmt.Errorf("%w: %q is not a boolean", ErrInvalidAnswer, value)
		}
	}
	return nil
}

func parseNumber(value string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("non-finite number %q", value)
	}
	return n, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundInt rounds half away from zero and guards non-finite input.
func roundInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}
