package scoring

import (
	"fmt"
	"strings"

	"readiness-workers/internal/models"
)

// EvaluationScore is a manual 1-10 rating of one dimension of an investor.
type EvaluationScore struct {
	Dimension string  `json:"dimension" validate:"required"`
	Score     float64 `json:"score" validate:"gte=1,lte=10"`
	Notes     string  `json:"notes,omitempty"`
}

// ScoreInvestorEvaluation converts manual ratings into a 0-100 match score
// (the mean rating as a percentage of 10) with categorized reasoning.
func ScoreInvestorEvaluation(evaluations []EvaluationScore) (int, models.MatchReasoning) {
	reasoning := models.MatchReasoning{
		Strengths:       []string{},
		Concerns:        []string{},
		Opportunities:   []string{},
		EvaluationBased: true,
	}
	if len(evaluations) == 0 {
		return 0, reasoning
	}

	var total float64
	for _, e := range evaluations {
		total += e.Score
		name := strings.ToLower(strings.ReplaceAll(e.Dimension, "_", " "))
		rating := fmt.Sprintf("%s rating (%s/10)", name, formatRating(e.Score))
		suffix := ""
		if e.Notes != "" {
			suffix = ": " + e.Notes
		}

		switch {
		case e.Score >= 8:
			reasoning.Strengths = append(reasoning.Strengths, "Excellent "+rating+suffix)
		case e.Score >= 6 && e.Notes != "":
			reasoning.Opportunities = append(reasoning.Opportunities, "Good "+rating+suffix)
		case e.Score >= 6:
			reasoning.Strengths = append(reasoning.Strengths, "Good "+rating)
		case e.Score >= 4:
			reasoning.Opportunities = append(reasoning.Opportunities, "Moderate "+rating+suffix)
		default:
			reasoning.Concerns = append(reasoning.Concerns, "Low "+rating+suffix)
		}
	}

	mean := total / float64(len(evaluations))
	return roundInt(mean / 10 * 100), reasoning
}

func formatRating(v float64) string {
	if v == float64(int(v)) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%.1f", v)
}
