package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"readiness-workers/internal/models"
)

const (
	strongScoreThreshold   = 70
	moderateScoreThreshold = 50
)

// GenerateMatchReasoning classifies each scored company dimension into
// strengths, concerns, and opportunities. A dimension missing from weights
// has weight 0 and is never important. Mid-range scores in dimensions the
// investor does not prioritize produce no entry.
func GenerateMatchReasoning(company map[models.Dimension]int, investor models.Investor, weights Weights) models.MatchReasoning {
	reasoning := models.MatchReasoning{
		Strengths:       []string{},
		Concerns:        []string{},
		Opportunities:   []string{},
		FocusAreas:      investor.FocusAreas,
		InvestmentRange: FormatInvestmentRange(investor.InvestmentRangeMin, investor.InvestmentRangeMax),
	}

	for _, d := range orderedDimensions(company) {
		score := company[d]
		important := weights.Important(d)
		name := strings.ToLower(string(d))
		priority := formatPriority(weights[d])

		switch {
		case score >= strongScoreThreshold && important:
			reasoning.Strengths = append(reasoning.Strengths,
				fmt.Sprintf("Strong %s performance (%d%%) aligns with high investor priority (%s/10)", name, score, priority))
		case score >= strongScoreThreshold:
			reasoning.Strengths = append(reasoning.Strengths,
				fmt.Sprintf("Strong %s performance (%d%%)", name, score))
		case score >= moderateScoreThreshold && important:
			reasoning.Opportunities = append(reasoning.Opportunities,
				fmt.Sprintf("Moderate %s performance (%d%%) could be improved given investor priority (%s/10)", name, score, priority))
		case score >= moderateScoreThreshold:
			// not a priority, nothing to say
		case important:
			reasoning.Concerns = append(reasoning.Concerns,
				fmt.Sprintf("Weak %s performance (%d%%) in high-priority area (%s/10 importance)", name, score, priority))
		default:
			reasoning.Opportunities = append(reasoning.Opportunities,
				fmt.Sprintf("%s improvement opportunity (%d%%)", d.Label(), score))
		}
	}
	return reasoning
}

// formatPriority renders a normalized weight on the 1-10 scale, e.g. 0.8 -> "8".
func formatPriority(w float64) string {
	return strconv.FormatFloat(math.Round(w*100)/10, 'f', -1, 64)
}
