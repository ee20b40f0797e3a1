package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreInvestorEvaluation(t *testing.T) {
	score, reasoning := ScoreInvestorEvaluation([]EvaluationScore{
		{Dimension: "financial", Score: 9},
		{Dimension: "market", Score: 6, Notes: "needs work"},
		{Dimension: "team_quality", Score: 6},
		{Dimension: "legal", Score: 4.5},
		{Dimension: "technology", Score: 2, Notes: "legacy stack"},
	})

	// mean 5.5
	assert.Equal(t, 55, score)
	assert.True(t, reasoning.EvaluationBased)
	assert.Equal(t, []string{
		"Excellent financial rating (9/10)",
		"Good team quality rating (6/10)",
	}, reasoning.Strengths)
	assert.Equal(t, []string{
		"Good market rating (6/10): needs work",
		"Moderate legal rating (4.5/10)",
	}, reasoning.Opportunities)
	assert.Equal(t, []string{"Low technology rating (2/10): legacy stack"}, reasoning.Concerns)
}

func TestScoreInvestorEvaluation_Empty(t *testing.T) {
	score, reasoning := ScoreInvestorEvaluation(nil)

	assert.Zero(t, score)
	assert.True(t, reasoning.EvaluationBased)
	assert.Empty(t, reasoning.Strengths)
}
