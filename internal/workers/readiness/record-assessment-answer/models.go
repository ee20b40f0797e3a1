// internal/workers/readiness/record-assessment-answer/models.go
package recordassessmentanswer

import "readiness-workers/internal/models"

type Input struct {
	AssessmentID string `json:"assessmentId" validate:"required"`
	QuestionID   string `json:"questionId" validate:"required"`
	Value        string `json:"value"`
	// Reopen lets an answer edit a completed assessment.
	Reopen bool `json:"reopen"`
}

type Output struct {
	AnswerID              string                   `json:"answerId"`
	ScoreImpact           float64                  `json:"scoreImpact"`
	Status                models.AssessmentStatus  `json:"status"`
	ProgressPercentage    int                      `json:"progressPercentage"`
	NextQuestionID        string                   `json:"nextQuestionId,omitempty"`
	AnsweredCount         int                      `json:"answeredCount"`
	TotalQuestions        int                      `json:"totalQuestions"`
	Completed             bool                     `json:"completed"`
	OverallReadinessScore int                      `json:"overallReadinessScore,omitempty"`
	DimensionScores       map[models.Dimension]int `json:"dimensionScores,omitempty"`
}
