// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	ErrCodeAssessmentNotFound    ErrorCode = "ASSESSMENT_NOT_FOUND"
	ErrCodeAssessmentCompleted   ErrorCode = "ASSESSMENT_COMPLETED"
	ErrCodeQuestionNotFound      ErrorCode = "QUESTION_NOT_FOUND"
	ErrCodeInvalidAnswer         ErrorCode = "INVALID_ANSWER"
	ErrCodeInvalidQuestion       ErrorCode = "INVALID_QUESTION"
	ErrCodeAssessmentNotScorable ErrorCode = "ASSESSMENT_NOT_SCORABLE"

	ErrCodeIncompleteCompanyProfile ErrorCode = "INCOMPLETE_COMPANY_PROFILE"
	ErrCodeInvalidComparison        ErrorCode = "INVALID_COMPARISON_REQUEST"
	ErrCodeNoInvestorMatches        ErrorCode = "NO_INVESTOR_MATCHES"
	ErrCodeInvalidEvaluation        ErrorCode = "INVALID_EVALUATION"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeWorkflowEngineUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"
	ErrCodeWorkflowEngineRejected    ErrorCode = "WORKFLOW_ENGINE_REJECTED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair that is forwarded as a BPMN error variable.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError creates a non-retryable error for malformed job variables.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false)
}

// NewAssessmentNotFoundError creates a non-retryable lookup error.
func NewAssessmentNotFoundError(assessmentID string) *StandardError {
	return newError(ErrCodeAssessmentNotFound, "Assessment not found",
		fmt.Sprintf("assessmentId: %s", assessmentID), false)
}

// NewAssessmentCompletedError is returned when an answer targets a frozen assessment.
func NewAssessmentCompletedError(assessmentID string) *StandardError {
	return newError(ErrCodeAssessmentCompleted, "Assessment is completed and must be reopened before editing",
		fmt.Sprintf("assessmentId: %s", assessmentID), false)
}

// NewQuestionNotFoundError creates a non-retryable lookup error.
func NewQuestionNotFoundError(questionID string) *StandardError {
	return newError(ErrCodeQuestionNotFound, "Question not found or inactive",
		fmt.Sprintf("questionId: %s", questionID), false)
}

// NewInvalidAnswerError wraps an answer type contract violation.
func NewInvalidAnswerError(questionID string, err error) *StandardError {
	return newError(ErrCodeInvalidAnswer, "Answer value does not satisfy question type",
		fmt.Sprintf("questionId: %s, error: %s", questionID, err.Error()), false)
}

// NewInvalidQuestionError wraps a question definition violation.
func NewInvalidQuestionError(questionID string, err error) *StandardError {
	return newError(ErrCodeInvalidQuestion, "Question definition is invalid",
		fmt.Sprintf("questionId: %s, error: %s", questionID, err.Error()), false)
}

// NewAssessmentNotScorableError is returned when an assessment has no scored answers.
func NewAssessmentNotScorableError(assessmentID string) *StandardError {
	return newError(ErrCodeAssessmentNotScorable, "Assessment has no dimension scores",
		fmt.Sprintf("assessmentId: %s", assessmentID), false)
}

// NewIncompleteCompanyProfileError lists the profile fields prescreening needs.
func NewIncompleteCompanyProfileError(details string) *StandardError {
	return newError(ErrCodeIncompleteCompanyProfile, "Company profile is incomplete", details, false)
}

// NewInvalidComparisonError creates a non-retryable comparison request error.
func NewInvalidComparisonError(details string) *StandardError {
	return newError(ErrCodeInvalidComparison, "Invalid investor comparison request", details, false)
}

// NewNoInvestorMatchesError is returned when no active investors could be scored.
func NewNoInvestorMatchesError(assessmentID string) *StandardError {
	return newError(ErrCodeNoInvestorMatches, "No investors available for matching",
		fmt.Sprintf("assessmentId: %s", assessmentID), false)
}

// NewInvalidEvaluationError creates a non-retryable evaluation payload error.
func NewInvalidEvaluationError(details string) *StandardError {
	return newError(ErrCodeInvalidEvaluation, "Invalid investor evaluation", details, false)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout",
		fmt.Sprintf("queryType: %s", queryType), true)
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err.Error(), true)
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err.Error(), true)
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

// NewWorkflowEngineUnavailableError covers broker connection loss and timeouts.
func NewWorkflowEngineUnavailableError(operation string, err error) *StandardError {
	return newError(ErrCodeWorkflowEngineUnavailable, "Zeebe broker unavailable",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
}

// NewWorkflowEngineRejectedError covers commands the broker refused.
func NewWorkflowEngineRejectedError(operation string, err error) *StandardError {
	return newError(ErrCodeWorkflowEngineRejected, "Zeebe broker rejected command",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeWorkflowEngineUnavailable:
		return 3

	case ErrCodeQueryTimeout:
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// BPMN error codes are identical to the internal codes.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ASSESSMENT") || strings.Contains(codeStr, "QUESTION") || strings.Contains(codeStr, "ANSWER"):
		return "ASSESSMENT"
	case strings.Contains(codeStr, "INVESTOR") || strings.Contains(codeStr, "COMPARISON") ||
		strings.Contains(codeStr, "EVALUATION") || strings.Contains(codeStr, "PROFILE"):
		return "MATCHING"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
