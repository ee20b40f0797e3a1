// Package validation checks job variables against the input schemas declared
// in the activity registry.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"readiness-workers/pkg/registry"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// InputValidator holds one compiled schema per task type.
type InputValidator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewInputValidator compiles every non-empty input schema in reg. Activities
// without a schema accept any variables.
func NewInputValidator(reg *registry.ActivityRegistry) (*InputValidator, error) {
	v := &InputValidator{schemas: make(map[string]*gojsonschema.Schema)}
	if reg == nil {
		return v, nil
	}
	for _, a := range reg.Activities {
		if len(a.InputSchema) == 0 {
			continue
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema))
		if err != nil {
			return nil, eris.Wrapf(err, "validation: compile input schema for %s", a.TaskType)
		}
		v.schemas[a.TaskType] = schema
	}
	return v, nil
}

// Has reports whether taskType has a compiled schema.
func (v *InputValidator) Has(taskType string) bool {
	_, ok := v.schemas[taskType]
	return ok
}

// Validate checks raw job variables for taskType.
func (v *InputValidator) Validate(taskType, variables string) *ValidationResult {
	schema, ok := v.schemas[taskType]
	if !ok {
		return &ValidationResult{Valid: true}
	}
	if strings.TrimSpace(variables) == "" {
		variables = "{}"
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(variables))
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "(root)",
			Message: err.Error(),
			Code:    "MALFORMED_JSON",
		}}}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, re := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   errorField(re),
			Message: re.Description(),
			Code:    strings.ToUpper(re.Type()),
		})
	}
	sort.SliceStable(out.Errors, func(i, j int) bool {
		return out.Errors[i].Field < out.Errors[j].Field
	})
	return out
}

// errorField names the missing property for required errors, which
// gojsonschema reports against the parent object.
func errorField(re gojsonschema.ResultError) string {
	field := re.Field()
	if re.Type() != "required" {
		return field
	}
	prop, ok := re.Details()["property"].(string)
	if !ok {
		return field
	}
	if field == "(root)" || field == "" {
		return prop
	}
	return field + "." + prop
}

// GetErrorMessages returns "field: message" strings.
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

func (vr *ValidationResult) HasErrors(field string) bool {
	return len(vr.GetErrorsForField(field)) > 0
}

// GetErrorsForField returns errors on field or anything nested below it.
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
