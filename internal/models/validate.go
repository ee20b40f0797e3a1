package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json field names so callers can echo them back in BPMN error details.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate reports the fields a profile is missing before prescreening can run.
func (p CompanyProfile) Validate() error {
	if missing := p.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("company profile missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// MissingFields returns the json names of every required profile field that
// is absent or out of range.
func (p CompanyProfile) MissingFields() []string {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

// ValidateStruct runs tag validation on any request DTO.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}
