// Package validation wraps go-playground/validator and converts failures into domain errors.
package validation

import (
	"errors"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a *domain.Error with per-field details.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return formatError(domain.ErrValidation, err)
	}
	return nil
}

// ValidateRecord validates one import record; failures are ErrInvalidRecord naming the index.
func (v *Validator) ValidateRecord(index int, rec domain.ImportRecord) error {
	if err := v.v.Struct(rec); err != nil {
		fields := FieldErrors(err)
		names := slices.Sorted(maps.Keys(fields))
		return domain.ErrInvalidRecord.
			Withf("record %d: missing %s", index, strings.Join(names, ", ")).
			WithDetails(map[string]any{"index": index, "fields": fields})
	}
	return nil
}

// FieldErrors flattens validator errors into field -> message.
func FieldErrors(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}
	return fieldErrors
}

func formatError(base *domain.Error, err error) error {
	fields := FieldErrors(err)
	if fields == nil {
		return base.WithCause(err)
	}
	return base.WithDetails(fields)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must not exceed " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
