package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/linkshelf/bookmark-service/pkg/util/errorutil"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the struct tags of a request payload. Failures come back as a validation
// DomainError whose details map each offending JSON field to the failed rule.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewInternalError(err)
	}
	fields := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fe.Tag()
	}
	return apperrors.NewValidationError("invalid payload", map[string]any{"reason": "INVALID_DATA", "fields": fields})
}
