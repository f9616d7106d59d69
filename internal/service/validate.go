package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validateStruct wraps validation failures in ErrInvalidInput.
func validateStruct(s any) error {
	if err := getValidator().Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// FormatValidationError turns validator errors into field -> message,
// without leaking struct names.
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"error": "invalid request format"}
	}

	errs := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			errs[field] = "this field is required"
		case "max", "lte":
			errs[field] = "must be at most " + e.Param()
		case "min", "gte":
			errs[field] = "must be at least " + e.Param()
		case "gt":
			errs[field] = "must be greater than " + e.Param()
		case "url":
			errs[field] = "must be a valid url"
		default:
			errs[field] = "invalid value"
		}
	}
	return errs
}
