package handler

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// formatValidationErrors turns validator failures into a field->message
// map suitable for the error response's details.
func formatValidationErrors(err error) map[string]string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}

	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			details[fe.Field()] = fmt.Sprintf("%s is required", fe.Field())
		case "max":
			details[fe.Field()] = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		default:
			details[fe.Field()] = fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	return details
}
