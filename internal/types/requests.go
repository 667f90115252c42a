package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError reports the first request field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// validateStruct runs the struct tags and converts the first failure.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: field, Message: "is required"}
	case "max":
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be at most %s characters", fe.Param())}
	default:
		return &ValidationError{Field: field, Message: fmt.Sprintf("failed %s check", fe.Tag())}
	}
}

// AnalysisRequest starts an analysis run. Empty text is allowed by the prompts,
// but the API requires the user to say something.
type AnalysisRequest struct {
	Input  string `json:"input" validate:"required,max=20000"`
	Skills string `json:"skills" validate:"max=5000"`
}

// ChatRequest asks a follow-up question about the latest analysis.
type ChatRequest struct {
	Question string `json:"question" validate:"required,max=4000"`
}

// BatchItem is one line of a batch input file.
type BatchItem struct {
	ID     string `json:"id"`
	Input  string `json:"input" validate:"required"`
	Skills string `json:"skills"`
}

// Validate validates the AnalysisRequest using the validator.
func (r *AnalysisRequest) Validate() error {
	return validateStruct(r)
}

// Validate validates the ChatRequest using the validator.
func (r *ChatRequest) Validate() error {
	return validateStruct(r)
}

// Validate validates the BatchItem using the validator.
func (r *BatchItem) Validate() error {
	return validateStruct(r)
}
