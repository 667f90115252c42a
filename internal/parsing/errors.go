package parsing

import "fmt"

// APICallError represents a failed call to a model backend
type APICallError struct {
	Backend string
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	prefix := "API call failed"
	if e.Backend != "" {
		prefix = fmt.Sprintf("API call to %s failed", e.Backend)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError represents an error parsing the API response
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ShapeError reports a decoded response that lacks the minimum shape a stage needs.
type ShapeError struct {
	Shape string
	Cause error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("response does not match %s shape: %v", e.Shape, e.Cause)
}

func (e *ShapeError) Unwrap() error {
	return e.Cause
}
