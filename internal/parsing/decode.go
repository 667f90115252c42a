// Package parsing turns raw model output into structured records: JSON documents
// checked against a minimum shape, and tag-delimited narrative sections.
package parsing

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/career-assistant/internal/llm"
	"github.com/jonathan/career-assistant/internal/schemas"
)

// Outcome records how a decode-with-fallback attempt went.
type Outcome struct {
	FellBack bool
	Reason   error
}

// DecodeObject decodes raw model output into a JSON object.
func DecodeObject(raw string) (map[string]any, error) {
	doc := llm.CleanJSONBlock(raw)
	if doc == "" {
		return nil, &ParseError{Message: "empty response"}
	}
	var v any
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return nil, &ParseError{Message: "invalid JSON", Cause: err}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &ParseError{Message: "response is not a JSON object"}
	}
	return obj, nil
}

// DecodeWithFallback decodes raw into T after checking it against the named
// minimum shape. Any failure yields fallback and an Outcome carrying the reason.
func DecodeWithFallback[T any](raw, shape string, fallback T) (T, Outcome) {
	return DecodeWithFallbackFunc(raw, shape, func(doc string) (T, error) {
		var out T
		err := json.Unmarshal([]byte(doc), &out)
		return out, err
	}, fallback)
}

// DecodeWithFallbackFunc is DecodeWithFallback with a custom decoder for the
// validated document.
func DecodeWithFallbackFunc[T any](raw, shape string, decode func(doc string) (T, error), fallback T) (T, Outcome) {
	doc := llm.CleanJSONBlock(raw)
	if strings.TrimSpace(doc) == "" {
		return fallback, Outcome{FellBack: true, Reason: &ParseError{Message: "empty response"}}
	}
	if !json.Valid([]byte(doc)) {
		return fallback, Outcome{FellBack: true, Reason: &ParseError{Message: "invalid JSON"}}
	}
	if err := schemas.Validate(shape, doc); err != nil {
		return fallback, Outcome{FellBack: true, Reason: &ShapeError{Shape: shape, Cause: err}}
	}
	out, err := decode(doc)
	if err != nil {
		return fallback, Outcome{FellBack: true, Reason: &ParseError{Message: "decode failed", Cause: err}}
	}
	return out, Outcome{}
}
