package parsing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/career-assistant/internal/types"
)

// DecodeCategories reads a JSON object of title -> growth rate, keeping the
// titles in document order. Entries whose rate is not a JSON number are
// skipped. A repeated title keeps its first position and its last rate.
func DecodeCategories(doc string) (types.JobCategorySet, error) {
	dec := json.NewDecoder(strings.NewReader(doc))

	tok, err := dec.Token()
	if err != nil {
		return nil, &ParseError{Message: "failed to read categories", Cause: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &ParseError{Message: "categories response is not a JSON object"}
	}

	var set types.JobCategorySet
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &ParseError{Message: "failed to read category title", Cause: err}
		}
		title, ok := keyTok.(string)
		if !ok {
			return nil, &ParseError{Message: fmt.Sprintf("unexpected token %v", keyTok)}
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, &ParseError{Message: fmt.Sprintf("invalid growth rate for %q", title), Cause: err}
		}
		rate, ok := value.(float64)
		if !ok {
			continue
		}
		if i, seen := index[title]; seen {
			set[i].GrowthRate = rate
			continue
		}
		index[title] = len(set)
		set = append(set, types.JobCategory{Title: title, GrowthRate: rate})
	}
	return set, nil
}

// DecodeCategoryResponse decodes a categories answer and rejects it when fewer
// than types.CategoryCount titles carry a numeric rate.
func DecodeCategoryResponse(doc string) (types.JobCategorySet, error) {
	set, err := DecodeCategories(doc)
	if err != nil {
		return nil, err
	}
	if len(set) < types.CategoryCount {
		return nil, &ShapeError{
			Shape: "categories",
			Cause: fmt.Errorf("%d numeric entries, need at least %d", len(set), types.CategoryCount),
		}
	}
	return set, nil
}
