package parsing

import (
	"encoding/json"
	"strings"

	"github.com/jonathan/career-assistant/internal/types"
)

// DecodeAlignments reads the alignments array of an alignment answer. Items
// without a non-empty job_title string or a numeric score are dropped; the
// rest keep model order. A missing or empty reason is allowed.
func DecodeAlignments(doc string) (types.Alignments, error) {
	var resp struct {
		Alignments []json.RawMessage `json:"alignments"`
	}
	if err := json.Unmarshal([]byte(doc), &resp); err != nil {
		return nil, &ParseError{Message: "invalid alignment response", Cause: err}
	}

	out := make(types.Alignments, 0, len(resp.Alignments))
	for _, item := range resp.Alignments {
		var fields map[string]any
		if err := json.Unmarshal(item, &fields); err != nil {
			continue
		}
		title, _ := fields["job_title"].(string)
		score, ok := fields["score"].(float64)
		if strings.TrimSpace(title) == "" || !ok {
			continue
		}
		reason, _ := fields["reason"].(string)
		out = append(out, types.JobAlignment{JobTitle: title, Score: score, Reason: reason})
	}
	return out, nil
}
