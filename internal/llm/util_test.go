package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_MarkdownCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"json code block", "```json\n{\"sentiment\": \"hopeful\"}\n```", `{"sentiment": "hopeful"}`},
		{"generic code block", "```\n{\"sentiment\": \"hopeful\"}\n```", `{"sentiment": "hopeful"}`},
		{"code block with language", "```javascript\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain JSON", `{"Data Scientist": 0.3}`, `{"Data Scientist": 0.3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestCleanJSONBlock_PreambleText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "preamble before JSON object",
			input:    "Here are the categories:\n{\"Data Engineer\": 0.28}",
			expected: `{"Data Engineer": 0.28}`,
		},
		{
			name:     "preamble with sentences",
			input:    "I read the text. The user sounds excited. Result: {\"alignments\": []}",
			expected: `{"alignments": []}`,
		},
		{
			name:     "preamble before JSON array",
			input:    "Items:\n[\"SQL\", \"Python\"]",
			expected: `["SQL", "Python"]`,
		},
		{
			name:     "JSON with trailing text",
			input:    "{\"score\": 0.4}\n\nLet me know if you need anything else!",
			expected: `{"score": 0.4}`,
		},
		{
			name:     "JSON with escaped quotes",
			input:    "Result: {\"reason\": \"said \\\"data\\\" twice\"}",
			expected: `{"reason": "said \"data\" twice"}`,
		},
		{
			name:     "no JSON at all",
			input:    "I cannot help with that.",
			expected: "I cannot help with that.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple object", `{"key": "value"}`, `{"key": "value"}`},
		{"nested objects", `{"outer": {"inner": "value"}}`, `{"outer": {"inner": "value"}}`},
		{"object with array", `{"items": [1, 2, 3]}`, `{"items": [1, 2, 3]}`},
		{"object with trailing text", `{"key": "value"} and more`, `{"key": "value"}`},
		{"string with braces inside", `{"template": "Hello {name}!"}`, `{"template": "Hello {name}!"}`},
		{"unterminated", `{"key": "value"`, ""},
		{"empty input", "", ""},
		{"not starting with brace", "not json", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSONObject(tt.input))
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple array", `["a", "b", "c"]`, `["a", "b", "c"]`},
		{"nested arrays", `[[1, 2], [3, 4]]`, `[[1, 2], [3, 4]]`},
		{"array of objects", `[{"id": 1}, {"id": 2}]`, `[{"id": 1}, {"id": 2}]`},
		{"array with trailing text", `[1, 2, 3] extra`, `[1, 2, 3]`},
		{"empty input", "", ""},
		{"not starting with bracket", "not array", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSONArray(tt.input))
		})
	}
}
