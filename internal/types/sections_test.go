package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSections_FoundAndMissing(t *testing.T) {
	s := NewSections([]string{"a", "b", "c"})
	s.Blocks["c"] = "Z"
	s.Blocks["a"] = "X"

	assert.Equal(t, []string{"a", "c"}, s.Found())
	assert.Equal(t, []string{"b"}, s.Missing())
	assert.False(t, s.Complete())

	v, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "X", v)

	_, ok = s.Get("b")
	assert.False(t, ok)
}

func TestSections_JSONRoundTripKeepsMissingState(t *testing.T) {
	s := NewSections([]string{"a", "b"})
	s.Blocks["a"] = "X"

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"missing":["b"]`)

	var back Sections
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"b"}, back.Missing())
	assert.False(t, back.Has("b"))
}

func TestSections_MapIsCopy(t *testing.T) {
	s := NewSections([]string{"a"})
	s.Blocks["a"] = "X"
	m := s.Map()
	m["a"] = "changed"
	v, _ := s.Get("a")
	assert.Equal(t, "X", v)
}

func TestSectionTitle(t *testing.T) {
	assert.Equal(t, "Short Term Prospects", SectionTitle("short_term_prospects"))
	assert.Equal(t, "Challenges", SectionTitle("challenges"))
	assert.Equal(t, "", SectionTitle(""))
}
