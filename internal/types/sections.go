package types

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Sections is the result of tag extraction over a narrative response: the fixed,
// ordered vocabulary the task asked for and the blocks that were actually found.
// A tag missing from the response is absent from Blocks and reported by Missing.
type Sections struct {
	Vocabulary []string
	Blocks     map[string]string
}

// NewSections creates an empty result for the given vocabulary.
func NewSections(vocabulary []string) Sections {
	vocab := make([]string, len(vocabulary))
	copy(vocab, vocabulary)
	return Sections{Vocabulary: vocab, Blocks: make(map[string]string)}
}

// Get returns the block for tag and whether it was found.
func (s Sections) Get(tag string) (string, bool) {
	v, ok := s.Blocks[tag]
	return v, ok
}

// Has reports whether tag was found.
func (s Sections) Has(tag string) bool {
	_, ok := s.Blocks[tag]
	return ok
}

// Found returns the found tags in vocabulary order.
func (s Sections) Found() []string {
	var found []string
	for _, tag := range s.Vocabulary {
		if s.Has(tag) {
			found = append(found, tag)
		}
	}
	return found
}

// Missing returns the vocabulary tags that were not found, in vocabulary order.
func (s Sections) Missing() []string {
	var missing []string
	for _, tag := range s.Vocabulary {
		if !s.Has(tag) {
			missing = append(missing, tag)
		}
	}
	return missing
}

// Complete reports whether every vocabulary tag was found.
func (s Sections) Complete() bool {
	return len(s.Missing()) == 0
}

// Map returns a copy of the found blocks.
func (s Sections) Map() map[string]string {
	out := make(map[string]string, len(s.Blocks))
	for k, v := range s.Blocks {
		out[k] = v
	}
	return out
}

type sectionsJSON struct {
	Sections map[string]string `json:"sections"`
	Missing  []string          `json:"missing,omitempty"`
	Expected []string          `json:"expected"`
}

func (s Sections) MarshalJSON() ([]byte, error) {
	blocks := s.Blocks
	if blocks == nil {
		blocks = map[string]string{}
	}
	return json.Marshal(sectionsJSON{Sections: blocks, Missing: s.Missing(), Expected: s.Vocabulary})
}

func (s *Sections) UnmarshalJSON(data []byte) error {
	var raw sectionsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Vocabulary = raw.Expected
	s.Blocks = raw.Sections
	if s.Blocks == nil {
		s.Blocks = make(map[string]string)
	}
	return nil
}

// SectionTitle turns a tag name into a heading: "short_term_prospects" becomes
// "Short Term Prospects".
func SectionTitle(tag string) string {
	words := strings.Fields(strings.ReplaceAll(tag, "_", " "))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
