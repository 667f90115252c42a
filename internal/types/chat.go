package types

import (
	"encoding/json"
	"time"
)

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one message of the follow-up conversation.
type ChatTurn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Transcript is the append-only follow-up conversation of a session.
type Transcript struct {
	turns []ChatTurn
}

// NewTranscript builds a transcript from previously stored turns.
func NewTranscript(turns []ChatTurn) Transcript {
	t := Transcript{}
	t.turns = append(t.turns, turns...)
	return t
}

// Append returns a transcript with the given turns added at the end.
// The receiver is left untouched.
func (t Transcript) Append(turns ...ChatTurn) Transcript {
	next := make([]ChatTurn, 0, len(t.turns)+len(turns))
	next = append(next, t.turns...)
	next = append(next, turns...)
	return Transcript{turns: next}
}

// Turns returns a copy of the turns in order.
func (t Transcript) Turns() []ChatTurn {
	out := make([]ChatTurn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Last returns up to n of the most recent turns.
func (t Transcript) Last(n int) []ChatTurn {
	if n <= 0 {
		return nil
	}
	start := len(t.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]ChatTurn, len(t.turns)-start)
	copy(out, t.turns[start:])
	return out
}

func (t Transcript) Len() int { return len(t.turns) }

// MarshalJSON encodes the transcript as a plain array of turns.
func (t Transcript) MarshalJSON() ([]byte, error) {
	if t.turns == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.turns)
}

func (t *Transcript) UnmarshalJSON(data []byte) error {
	var turns []ChatTurn
	if err := json.Unmarshal(data, &turns); err != nil {
		return err
	}
	t.turns = turns
	return nil
}
