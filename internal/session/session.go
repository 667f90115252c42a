// Package session holds the per-user state of the assistant and the actions
// that change it.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/career-assistant/internal/types"
)

// Session is everything the assistant remembers about one user between actions.
type Session struct {
	ID               string                `json:"id"`
	Categories       types.JobCategorySet  `json:"categories"`
	Bundle           *types.AnalysisBundle `json:"bundle,omitempty"`
	Transcript       types.Transcript      `json:"transcript"`
	AnalysisComplete bool                  `json:"analysis_complete"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// New creates a fresh session with the initial category set.
func New(now time.Time) *Session {
	return fresh(uuid.NewString(), now)
}

func fresh(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		Categories: types.InitialCategories(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a copy that shares only immutable parts with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Categories = s.Categories.Clone()
	return &c
}

// ErrSessionNotFound indicates the session does not exist or has expired
type ErrSessionNotFound struct {
	ID string
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// ErrBusy indicates another action is still running on the session
type ErrBusy struct {
	ID string
}

func (e *ErrBusy) Error() string {
	return fmt.Sprintf("session %s is busy with another action", e.ID)
}

// ErrAnalysisIncomplete indicates a chat question before any analysis finished
type ErrAnalysisIncomplete struct {
	ID string
}

func (e *ErrAnalysisIncomplete) Error() string {
	return fmt.Sprintf("session %s has no completed analysis", e.ID)
}
