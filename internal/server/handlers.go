package server

import (
	"net/http"
	"time"

	"github.com/jonathan/career-assistant/internal/dashboard"
	"github.com/jonathan/career-assistant/internal/pipeline"
	"github.com/jonathan/career-assistant/internal/session"
	"github.com/jonathan/career-assistant/internal/types"
)

// CreateSessionResponse is returned by POST /sessions
type CreateSessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatResponse is returned by POST /sessions/{id}/chat
type ChatResponse struct {
	Answer     string           `json:"answer"`
	Transcript types.Transcript `json:"transcript"`
}

// CategoriesResponse is returned by GET /categories
type CategoriesResponse struct {
	Categories types.JobCategorySet `json:"categories"`
	Fallback   types.JobCategorySet `json:"fallback"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCategories returns the category set a new session starts with
func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, CategoriesResponse{
		Categories: types.InitialCategories(),
		Fallback:   types.FallbackCategories(),
	})
}

// handleCreateSession starts a session and issues its token
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	token, err := s.jwtService.GenerateToken(sess.ID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, CreateSessionResponse{
		SessionID: sess.ID,
		Token:     token,
		CreatedAt: sess.CreatedAt,
	})
}

// handleGetSession returns the stored session state
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess)
}

// handleResetSession starts over with a fresh session under the same ID
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Reset(r.Context(), r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess)
}

// handleAnalysis runs the full analysis and returns the bundle
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req types.AnalysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	bundle, err := s.sessions.Analyze(r.Context(), r.PathValue("id"), req, nil)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, bundle)
}

// handleAnalysisStream runs the analysis and streams stage progress as SSE
func (s *Server) handleAnalysisStream(w http.ResponseWriter, r *http.Request) {
	var req types.AnalysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	onProgress := func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent(eventProgress, event); err != nil {
			s.log.Warn("failed to write progress event", "step", event.Step, "error", err)
		}
	}

	bundle, err := s.sessions.Analyze(r.Context(), r.PathValue("id"), req, onProgress)
	if err != nil {
		sse.WriteError(HTTPStatus(err), err.Error())
		return
	}
	sse.WriteComplete(bundle)
}

// handleDashboard returns the render model of the latest analysis
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if !sess.AnalysisComplete {
		s.errorResponse(w, &session.ErrAnalysisIncomplete{ID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, dashboard.Build(sess.Bundle))
}

// handleChat answers a follow-up question
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	answer, sess, err := s.sessions.Ask(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ChatResponse{Answer: answer, Transcript: sess.Transcript})
}
