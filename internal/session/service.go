package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/career-assistant/internal/assistant"
	"github.com/jonathan/career-assistant/internal/chat"
	"github.com/jonathan/career-assistant/internal/llm"
	"github.com/jonathan/career-assistant/internal/logger"
	"github.com/jonathan/career-assistant/internal/pipeline"
	"github.com/jonathan/career-assistant/internal/types"
)

// Options configures a Service.
type Options struct {
	Recorder     pipeline.Recorder // optional run persistence
	HistoryTurns int               // prior chat turns sent with each question
	Logger       *logger.Logger
}

// Service runs the user actions (analyze, ask, reset) against stored sessions.
// Only one action may run on a session at a time.
type Service struct {
	store     Store
	backends  *llm.Backends
	recorder  pipeline.Recorder
	responder *chat.Responder
	log       *logger.Logger
	now       func() time.Time

	mu   sync.Mutex
	busy map[string]struct{}
}

// NewService creates a session service over the given store and backends.
func NewService(store Store, backends *llm.Backends, opts Options) *Service {
	log := logger.OrNop(opts.Logger)
	responder := chat.NewResponder(backends.Chat, log)
	responder.HistoryTurns = opts.HistoryTurns
	return &Service{
		store:     store,
		backends:  backends,
		recorder:  opts.Recorder,
		responder: responder,
		log:       log.With("service", "SessionService"),
		now:       func() time.Time { return time.Now().UTC() },
		busy:      make(map[string]struct{}),
	}
}

// acquire marks id busy or fails with ErrBusy. When the store is shared
// between processes it also takes the store's lock.
func (s *Service) acquire(ctx context.Context, id string) (func(), error) {
	s.mu.Lock()
	if _, ok := s.busy[id]; ok {
		s.mu.Unlock()
		return nil, &ErrBusy{ID: id}
	}
	s.busy[id] = struct{}{}
	s.mu.Unlock()

	local := func() {
		s.mu.Lock()
		delete(s.busy, id)
		s.mu.Unlock()
	}

	locker, ok := s.store.(Locker)
	if !ok {
		return local, nil
	}
	unlock, err := locker.Lock(ctx, id)
	if err != nil {
		local()
		return nil, err
	}
	return func() {
		if err := unlock(); err != nil {
			s.log.Warn("failed to release session lock", "session_id", id, "error", err.Error())
		}
		local()
	}, nil
}

// Create starts a fresh session.
func (s *Service) Create(ctx context.Context) (*Session, error) {
	sess := New(s.now())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.log.Info("session created", "session_id", sess.ID)
	return sess, nil
}

// Get returns the stored session.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

// Analyze runs the full pipeline for the session. The session is only updated
// when every stage succeeded.
func (s *Service) Analyze(ctx context.Context, id string, req types.AnalysisRequest, onProgress pipeline.ProgressCallback) (*types.AnalysisBundle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	release, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	a := assistant.NewWithCategories(s.backends, sess.Categories, s.log)
	bundle, err := pipeline.RunAnalysis(ctx, a, req.Input, req.Skills, pipeline.RunOptions{
		SessionID:  id,
		Recorder:   s.recorder,
		Logger:     s.log,
		OnProgress: onProgress,
	})
	if err != nil {
		return nil, err
	}

	sess.Bundle = bundle
	sess.Categories = a.Categories()
	sess.AnalysisComplete = true
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.log.Info("analysis completed", "session_id", id, "top_category", bundle.SkillPlanTarget)
	return bundle, nil
}

// Ask answers a follow-up question using the latest analysis as context. The
// question and answer are appended together once the backend has replied.
func (s *Service) Ask(ctx context.Context, id string, req types.ChatRequest) (string, *Session, error) {
	if err := req.Validate(); err != nil {
		return "", nil, err
	}
	release, err := s.acquire(ctx, id)
	if err != nil {
		return "", nil, err
	}
	defer release()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if !sess.AnalysisComplete || sess.Bundle == nil {
		return "", nil, &ErrAnalysisIncomplete{ID: id}
	}

	asked := s.now()
	answer, err := s.responder.Answer(ctx, req.Question, sess.Bundle.ContextString(), sess.Transcript)
	if err != nil {
		return "", nil, err
	}

	sess.Transcript = sess.Transcript.Append(
		types.ChatTurn{Role: types.RoleUser, Content: req.Question, At: asked},
		types.ChatTurn{Role: types.RoleAssistant, Content: answer, At: s.now()},
	)
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}
	return answer, sess, nil
}

// Reset replaces the session with a fresh one under the same ID.
func (s *Service) Reset(ctx context.Context, id string) (*Session, error) {
	release, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	old, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess := fresh(old.ID, s.now())
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to reset session: %w", err)
	}
	s.log.Info("session reset", "session_id", id)
	return sess, nil
}
