package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-assistant/internal/llm"
	"github.com/jonathan/career-assistant/internal/llm/llmtest"
	"github.com/jonathan/career-assistant/internal/parsing"
	"github.com/jonathan/career-assistant/internal/pipeline"
	"github.com/jonathan/career-assistant/internal/types"
)

var scenario = types.AnalysisRequest{
	Input:  "excited about data science, want to pivot from marketing",
	Skills: "SQL, Python, communication",
}

// blockingClient holds every call until release is closed.
type blockingClient struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingClient) GenerateContent(ctx context.Context, _ string) (string, error) {
	b.started <- struct{}{}
	select {
	case <-b.release:
		return "", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (b *blockingClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return b.GenerateContent(ctx, prompt)
}

func (b *blockingClient) Name() string { return "fake/blocking" }
func (b *blockingClient) Close() error { return nil }

func newService(t *testing.T) (*Service, *MemoryStore, *llmtest.Client) {
	t.Helper()
	backends, _, _, chat := llmtest.HappyBackends()
	store := NewMemoryStore()
	return NewService(store, backends, Options{}), store, chat
}

func TestCreate_StartsWithInitialCategories(t *testing.T) {
	svc, store, _ := newService(t)

	sess, err := svc.Create(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, types.InitialCategories(), sess.Categories)
	assert.False(t, sess.AnalysisComplete)
	assert.Equal(t, 1, store.Len())
}

func TestAnalyze_CommitsBundleAndCategories(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	sess, err := svc.Create(ctx)
	require.NoError(t, err)

	var events []pipeline.ProgressEvent
	bundle, err := svc.Analyze(ctx, sess.ID, scenario, func(e pipeline.ProgressEvent) { events = append(events, e) })
	require.NoError(t, err)
	assert.Len(t, events, 6)

	stored, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, stored.AnalysisComplete)
	assert.Equal(t, bundle.Categories, stored.Categories)
	assert.Equal(t, "Machine Learning Engineer", stored.Categories[0].Title)
	require.NotNil(t, stored.Bundle)
	assert.Equal(t, bundle.Mood, stored.Bundle.Mood)
}

func TestAnalyze_FailureLeavesSessionUntouched(t *testing.T) {
	backends, _, _, _ := llmtest.HappyBackends()
	backends.Narrative = llmtest.New("fake/narrative", llmtest.Rule{Match: llmtest.MatchCareerPath, Err: errors.New("503")})
	store := NewMemoryStore()
	svc := NewService(store, backends, Options{})
	ctx := context.Background()

	sess, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.Analyze(ctx, sess.ID, scenario, nil)
	var apiErr *parsing.APICallError
	require.ErrorAs(t, err, &apiErr)

	stored, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, stored.AnalysisComplete)
	assert.Nil(t, stored.Bundle)
	assert.Equal(t, types.InitialCategories(), stored.Categories)
}

func TestAnalyze_Validation(t *testing.T) {
	svc, _, _ := newService(t)
	sess, err := svc.Create(context.Background())
	require.NoError(t, err)

	_, err = svc.Analyze(context.Background(), sess.ID, types.AnalysisRequest{}, nil)
	var vErr *types.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "input", vErr.Field)
}

func TestAnalyze_UnknownSession(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Analyze(context.Background(), "missing", scenario, nil)
	var nf *ErrSessionNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.ID)
}

func TestAsk_RequiresCompletedAnalysis(t *testing.T) {
	svc, _, chat := newService(t)
	sess, err := svc.Create(context.Background())
	require.NoError(t, err)

	_, _, err = svc.Ask(context.Background(), sess.ID, types.ChatRequest{Question: "What next?"})
	var inc *ErrAnalysisIncomplete
	require.ErrorAs(t, err, &inc)
	assert.Empty(t, chat.Prompts())
}

func TestAsk_AppendsBothTurns(t *testing.T) {
	svc, _, chat := newService(t)
	ctx := context.Background()
	sess, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.Analyze(ctx, sess.ID, scenario, nil)
	require.NoError(t, err)

	answer, updated, err := svc.Ask(ctx, sess.ID, types.ChatRequest{Question: "What should I learn first?"})
	require.NoError(t, err)
	assert.Equal(t, llmtest.FollowUpText, answer)

	turns := updated.Transcript.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, types.RoleUser, turns[0].Role)
	assert.Equal(t, "What should I learn first?", turns[0].Content)
	assert.Equal(t, types.RoleAssistant, turns[1].Role)
	assert.Equal(t, llmtest.FollowUpText, turns[1].Content)

	prompt := chat.Prompts()[0]
	assert.Contains(t, prompt, `"mood_analysis"`)
	assert.Contains(t, prompt, "Optimistic")
}

func TestAsk_FailedCallAppendsNothing(t *testing.T) {
	backends, _, _, _ := llmtest.HappyBackends()
	backends.Chat = llmtest.New("fake/chat", llmtest.Rule{Match: llmtest.MatchFollowUp, Err: errors.New("down")})
	svc := NewService(NewMemoryStore(), backends, Options{})
	ctx := context.Background()

	sess, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.Analyze(ctx, sess.ID, scenario, nil)
	require.NoError(t, err)

	_, _, err = svc.Ask(ctx, sess.ID, types.ChatRequest{Question: "q"})
	require.Error(t, err)

	stored, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Transcript.Len())
}

func TestReset_KeepsIDAndClearsState(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	sess, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.Analyze(ctx, sess.ID, scenario, nil)
	require.NoError(t, err)

	reset, err := svc.Reset(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, reset.ID)
	assert.False(t, reset.AnalysisComplete)
	assert.Nil(t, reset.Bundle)
	assert.Equal(t, types.InitialCategories(), reset.Categories)
	assert.Equal(t, 0, reset.Transcript.Len())
}

func TestBusy_SecondActionFailsFast(t *testing.T) {
	block := &blockingClient{started: make(chan struct{}, 1), release: make(chan struct{})}
	backends := &llm.Backends{Structured: block, Narrative: block, Chat: block}
	svc := NewService(NewMemoryStore(), backends, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := svc.Create(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Analyze(ctx, sess.ID, scenario, nil)
		done <- err
	}()
	<-block.started

	_, err = svc.Reset(context.Background(), sess.ID)
	var busy *ErrBusy
	require.ErrorAs(t, err, &busy)

	_, _, err = svc.Ask(context.Background(), sess.ID, types.ChatRequest{Question: "q"})
	require.ErrorAs(t, err, &busy)

	cancel()
	require.Error(t, <-done)

	_, err = svc.Reset(context.Background(), sess.ID)
	assert.NoError(t, err)
}

// sharedLockStore stands in for a store reached by several server processes.
type sharedLockStore struct {
	*MemoryStore
	mu       sync.Mutex
	held     map[string]bool
	released int
}

func newSharedLockStore() *sharedLockStore {
	return &sharedLockStore{MemoryStore: NewMemoryStore(), held: make(map[string]bool)}
}

func (s *sharedLockStore) Lock(_ context.Context, id string) (func() error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held[id] {
		return nil, &ErrBusy{ID: id}
	}
	s.held[id] = true
	return func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.held, id)
		s.released++
		return nil
	}, nil
}

func TestBusy_SharedStoreLockSpansServices(t *testing.T) {
	store := newSharedLockStore()
	block := &blockingClient{started: make(chan struct{}, 1), release: make(chan struct{})}
	first := NewService(store, &llm.Backends{Structured: block, Narrative: block, Chat: block}, Options{})
	backends, _, _, _ := llmtest.HappyBackends()
	second := NewService(store, backends, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sess, err := first.Create(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := first.Analyze(ctx, sess.ID, scenario, nil)
		done <- err
	}()
	<-block.started

	_, err = second.Reset(context.Background(), sess.ID)
	var busy *ErrBusy
	require.ErrorAs(t, err, &busy)

	cancel()
	require.Error(t, <-done)

	_, err = second.Reset(context.Background(), sess.ID)
	require.NoError(t, err)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.held)
	assert.Equal(t, 2, store.released)
}

func TestBusy_SharedLockRefusalClearsLocalClaim(t *testing.T) {
	store := newSharedLockStore()
	backends, _, _, _ := llmtest.HappyBackends()
	svc := NewService(store, backends, Options{})

	sess, err := svc.Create(context.Background())
	require.NoError(t, err)

	store.held[sess.ID] = true
	_, err = svc.Reset(context.Background(), sess.ID)
	var busy *ErrBusy
	require.ErrorAs(t, err, &busy)

	delete(store.held, sess.ID)
	_, err = svc.Reset(context.Background(), sess.ID)
	assert.NoError(t, err)
}
