package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-assistant/internal/assistant"
	"github.com/jonathan/career-assistant/internal/db"
	"github.com/jonathan/career-assistant/internal/llm"
	"github.com/jonathan/career-assistant/internal/llm/llmtest"
	"github.com/jonathan/career-assistant/internal/observability"
	"github.com/jonathan/career-assistant/internal/parsing"
	"github.com/jonathan/career-assistant/internal/types"
)

const (
	scenarioInput  = "excited about data science, want to pivot from marketing"
	scenarioSkills = "SQL, Python, communication"
)

type fakeRecorder struct {
	mu        sync.Mutex
	createErr error
	runID     uuid.UUID
	artifacts map[string]any
	texts     map[string]string
	status    string
	message   string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		runID:     uuid.New(),
		artifacts: make(map[string]any),
		texts:     make(map[string]string),
	}
}

func (f *fakeRecorder) CreateRun(_ context.Context, _, _, _ string) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	return f.runID, nil
}

func (f *fakeRecorder) SaveArtifact(_ context.Context, _ uuid.UUID, step, _ string, content any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artifacts[step] = content
	return nil
}

func (f *fakeRecorder) SaveTextArtifact(_ context.Context, _ uuid.UUID, step, _, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts[step] = text
	return nil
}

func (f *fakeRecorder) CompleteRun(_ context.Context, _ uuid.UUID, status, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.message = status, message
	return nil
}

func TestRunAnalysis_EndToEnd(t *testing.T) {
	backends, structured, narrative, _ := llmtest.HappyBackends()
	a := assistant.New(backends, nil)

	var events []ProgressEvent
	bundle, err := RunAnalysis(context.Background(), a, scenarioInput, scenarioSkills, RunOptions{
		OnProgress: func(e ProgressEvent) { events = append(events, e) },
	})
	require.NoError(t, err)
	require.NotNil(t, bundle)

	assert.Equal(t, scenarioInput, bundle.Input)
	assert.Equal(t, scenarioSkills, bundle.Skills)
	assert.False(t, bundle.CreatedAt.IsZero())

	assert.Equal(t, []string{
		"Machine Learning Engineer", "Data Scientist", "Data Analyst", "Product Analyst", "Marketing Analyst",
	}, bundle.Categories.Titles())
	assert.Equal(t, bundle.Categories, a.Categories())

	assert.Equal(t, "Optimistic", bundle.Mood.Sentiment)
	assert.InDelta(t, 0.7, bundle.Mood.Score, 1e-9)
	assert.Len(t, bundle.Alignments, 5)

	assert.True(t, bundle.CareerPath.Complete())
	assert.True(t, bundle.SkillPlan.Complete())
	assert.True(t, bundle.IndustryForecast.Complete())
	v, ok := bundle.SkillPlan.Get("skill_gaps")
	require.True(t, ok)
	assert.Equal(t, "Statistics", v)

	assert.Equal(t, "Machine Learning Engineer", bundle.SkillPlanTarget)

	require.Len(t, events, 6)
	wantOrder := []string{
		db.StepJobCategories, db.StepMood, db.StepJobAlignment,
		db.StepCareerPath, db.StepSkillPlan, db.StepIndustryForecast,
	}
	for i, e := range events {
		assert.Equal(t, wantOrder[i], e.Step)
		assert.Equal(t, i+1, e.Index)
		assert.Equal(t, 6, e.Total)
		assert.Empty(t, e.RunID)
	}

	assert.Equal(t, 3, structured.JSONCalls())
	prompts := narrative.Prompts()
	require.Len(t, prompts, 3)
	assert.Contains(t, prompts[0], scenarioInput)
	assert.Contains(t, prompts[0], scenarioSkills)
	assert.Contains(t, prompts[1], "Machine Learning Engineer")
	assert.Contains(t, prompts[1], scenarioSkills)
	assert.Contains(t, prompts[2], bundle.Categories.Joined())
}

func TestRunAnalysis_FallbacksStillProduceBundle(t *testing.T) {
	structured := llmtest.New("fake/structured")
	structured.Default = "Sorry, I can't produce JSON today."
	narrative := llmtest.New("fake/narrative")
	narrative.Default = "<core_skills>SQL</core_skills>"
	backends := &llm.Backends{Structured: structured, Narrative: narrative, Chat: llmtest.New("fake/chat")}

	bundle, err := RunAnalysis(context.Background(), assistant.New(backends, nil), "text", "SQL", RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, types.FallbackCategories(), bundle.Categories)
	assert.Equal(t, types.NeutralMood(), bundle.Mood)
	assert.NotNil(t, bundle.Alignments)
	assert.Empty(t, bundle.Alignments)
	assert.Equal(t, "Data Scientist", bundle.SkillPlanTarget)

	assert.False(t, bundle.CareerPath.Complete())
	assert.Empty(t, bundle.CareerPath.Found())
	assert.Equal(t, []string{"core_skills"}, bundle.SkillPlan.Found())
	assert.ElementsMatch(t, []string{"skill_gaps", "learning_resources", "timeline"}, bundle.SkillPlan.Missing())
}

func TestRunAnalysis_TransportFailureReturnsNoBundle(t *testing.T) {
	backends, _, _, _ := llmtest.HappyBackends()
	backends.Narrative = llmtest.New("fake/narrative",
		llmtest.Rule{Match: llmtest.MatchCareerPath, Response: llmtest.CareerPathText},
		llmtest.Rule{Match: llmtest.MatchSkillPlan, Err: errors.New("connection reset")},
	)
	rec := newFakeRecorder()

	var events []ProgressEvent
	bundle, err := RunAnalysis(context.Background(), assistant.New(backends, nil), scenarioInput, scenarioSkills, RunOptions{
		Recorder:   rec,
		OnProgress: func(e ProgressEvent) { events = append(events, e) },
	})
	require.Error(t, err)
	assert.Nil(t, bundle)

	var apiErr *parsing.APICallError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "fake/narrative", apiErr.Backend)
	assert.Contains(t, err.Error(), db.StepSkillPlan)

	assert.Len(t, events, 4)
	assert.Equal(t, db.RunStatusFailed, rec.status)
	assert.Contains(t, rec.message, "connection reset")
}

func TestRunAnalysis_RecordsArtifacts(t *testing.T) {
	backends, _, _, _ := llmtest.HappyBackends()
	rec := newFakeRecorder()

	var events []ProgressEvent
	_, err := RunAnalysis(context.Background(), assistant.New(backends, nil), scenarioInput, scenarioSkills, RunOptions{
		SessionID:  "s-1",
		Recorder:   rec,
		OnProgress: func(e ProgressEvent) { events = append(events, e) },
	})
	require.NoError(t, err)

	assert.Len(t, rec.artifacts, 6)
	assert.Len(t, rec.texts, 3)
	assert.Equal(t, llmtest.ForecastText, rec.texts[db.StepIndustryForecast])
	assert.Equal(t, db.RunStatusCompleted, rec.status)
	for _, e := range events {
		assert.Equal(t, rec.runID.String(), e.RunID)
	}
}

func TestRunAnalysis_RecorderFailureDoesNotAbort(t *testing.T) {
	backends, _, _, _ := llmtest.HappyBackends()
	rec := newFakeRecorder()
	rec.createErr = errors.New("database unavailable")

	bundle, err := RunAnalysis(context.Background(), assistant.New(backends, nil), scenarioInput, scenarioSkills, RunOptions{Recorder: rec})
	require.NoError(t, err)
	require.NotNil(t, bundle)
	assert.Empty(t, rec.artifacts)
	assert.Empty(t, rec.status)
}

func TestRunAnalysis_CancelledContext(t *testing.T) {
	backends, _, narrative, _ := llmtest.HappyBackends()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bundle, err := RunAnalysis(ctx, assistant.New(backends, nil), scenarioInput, scenarioSkills, RunOptions{})
	require.Error(t, err)
	assert.Nil(t, bundle)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, narrative.Prompts())
}

func TestRunAnalysis_VerbosePrinter(t *testing.T) {
	backends, _, _, _ := llmtest.HappyBackends()
	var buf bytes.Buffer

	_, err := RunAnalysis(context.Background(), assistant.New(backends, nil), scenarioInput, scenarioSkills, RunOptions{
		Printer: observability.NewPrinter(&buf),
	})
	require.NoError(t, err)

	out := buf.String()
	for _, want := range []string{"JOB CATEGORIES", "MOOD ANALYSIS", "JOB ALIGNMENT", "CREATING SKILL DEVELOPMENT PLAN"} {
		assert.True(t, strings.Contains(out, want), "missing %q", want)
	}
}
