// Package assistant sequences prompts against the model backends and turns the
// answers into job categories, mood, alignment and narrative analyses.
package assistant

import (
	"context"
	"sync"
	"unicode/utf8"

	"github.com/jonathan/career-assistant/internal/llm"
	"github.com/jonathan/career-assistant/internal/logger"
	"github.com/jonathan/career-assistant/internal/parsing"
	"github.com/jonathan/career-assistant/internal/prompts"
	"github.com/jonathan/career-assistant/internal/schemas"
	"github.com/jonathan/career-assistant/internal/types"
)

// maxLoggedResponse caps how much of a rejected response goes into a log line.
const maxLoggedResponse = 500

// Assistant owns the current job category working set.
type Assistant struct {
	structured llm.Client
	narrative  llm.Client
	log        *logger.Logger

	mu         sync.RWMutex
	categories types.JobCategorySet
}

// New creates an assistant starting from the initial category set.
func New(backends *llm.Backends, log *logger.Logger) *Assistant {
	return NewWithCategories(backends, types.InitialCategories(), log)
}

// NewWithCategories creates an assistant starting from a previously stored set.
func NewWithCategories(backends *llm.Backends, categories types.JobCategorySet, log *logger.Logger) *Assistant {
	return &Assistant{
		structured: backends.Structured,
		narrative:  backends.Narrative,
		log:        logger.OrNop(log).With("service", "CareerAssistant"),
		categories: categories.Clone(),
	}
}

// Categories returns a copy of the current working set.
func (a *Assistant) Categories() types.JobCategorySet {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.categories.Clone()
}

// UpdateJobCategories replaces the working set with categories suggested for
// query. An unusable answer is replaced by the fallback set. Either way the
// result is normalized to exactly five entries. A transport failure leaves the
// working set unchanged.
func (a *Assistant) UpdateJobCategories(ctx context.Context, query string) (types.JobCategorySet, error) {
	raw, err := a.structured.GenerateJSON(ctx, prompts.JobCategories(query))
	if err != nil {
		return nil, a.callError("job categories", a.structured, err)
	}

	set, outcome := parsing.DecodeWithFallbackFunc(raw, schemas.Categories, parsing.DecodeCategoryResponse, types.FallbackCategories())
	if outcome.FellBack {
		a.log.Warn("unusable job category response, using default categories",
			"reason", outcome.Reason.Error(),
			"response", truncate(raw),
		)
	}
	set = set.Normalize()

	a.mu.Lock()
	a.categories = set
	a.mu.Unlock()

	return set.Clone(), nil
}

// AnalyzeMood reads the sentiment of text. An unusable answer yields a neutral
// mood; the score is always kept within [-1, 1].
func (a *Assistant) AnalyzeMood(ctx context.Context, text string) (types.MoodAnalysis, error) {
	raw, err := a.structured.GenerateJSON(ctx, prompts.Mood(text))
	if err != nil {
		return types.MoodAnalysis{}, a.callError("mood", a.structured, err)
	}

	mood, outcome := parsing.DecodeWithFallback(raw, schemas.Mood, types.NeutralMood())
	if outcome.FellBack {
		a.log.Warn("unusable mood response, using neutral mood",
			"reason", outcome.Reason.Error(),
			"response", truncate(raw),
		)
	}
	return mood.Clamp(), nil
}

// AnalyzeJobMarketAlignment scores text against the current categories. An
// unusable answer yields an empty collection.
func (a *Assistant) AnalyzeJobMarketAlignment(ctx context.Context, text string) (types.Alignments, error) {
	raw, err := a.structured.GenerateJSON(ctx, prompts.JobAlignment(text, a.Categories()))
	if err != nil {
		return nil, a.callError("job alignment", a.structured, err)
	}

	alignments, outcome := parsing.DecodeWithFallbackFunc(raw, schemas.Alignment, parsing.DecodeAlignments, types.Alignments{})
	if outcome.FellBack {
		a.log.Warn("unusable job alignment response, returning no alignments",
			"reason", outcome.Reason.Error(),
			"response", truncate(raw),
		)
	}
	return alignments.Clamp(), nil
}

// GenerateCareerPathAnalysis returns the raw tagged career path answer.
func (a *Assistant) GenerateCareerPathAnalysis(ctx context.Context, input, skills string) (string, error) {
	return a.narrate(ctx, "career path", prompts.CareerPath(input, skills))
}

// CreateSkillDevelopmentPlan returns the raw tagged skill plan answer.
func (a *Assistant) CreateSkillDevelopmentPlan(ctx context.Context, careerGoal, skills string) (string, error) {
	return a.narrate(ctx, "skill plan", prompts.SkillPlan(careerGoal, skills))
}

// ForecastIndustryTrends returns the raw tagged industry forecast answer.
func (a *Assistant) ForecastIndustryTrends(ctx context.Context, input string, categories types.JobCategorySet) (string, error) {
	return a.narrate(ctx, "industry forecast", prompts.IndustryForecast(input, categories))
}

func (a *Assistant) narrate(ctx context.Context, stage, prompt string) (string, error) {
	text, err := a.narrative.GenerateContent(ctx, prompt)
	if err != nil {
		return "", a.callError(stage, a.narrative, err)
	}
	return text, nil
}

func (a *Assistant) callError(stage string, client llm.Client, err error) error {
	a.log.Error("model call failed", "stage", stage, "backend", client.Name(), "error", err.Error())
	return &parsing.APICallError{Backend: client.Name(), Message: stage, Cause: err}
}

// truncate cuts s to at most maxLoggedResponse bytes without splitting a rune.
func truncate(s string) string {
	if len(s) <= maxLoggedResponse {
		return s
	}
	cut := maxLoggedResponse
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
