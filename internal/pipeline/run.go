// Package pipeline runs the fixed six-stage career analysis.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/career-assistant/internal/db"
	"github.com/jonathan/career-assistant/internal/logger"
	"github.com/jonathan/career-assistant/internal/observability"
	"github.com/jonathan/career-assistant/internal/parsing"
	"github.com/jonathan/career-assistant/internal/pipeline/steps"
	"github.com/jonathan/career-assistant/internal/types"
)

// Analyzer is the set of stage calls the pipeline drives. *assistant.Assistant
// implements it.
type Analyzer interface {
	UpdateJobCategories(ctx context.Context, query string) (types.JobCategorySet, error)
	AnalyzeMood(ctx context.Context, text string) (types.MoodAnalysis, error)
	AnalyzeJobMarketAlignment(ctx context.Context, text string) (types.Alignments, error)
	GenerateCareerPathAnalysis(ctx context.Context, input, skills string) (string, error)
	CreateSkillDevelopmentPlan(ctx context.Context, careerGoal, skills string) (string, error)
	ForecastIndustryTrends(ctx context.Context, input string, categories types.JobCategorySet) (string, error)
}

// Recorder persists a run and its stage artifacts. *db.DB implements it.
type Recorder interface {
	CreateRun(ctx context.Context, sessionID, input, skills string) (uuid.UUID, error)
	SaveArtifact(ctx context.Context, runID uuid.UUID, step, category string, content any) error
	SaveTextArtifact(ctx context.Context, runID uuid.UUID, step, category, text string) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status, errorMessage string) error
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string        `json:"step"`
	Category string        `json:"category"`
	Index    int           `json:"index"`
	Total    int           `json:"total"`
	Message  string        `json:"message"`
	RunID    string        `json:"run_id,omitempty"`
	Content  any           `json:"content,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	SessionID  string
	Recorder   Recorder // optional
	Logger     *logger.Logger
	OnProgress ProgressCallback
	// Printer, when set, receives a boxed rendering of each stage result.
	Printer *observability.Printer
}

// run holds the state threaded through the stages of one analysis.
type run struct {
	analyzer Analyzer
	opts     RunOptions
	log      *logger.Logger
	runID    uuid.UUID
	bundle   *types.AnalysisBundle
}

// RunAnalysis executes every stage in registry order and returns the complete
// bundle. Any stage error aborts the run; no partial bundle is returned.
func RunAnalysis(ctx context.Context, a Analyzer, input, skills string, opts RunOptions) (*types.AnalysisBundle, error) {
	order, err := steps.Order()
	if err != nil {
		return nil, err
	}

	r := &run{
		analyzer: a,
		opts:     opts,
		log:      logger.OrNop(opts.Logger).With("service", "pipeline", "session_id", opts.SessionID),
		bundle:   &types.AnalysisBundle{Input: input, Skills: skills},
	}
	r.begin(ctx)

	completed := make(map[string]bool, len(order))
	for i, name := range order {
		if err := steps.ValidateDependencies(completed, name); err != nil {
			r.finish(ctx, err)
			return nil, err
		}

		start := time.Now()
		content, message, err := r.execute(ctx, name)
		if err != nil {
			r.log.Error("stage failed", "step", name, "error", err)
			r.finish(ctx, err)
			return nil, fmt.Errorf("%s failed: %w", name, err)
		}
		completed[name] = true

		r.emit(ProgressEvent{
			Step:     name,
			Category: steps.StepRegistry[name].Category,
			Index:    i + 1,
			Total:    len(order),
			Message:  message,
			Content:  content,
			Duration: time.Since(start),
		})
	}

	r.bundle.CreatedAt = time.Now().UTC()
	r.finish(ctx, nil)
	return r.bundle, nil
}

// execute runs a single stage, storing its result in the bundle.
func (r *run) execute(ctx context.Context, name string) (any, string, error) {
	b := r.bundle
	r.log.Debug("stage started", "step", name, "title", steps.StepRegistry[name].Title)

	switch name {
	case db.StepJobCategories:
		set, err := r.analyzer.UpdateJobCategories(ctx, b.Input)
		if err != nil {
			return nil, "", err
		}
		b.Categories = set
		r.save(ctx, name, set)
		if r.opts.Printer != nil {
			r.opts.Printer.PrintCategories(set)
		}
		return set, fmt.Sprintf("Updated job categories: %s", set.Joined()), nil

	case db.StepMood:
		mood, err := r.analyzer.AnalyzeMood(ctx, b.Input)
		if err != nil {
			return nil, "", err
		}
		b.Mood = mood
		r.save(ctx, name, mood)
		if r.opts.Printer != nil {
			r.opts.Printer.PrintMood(mood)
		}
		return mood, fmt.Sprintf("Mood: %s (%.2f)", mood.Sentiment, mood.Score), nil

	case db.StepJobAlignment:
		alignments, err := r.analyzer.AnalyzeJobMarketAlignment(ctx, b.Input)
		if err != nil {
			return nil, "", err
		}
		b.Alignments = alignments
		r.save(ctx, name, alignments)
		if r.opts.Printer != nil {
			r.opts.Printer.PrintAlignments(alignments)
		}
		return alignments, fmt.Sprintf("Scored %d job alignments", len(alignments)), nil

	case db.StepCareerPath:
		raw, err := r.analyzer.GenerateCareerPathAnalysis(ctx, b.Input, b.Skills)
		if err != nil {
			return nil, "", err
		}
		b.CareerPath = r.sections(ctx, name, raw, parsing.CareerPathVocabulary)
		return b.CareerPath, sectionMessage("Career path analysis", b.CareerPath), nil

	case db.StepSkillPlan:
		b.SkillPlanTarget = topTitle(b.Categories)
		raw, err := r.analyzer.CreateSkillDevelopmentPlan(ctx, b.SkillPlanTarget, b.Skills)
		if err != nil {
			return nil, "", err
		}
		b.SkillPlan = r.sections(ctx, name, raw, parsing.SkillPlanVocabulary)
		return b.SkillPlan, sectionMessage("Skill plan for "+b.SkillPlanTarget, b.SkillPlan), nil

	case db.StepIndustryForecast:
		raw, err := r.analyzer.ForecastIndustryTrends(ctx, b.Input, b.Categories)
		if err != nil {
			return nil, "", err
		}
		b.IndustryForecast = r.sections(ctx, name, raw, parsing.IndustryForecastVocabulary)
		return b.IndustryForecast, sectionMessage("Industry forecast", b.IndustryForecast), nil
	}

	return nil, "", fmt.Errorf("unknown step: %s", name)
}

// sections extracts the tagged blocks of a narrative answer and records both
// the raw text and the extraction.
func (r *run) sections(ctx context.Context, step, raw string, vocabulary []string) types.Sections {
	s := parsing.ExtractSections(raw, vocabulary)
	if missing := s.Missing(); len(missing) > 0 {
		r.log.Debug("sections missing from response", "step", step, "missing", missing)
	}
	if r.opts.Recorder != nil && r.runID != uuid.Nil {
		if err := r.opts.Recorder.SaveTextArtifact(ctx, r.runID, step, db.CategoryNarrative, raw); err != nil {
			r.log.Warn("failed to save raw response", "step", step, "error", err)
		}
	}
	r.save(ctx, step, s)
	if r.opts.Printer != nil {
		r.opts.Printer.PrintSections(steps.StepRegistry[step].Title, s)
	}
	return s
}

func sectionMessage(prefix string, s types.Sections) string {
	return fmt.Sprintf("%s: %d/%d sections", prefix, len(s.Found()), len(s.Vocabulary))
}

// topTitle is the first category of the normalized set.
func topTitle(set types.JobCategorySet) string {
	if top, ok := set.Top(); ok {
		return top.Title
	}
	return ""
}

// begin creates the run record. Persistence problems never fail the analysis.
func (r *run) begin(ctx context.Context) {
	if r.opts.Recorder == nil {
		return
	}
	id, err := r.opts.Recorder.CreateRun(ctx, r.opts.SessionID, r.bundle.Input, r.bundle.Skills)
	if err != nil {
		r.log.Warn("failed to create run record, continuing without persistence", "error", err)
		return
	}
	r.runID = id
	r.log = r.log.With("run_id", id.String())
}

func (r *run) save(ctx context.Context, step string, content any) {
	if r.opts.Recorder == nil || r.runID == uuid.Nil {
		return
	}
	category := steps.StepRegistry[step].Category
	if err := r.opts.Recorder.SaveArtifact(ctx, r.runID, step, category, content); err != nil {
		r.log.Warn("failed to save artifact", "step", step, "error", err)
	}
}

func (r *run) finish(ctx context.Context, runErr error) {
	if r.opts.Recorder == nil || r.runID == uuid.Nil {
		return
	}
	status, message := db.RunStatusCompleted, ""
	if runErr != nil {
		status, message = db.RunStatusFailed, runErr.Error()
	}
	// The run record is closed even when the caller's context was cancelled.
	if err := r.opts.Recorder.CompleteRun(context.WithoutCancel(ctx), r.runID, status, message); err != nil {
		r.log.Warn("failed to complete run record", "error", err)
	}
}

// emit calls the progress callback if configured
func (r *run) emit(event ProgressEvent) {
	if r.runID != uuid.Nil {
		event.RunID = r.runID.String()
	}
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(event)
	}
}
