package types

import (
	"encoding/json"
	"time"
)

// AnalysisBundle aggregates the results of one analysis run. It is never modified
// after the pipeline returns it.
type AnalysisBundle struct {
	Input            string         `json:"input"`
	Skills           string         `json:"skills"`
	Categories       JobCategorySet `json:"categories"`
	Mood             MoodAnalysis   `json:"mood"`
	Alignments       Alignments     `json:"alignments"`
	CareerPath       Sections       `json:"career_path"`
	SkillPlan        Sections       `json:"skill_plan"`
	SkillPlanTarget  string         `json:"skill_plan_target"`
	IndustryForecast Sections       `json:"industry_forecast"`
	CreatedAt        time.Time      `json:"created_at"`
}

// contextView is the part of the bundle handed to the chat backend.
type contextView struct {
	Categories       JobCategorySet    `json:"job_categories"`
	Mood             MoodAnalysis      `json:"mood_analysis"`
	Alignments       Alignments        `json:"job_alignment"`
	CareerPath       map[string]string `json:"career_path"`
	SkillPlan        map[string]string `json:"skill_plan"`
	IndustryForecast map[string]string `json:"industry_trends"`
}

// ContextString serializes the analysis results as indented JSON for use as chat context.
func (b *AnalysisBundle) ContextString() string {
	if b == nil {
		return "{}"
	}
	view := contextView{
		Categories:       b.Categories,
		Mood:             b.Mood,
		Alignments:       b.Alignments,
		CareerPath:       b.CareerPath.Map(),
		SkillPlan:        b.SkillPlan.Map(),
		IndustryForecast: b.IndustryForecast.Map(),
	}
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
