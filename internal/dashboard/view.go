// Package dashboard flattens an analysis bundle into the fields a front-end
// renders: metrics, panels, tabs and charts.
package dashboard

import (
	"fmt"

	"github.com/jonathan/career-assistant/internal/parsing"
	"github.com/jonathan/career-assistant/internal/types"
)

const (
	topAlignments       = 5
	noAlignmentsMessage = "No job alignments found."
)

// forecastLabels pairs each forecast tag with its tab label.
var forecastLabels = map[string]string{
	"industries":            "Relevant Industries",
	"technological_trends":  "Technological Trends",
	"market_shifts":         "Market Shifts",
	"potential_disruptions": "Potential Disruptions",
	"career_implications":   "Career Implications",
}

// View is the complete render model of one analysis.
type View struct {
	Mood             MoodMetric   `json:"mood"`
	Alignment        BarChart     `json:"alignment"`
	AlignmentDetails []Detail     `json:"alignment_details"`
	CareerPath       []Panel      `json:"career_path"`
	SkillPlan        []Panel      `json:"skill_plan"`
	SkillPlanTarget  string       `json:"skill_plan_target"`
	CurrentSkills    []string     `json:"current_skills"`
	Forecast         []Panel      `json:"forecast"`
	GrowthRates      ScatterChart `json:"growth_rates"`
	AlignmentScores  ScatterChart `json:"alignment_scores"`
}

// MoodMetric is the sentiment metric plus a progress bar in [0,1].
type MoodMetric struct {
	Sentiment    string  `json:"sentiment"`
	Score        float64 `json:"score"`
	ScoreText    string  `json:"score_text"`
	Progress     float64 `json:"progress"`
	Analysis     string  `json:"analysis"`
	CareerImpact string  `json:"career_impact"`
}

// Bar is one bar of a bar chart.
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// BarChart is empty when there is nothing to plot; Message then says why.
type BarChart struct {
	Title   string `json:"title,omitempty"`
	XLabel  string `json:"x_label"`
	YLabel  string `json:"y_label"`
	Bars    []Bar  `json:"bars"`
	Message string `json:"message,omitempty"`
}

// Detail is one line of the alignment details list.
type Detail struct {
	JobTitle string `json:"job_title"`
	Score    string `json:"score"`
	Reason   string `json:"reason"`
}

// Panel is a titled block of narrative text. Missing marks a section the
// model did not return.
type Panel struct {
	Tag     string `json:"tag"`
	Title   string `json:"title"`
	Body    string `json:"body,omitempty"`
	Missing bool   `json:"missing,omitempty"`
}

// Point is one scatter point, sized by its value.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Size  float64 `json:"size"`
}

// ScatterChart is a labelled scatter plot.
type ScatterChart struct {
	Title  string  `json:"title"`
	XLabel string  `json:"x_label"`
	YLabel string  `json:"y_label"`
	Points []Point `json:"points"`
}

// Build creates the view for a bundle. A nil bundle yields an empty view.
func Build(b *types.AnalysisBundle) View {
	if b == nil {
		return View{}
	}
	return View{
		Mood:             moodMetric(b.Mood),
		Alignment:        alignmentChart(b.Alignments),
		AlignmentDetails: alignmentDetails(b.Alignments),
		CareerPath:       foundPanels(b.CareerPath),
		SkillPlan:        allPanels(b.SkillPlan, parsing.SkillPlanVocabulary, types.SectionTitle),
		SkillPlanTarget:  b.SkillPlanTarget,
		CurrentSkills:    parsing.SplitSkills(b.Skills),
		Forecast:         allPanels(b.IndustryForecast, parsing.IndustryForecastVocabulary, forecastLabel),
		GrowthRates:      growthRates(b.Categories),
		AlignmentScores:  alignmentScores(b.Alignments),
	}
}

func moodMetric(m types.MoodAnalysis) MoodMetric {
	return MoodMetric{
		Sentiment:    m.Sentiment,
		Score:        m.Score,
		ScoreText:    fmt.Sprintf("Score: %.2f", m.Score),
		Progress:     m.Progress(),
		Analysis:     m.Analysis,
		CareerImpact: m.CareerImpact,
	}
}

func alignmentChart(a types.Alignments) BarChart {
	chart := BarChart{XLabel: "Job Title", YLabel: "Alignment Score", Bars: []Bar{}}
	top := a.Top(topAlignments)
	if len(top) == 0 {
		chart.Message = noAlignmentsMessage
		return chart
	}
	chart.Title = fmt.Sprintf("Top %d Job Category Alignments", len(top))
	for _, al := range top {
		chart.Bars = append(chart.Bars, Bar{Label: al.JobTitle, Value: al.Score})
	}
	return chart
}

func alignmentDetails(a types.Alignments) []Detail {
	top := a.Top(topAlignments)
	details := make([]Detail, 0, len(top))
	for _, al := range top {
		details = append(details, Detail{JobTitle: al.JobTitle, Score: fmt.Sprintf("%.2f", al.Score), Reason: al.Reason})
	}
	return details
}

// foundPanels returns a panel per section present, in vocabulary order.
func foundPanels(s types.Sections) []Panel {
	panels := []Panel{}
	for _, tag := range s.Found() {
		body, _ := s.Get(tag)
		panels = append(panels, Panel{Tag: tag, Title: types.SectionTitle(tag), Body: body})
	}
	return panels
}

// allPanels returns a panel for every tag of the vocabulary, flagging absent ones.
func allPanels(s types.Sections, vocabulary []string, title func(string) string) []Panel {
	panels := make([]Panel, 0, len(vocabulary))
	for _, tag := range vocabulary {
		body, ok := s.Get(tag)
		panels = append(panels, Panel{Tag: tag, Title: title(tag), Body: body, Missing: !ok})
	}
	return panels
}

func forecastLabel(tag string) string {
	if label, ok := forecastLabels[tag]; ok {
		return label
	}
	return types.SectionTitle(tag)
}

func growthRates(set types.JobCategorySet) ScatterChart {
	chart := ScatterChart{Title: "Job Growth Rates", XLabel: "Job Title", YLabel: "Growth Rate", Points: []Point{}}
	for _, c := range set {
		chart.Points = append(chart.Points, Point{Label: c.Title, Value: c.GrowthRate, Size: c.GrowthRate})
	}
	return chart
}

func alignmentScores(a types.Alignments) ScatterChart {
	chart := ScatterChart{Title: "Job Alignment Scores", XLabel: "Job Title", YLabel: "Alignment Score", Points: []Point{}}
	for _, al := range a {
		chart.Points = append(chart.Points, Point{Label: al.JobTitle, Value: al.Score, Size: al.Score})
	}
	return chart
}
