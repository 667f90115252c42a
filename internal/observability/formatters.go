// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/career-assistant/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, fit(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, fit(line))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// fit truncates a line to the box interior, counting runes.
func fit(line string) string {
	r := []rune(line)
	if len(r) > boxWidth-4 {
		return string(r[:boxWidth-7]) + "..."
	}
	return line
}

// PrintCategories outputs the job category working set.
func (p *Printer) PrintCategories(set types.JobCategorySet) {
	if len(set) == 0 {
		return
	}
	var sb strings.Builder
	for i, c := range set {
		sb.WriteString(fmt.Sprintf("%d. %-40s %5.1f%%\n", i+1, c.Title, c.GrowthRate*100))
	}
	p.printBox("JOB CATEGORIES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMood outputs the sentiment, score and a short analysis.
func (p *Printer) PrintMood(mood types.MoodAnalysis) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Sentiment: %s\n", mood.Sentiment))
	sb.WriteString(fmt.Sprintf("Score:     %.2f\n", mood.Score))
	if mood.Analysis != "" {
		sb.WriteString("\n" + mood.Analysis + "\n")
	}
	if mood.CareerImpact != "" {
		sb.WriteString("\nCareer impact: " + mood.CareerImpact + "\n")
	}
	p.printBox("MOOD ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAlignments outputs the top alignments with score bars.
func (p *Printer) PrintAlignments(alignments types.Alignments) {
	if len(alignments) == 0 {
		p.printBox("JOB ALIGNMENT", "No job alignments found.")
		return
	}

	var sb strings.Builder
	top := alignments.Top(maxItemsToShow)
	for i, a := range top {
		bar := strings.Repeat("█", int(a.Score*20+0.5))
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, a.JobTitle))
		sb.WriteString(fmt.Sprintf("    %-20s %.2f\n", bar, a.Score))
	}
	if len(alignments) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(alignments)-maxItemsToShow))
	}
	p.printBox("JOB ALIGNMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSections outputs each found section under its heading and lists missing ones.
func (p *Printer) PrintSections(title string, sections types.Sections) {
	var sb strings.Builder
	for _, tag := range sections.Found() {
		text, _ := sections.Get(tag)
		sb.WriteString(types.SectionTitle(tag) + ":\n")
		sb.WriteString(text + "\n\n")
	}
	if missing := sections.Missing(); len(missing) > 0 {
		sb.WriteString(fmt.Sprintf("Missing: %s\n", strings.Join(missing, ", ")))
	}
	p.printBox(strings.ToUpper(title), strings.TrimSpace(sb.String()))
}

// PrintBundle outputs every part of an analysis.
func (p *Printer) PrintBundle(bundle *types.AnalysisBundle) {
	if bundle == nil {
		return
	}
	p.PrintCategories(bundle.Categories)
	p.PrintMood(bundle.Mood)
	p.PrintAlignments(bundle.Alignments)
	p.PrintSections("Career Path Analysis", bundle.CareerPath)
	p.PrintSections("Skill Development Plan", bundle.SkillPlan)
	p.PrintSections("Industry Trends Forecast", bundle.IndustryForecast)
}

// PrintAnswer outputs a follow-up chat answer.
func (p *Printer) PrintAnswer(question, answer string) {
	p.printBox("Q: "+question, answer)
}
