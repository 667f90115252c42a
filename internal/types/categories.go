// Package types provides type definitions for structured data used throughout the career assistant.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"sort"
	"strings"
)

// CategoryCount is the number of entries a normalized category set holds.
const CategoryCount = 5

const (
	// FallbackGrowthRate is assigned to every default category when the model response is unusable.
	FallbackGrowthRate = 0.2
	// PlaceholderGrowthRate is assigned to padding entries added during normalization.
	PlaceholderGrowthRate = 0.1
)

// JobCategory is a job title with its estimated growth rate (0.25 means 25% growth).
type JobCategory struct {
	Title      string  `json:"job_title"`
	GrowthRate float64 `json:"growth_rate"`
}

// JobCategorySet is the ordered working set of job categories.
type JobCategorySet []JobCategory

// FallbackTitles are substituted when the category response cannot be used.
var FallbackTitles = []string{
	"Data Scientist",
	"Software Engineer",
	"Product Manager",
	"UX Designer",
	"Marketing Specialist",
}

// InitialCategories returns the working set a fresh assistant starts with.
func InitialCategories() JobCategorySet {
	return JobCategorySet{
		{Title: "Data Scientist", GrowthRate: 0.3},
		{Title: "Software Engineer", GrowthRate: 0.25},
		{Title: "Product Manager", GrowthRate: 0.2},
		{Title: "UX Designer", GrowthRate: 0.22},
	}
}

// FallbackCategories returns the fixed default set used when the model output is unusable.
func FallbackCategories() JobCategorySet {
	set := make(JobCategorySet, 0, len(FallbackTitles))
	for _, title := range FallbackTitles {
		set = append(set, JobCategory{Title: title, GrowthRate: FallbackGrowthRate})
	}
	return set
}

// Normalize returns a copy holding exactly CategoryCount entries. Larger sets keep
// the highest growth rates in descending order; smaller sets keep every entry and
// are padded with "Additional Category i" placeholders.
func (s JobCategorySet) Normalize() JobCategorySet {
	out := s.Clone()
	switch {
	case len(out) > CategoryCount:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].GrowthRate > out[j].GrowthRate
		})
		out = out[:CategoryCount]
	case len(out) < CategoryCount:
		missing := CategoryCount - len(out)
		for i := 0; i < missing; i++ {
			out = append(out, JobCategory{
				Title:      fmt.Sprintf("Additional Category %d", i),
				GrowthRate: PlaceholderGrowthRate,
			})
		}
	}
	return out
}

// Clone returns an independent copy of the set.
func (s JobCategorySet) Clone() JobCategorySet {
	if s == nil {
		return JobCategorySet{}
	}
	out := make(JobCategorySet, len(s))
	copy(out, s)
	return out
}

// Titles returns the category titles in set order.
func (s JobCategorySet) Titles() []string {
	titles := make([]string, 0, len(s))
	for _, c := range s {
		titles = append(titles, c.Title)
	}
	return titles
}

// Joined returns the titles joined with ", ".
func (s JobCategorySet) Joined() string {
	return strings.Join(s.Titles(), ", ")
}

// Top returns the first category of the set, the one the skill plan targets.
func (s JobCategorySet) Top() (JobCategory, bool) {
	if len(s) == 0 {
		return JobCategory{}, false
	}
	return s[0], true
}
