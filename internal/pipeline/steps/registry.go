// Package steps declares the analysis pipeline stages and the dependencies
// between them.
package steps

import (
	"fmt"

	dbpkg "github.com/jonathan/career-assistant/internal/db"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Title        string
	Category     string
	Position     int
	Dependencies []string
}

// StepRegistry holds all step definitions. Every stage depends on the one
// before it because each prompt may embed earlier results.
var StepRegistry = map[string]StepDefinition{
	dbpkg.StepJobCategories: {
		Name:     dbpkg.StepJobCategories,
		Title:    "Updating job categories",
		Category: dbpkg.CategoryStructured,
		Position: 1,
	},
	dbpkg.StepMood: {
		Name:         dbpkg.StepMood,
		Title:        "Analyzing mood",
		Category:     dbpkg.CategoryStructured,
		Position:     2,
		Dependencies: []string{dbpkg.StepJobCategories},
	},
	dbpkg.StepJobAlignment: {
		Name:         dbpkg.StepJobAlignment,
		Title:        "Scoring job market alignment",
		Category:     dbpkg.CategoryStructured,
		Position:     3,
		Dependencies: []string{dbpkg.StepMood, dbpkg.StepJobCategories},
	},
	dbpkg.StepCareerPath: {
		Name:         dbpkg.StepCareerPath,
		Title:        "Generating career path analysis",
		Category:     dbpkg.CategoryNarrative,
		Position:     4,
		Dependencies: []string{dbpkg.StepJobAlignment},
	},
	dbpkg.StepSkillPlan: {
		Name:         dbpkg.StepSkillPlan,
		Title:        "Creating skill development plan",
		Category:     dbpkg.CategoryNarrative,
		Position:     5,
		Dependencies: []string{dbpkg.StepCareerPath, dbpkg.StepJobCategories},
	},
	dbpkg.StepIndustryForecast: {
		Name:         dbpkg.StepIndustryForecast,
		Title:        "Forecasting industry trends",
		Category:     dbpkg.CategoryNarrative,
		Position:     6,
		Dependencies: []string{dbpkg.StepSkillPlan, dbpkg.StepJobCategories},
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s has missing dependencies: %v", e.Step, e.MissingDependencies)
}

// ValidateDependencies checks that every dependency of stepName is in completed.
func ValidateDependencies(completed map[string]bool, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return &DependencyError{Step: stepName, MissingDependencies: missing}
	}
	return nil
}

// Order returns the step names in execution order: dependencies first, ties
// broken by declared position.
func Order() ([]string, error) {
	completed := make(map[string]bool, len(StepRegistry))
	order := make([]string, 0, len(StepRegistry))

	for len(order) < len(StepRegistry) {
		next := ""
		for name, def := range StepRegistry {
			if completed[name] || ValidateDependencies(completed, name) != nil {
				continue
			}
			if next == "" || def.Position < StepRegistry[next].Position {
				next = name
			}
		}
		if next == "" {
			return nil, fmt.Errorf("step dependencies contain a cycle")
		}
		completed[next] = true
		order = append(order, next)
	}
	return order, nil
}
