package prompts

import (
	"fmt"
	"strings"

	"github.com/jonathan/career-assistant/internal/types"
)

const careerFile = "career.json"

// Prompt keys in career.json.
const (
	KeyJobCategories    = "job-categories"
	KeyMood             = "mood"
	KeyJobAlignment     = "job-alignment"
	KeyCareerPath       = "career-path"
	KeySkillPlan        = "skill-plan"
	KeyIndustryForecast = "industry-forecast"
	KeyFollowUp         = "follow-up"
)

// JobCategories asks for at least five job titles with growth rates as a JSON object.
func JobCategories(query string) string {
	return Format(MustGet(careerFile, KeyJobCategories), map[string]string{"Query": query})
}

// Mood asks for a sentiment analysis JSON document.
func Mood(text string) string {
	return Format(MustGet(careerFile, KeyMood), map[string]string{"Text": text})
}

// JobAlignment asks how well text fits each of the given categories.
func JobAlignment(text string, categories types.JobCategorySet) string {
	return Format(MustGet(careerFile, KeyJobAlignment), map[string]string{
		"Text":       text,
		"Categories": categories.Joined(),
	})
}

// CareerPath asks for tagged short/long term prospects, challenges and growth areas.
func CareerPath(input, skills string) string {
	return Format(MustGet(careerFile, KeyCareerPath), map[string]string{
		"Input":  input,
		"Skills": skills,
	})
}

// SkillPlan asks for a tagged development plan towards careerGoal.
func SkillPlan(careerGoal, skills string) string {
	return Format(MustGet(careerFile, KeySkillPlan), map[string]string{
		"CareerGoal": careerGoal,
		"Skills":     skills,
	})
}

// IndustryForecast asks for a tagged five-year forecast for the categories.
func IndustryForecast(input string, categories types.JobCategorySet) string {
	return Format(MustGet(careerFile, KeyIndustryForecast), map[string]string{
		"Input":      input,
		"Categories": categories.Joined(),
	})
}

// FollowUp asks a question against the serialized analysis. history may be
// empty, in which case only the context and question are sent.
func FollowUp(question, context string, history []types.ChatTurn) string {
	return Format(MustGet(careerFile, KeyFollowUp), map[string]string{
		"Question": question,
		"Context":  context,
		"History":  formatHistory(history),
	})
}

func formatHistory(history []types.ChatTurn) string {
	if len(history) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\nPrevious conversation:\n")
	for _, turn := range history {
		sb.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Content))
	}
	return sb.String()
}
