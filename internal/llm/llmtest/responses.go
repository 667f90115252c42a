package llmtest

import "github.com/jonathan/career-assistant/internal/llm"

// Canned responses for the assistant's prompts, keyed by text each prompt contains.
const (
	MatchCategories = "suggest at least 5 relevant job categories"
	MatchMood       = "Analyze the sentiment"
	MatchAlignment  = "aligns with these job categories"
	MatchCareerPath = "career path analysis"
	MatchSkillPlan  = "skill development plan"
	MatchForecast   = "forecast key trends"
	MatchFollowUp   = "please answer the user's question"

	CategoriesJSON = `{"Data Scientist": 0.35, "Data Analyst": 0.25, "Machine Learning Engineer": 0.4,
		"Marketing Analyst": 0.15, "Product Analyst": 0.2, "Growth Marketer": 0.1}`
	MoodJSON = `{"sentiment": "Optimistic", "score": 0.7,
		"analysis": "Energized by the prospect of change.",
		"career_impact": "Likely to pursue learning actively."}`
	AlignmentJSON = `{"alignments": [
		{"job_title": "Machine Learning Engineer", "score": 0.55, "reason": "Needs more engineering."},
		{"job_title": "Data Scientist", "score": 0.85, "reason": "Python and SQL fit."},
		{"job_title": "Data Analyst", "score": 0.8, "reason": "SQL and communication."},
		{"job_title": "Product Analyst", "score": 0.6, "reason": "Marketing background."},
		{"job_title": "Marketing Analyst", "score": 0.75, "reason": "Direct overlap."}]}`
	CareerPathText = `<short_term_prospects>Junior data analyst roles.</short_term_prospects>
<long_term_prospects>Senior data scientist within 5 years.</long_term_prospects>
<challenges>Competition from CS graduates.</challenges>
<growth_areas>Statistics and machine learning.</growth_areas>`
	SkillPlanText = `<core_skills>Python, statistics, ML</core_skills>
<skill_gaps>Statistics</skill_gaps>
<learning_resources>Online courses</learning_resources>
<timeline>3 months: stats; 6 months: ML</timeline>`
	ForecastText = `<industries>Tech, retail, health</industries>
<technological_trends>Generative AI</technological_trends>
<market_shifts>Data literacy demand</market_shifts>
<potential_disruptions>AutoML</potential_disruptions>
<career_implications>Hybrid marketing-data roles grow.</career_implications>`
	FollowUpText = "Start with statistics."
)

// HappyBackends returns backends that answer every prompt with well-formed output.
func HappyBackends() (*llm.Backends, *Client, *Client, *Client) {
	structured := New("fake/structured",
		Rule{Match: MatchCategories, Response: CategoriesJSON},
		Rule{Match: MatchMood, Response: MoodJSON},
		Rule{Match: MatchAlignment, Response: AlignmentJSON},
	)
	narrative := New("fake/narrative",
		Rule{Match: MatchCareerPath, Response: CareerPathText},
		Rule{Match: MatchSkillPlan, Response: SkillPlanText},
		Rule{Match: MatchForecast, Response: ForecastText},
	)
	chat := New("fake/chat", Rule{Match: MatchFollowUp, Response: FollowUpText})
	return &llm.Backends{Structured: structured, Narrative: narrative, Chat: chat}, structured, narrative, chat
}
