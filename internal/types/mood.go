package types

// MoodAnalysis is the sentiment read of the user's free text.
type MoodAnalysis struct {
	Sentiment    string  `json:"sentiment"`
	Score        float64 `json:"score"`
	Analysis     string  `json:"analysis"`
	CareerImpact string  `json:"career_impact"`
}

// NeutralMood is used when the mood response cannot be decoded.
func NeutralMood() MoodAnalysis {
	return MoodAnalysis{
		Sentiment:    "Unknown",
		Score:        0,
		Analysis:     "Mood analysis was unavailable for this input.",
		CareerImpact: "No career impact could be derived.",
	}
}

// Clamp forces the score into [-1, 1].
func (m MoodAnalysis) Clamp() MoodAnalysis {
	m.Score = clamp(m.Score, -1, 1)
	return m
}

// Progress maps the score from [-1, 1] onto [0, 1] for progress-style widgets.
func (m MoodAnalysis) Progress() float64 {
	return (clamp(m.Score, -1, 1) + 1) / 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
