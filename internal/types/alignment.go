package types

import "sort"

// JobAlignment scores how well the user's text fits one job title.
type JobAlignment struct {
	JobTitle string  `json:"job_title"`
	Score    float64 `json:"score"`
	Reason   string  `json:"reason"`
}

// Alignments is the collection produced by the alignment stage, in model order.
type Alignments []JobAlignment

// Clamp returns a copy with every score forced into [0, 1].
func (a Alignments) Clamp() Alignments {
	out := make(Alignments, len(a))
	for i, al := range a {
		al.Score = clamp(al.Score, 0, 1)
		out[i] = al
	}
	return out
}

// Top returns up to n alignments sorted by descending score. Ties keep model order.
func (a Alignments) Top(n int) Alignments {
	out := make(Alignments, len(a))
	copy(out, a)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
