package model

import "maps"

// Score is the traffic-light classification of a single nutrient.
type Score string

const (
	ScoreFavorable   Score = "favorable"
	ScoreModerate    Score = "moderate"
	ScoreUnfavorable Score = "unfavorable"
)

// Color returns the traffic-light color for the score.
func (s Score) Color() string {
	switch s {
	case ScoreFavorable:
		return "green"
	case ScoreModerate:
		return "yellow"
	case ScoreUnfavorable:
		return "red"
	default:
		return "unknown"
	}
}

func (s Score) String() string {
	return string(s)
}

// EvaluationResult maps each evaluated nutrient to its score. It is read-only:
// the constructor copies its input and accessors hand out copies.
type EvaluationResult struct {
	scores map[Nutrient]Score
}

func NewEvaluationResult(scores map[Nutrient]Score) EvaluationResult {
	return EvaluationResult{scores: maps.Clone(scores)}
}

func (r EvaluationResult) Score(n Nutrient) (Score, bool) {
	s, ok := r.scores[n]
	return s, ok
}

// Scores returns a copy of the underlying mapping.
func (r EvaluationResult) Scores() map[Nutrient]Score {
	out := maps.Clone(r.scores)
	if out == nil {
		out = map[Nutrient]Score{}
	}
	return out
}

// Nutrients returns the scored nutrients in canonical order.
func (r EvaluationResult) Nutrients() []Nutrient {
	out := make([]Nutrient, 0, len(r.scores))
	for _, n := range nutrients {
		if _, ok := r.scores[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (r EvaluationResult) Len() int {
	return len(r.scores)
}

func (r EvaluationResult) Equal(other EvaluationResult) bool {
	return maps.Equal(r.scores, other.scores)
}

