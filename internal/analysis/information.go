package analysis

import "github.com/Harshitk-cp/informed/internal/inference"

// MutualInformation ranks every symptom by I(D; S) under the uniform prior,
// which equals its information gain as a first question.
func MutualInformation(e *inference.Engine) ([]inference.Candidate, error) {
	return e.Rank(e.Prior(), nil)
}
