package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// CompletionReason explains why a diagnostic session is considered finished.
type CompletionReason string

const (
	CompletionNone      CompletionReason = ""
	CompletionConfident CompletionReason = "confident" // leading diagnosis reached the threshold
	CompletionExhausted CompletionReason = "exhausted" // every symptom has been asked
)

// Answer records one question put to the patient and the reply.
type Answer struct {
	SymptomID    string    `json:"symptom_id"`
	Question     string    `json:"question"`
	Yes          bool      `json:"yes"`
	Gain         float64   `json:"gain"`          // information gain at the time of asking
	EntropyAfter float64   `json:"entropy_after"` // posterior entropy once the answer was folded in
	AnsweredAt   time.Time `json:"answered_at"`
}

// Session is the caller-owned state of a single diagnostic conversation.
// The posterior is indexed by diagnosis catalog position.
type Session struct {
	ID             uuid.UUID `json:"id"`
	Posterior      []float64 `json:"posterior"`
	Answers        []Answer  `json:"answers"`
	EntropyHistory []float64 `json:"entropy_history"` // starts with the prior entropy

	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// Turn is the number of questions answered so far.
func (s *Session) Turn() int {
	return len(s.Answers)
}

// AskedSet returns the symptom ids already presented in this session.
func (s *Session) AskedSet() map[string]struct{} {
	asked := make(map[string]struct{}, len(s.Answers))
	for _, a := range s.Answers {
		asked[a.SymptomID] = struct{}{}
	}
	return asked
}

// HasAsked reports whether symptomID was already presented.
func (s *Session) HasAsked(symptomID string) bool {
	for _, a := range s.Answers {
		if a.SymptomID == symptomID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy that shares no slices with s.
func (s *Session) Clone() *Session {
	c := *s
	c.Posterior = slices.Clone(s.Posterior)
	c.Answers = slices.Clone(s.Answers)
	c.EntropyHistory = slices.Clone(s.EntropyHistory)
	return &c
}
