package service

import (
	"github.com/Harshitk-cp/informed/internal/domain"
	"github.com/Harshitk-cp/informed/internal/inference"
)

// DefaultConfidenceThreshold is the posterior probability at which a session
// is considered to have found its diagnosis.
const DefaultConfidenceThreshold = 0.90

// Policy decides when a session is finished.
type Policy struct {
	Threshold float64
}

func DefaultPolicy() Policy {
	return Policy{Threshold: DefaultConfidenceThreshold}
}

// Evaluate reports why a session with the given posterior and number of
// answered questions should stop, or CompletionNone if it should continue.
// Confidence wins over exhaustion when both hold.
func (p Policy) Evaluate(posterior inference.Distribution, asked, total int) domain.CompletionReason {
	if _, confidence := posterior.Max(); confidence >= p.Threshold {
		return domain.CompletionConfident
	}
	if asked >= total {
		return domain.CompletionExhausted
	}
	return domain.CompletionNone
}
