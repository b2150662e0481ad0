package analysis

import (
	"github.com/Harshitk-cp/informed/internal/domain"
	"github.com/Harshitk-cp/informed/internal/inference"
	"github.com/Harshitk-cp/informed/internal/service"
)

// Step is one question of a traced session.
type Step struct {
	Number        int            `json:"number"`
	Symptom       domain.Symptom `json:"symptom"`
	Answer        bool           `json:"answer"`
	Gain          float64        `json:"gain"`
	EntropyBefore float64        `json:"entropy_before"`
	EntropyAfter  float64        `json:"entropy_after"`
}

// Reduction is the entropy actually removed by the answer, which can differ
// from the expected Gain.
func (s Step) Reduction() float64 {
	return s.EntropyBefore - s.EntropyAfter
}

// Path records a simulated greedy session from the uniform prior to the
// stopping point.
type Path struct {
	Target         domain.Diagnosis        `json:"target"`
	InitialEntropy float64                 `json:"initial_entropy"`
	Steps          []Step                  `json:"steps"`
	Posterior      inference.Distribution  `json:"posterior"`
	Leading        domain.Diagnosis        `json:"leading"`
	Confidence     float64                 `json:"confidence"`
	Reason         domain.CompletionReason `json:"reason"`
}

// Trace runs the greedy information-gain strategy for c and records every
// step.
func Trace(e *inference.Engine, policy service.Policy, c Case) (*Path, error) {
	kb := e.Knowledge()
	o, err := newOracle(kb, c)
	if err != nil {
		return nil, err
	}

	d := e.Prior()
	h, err := inference.Entropy(d)
	if err != nil {
		return nil, err
	}
	path := &Path{
		Target:         kb.Diagnosis(o.target),
		InitialEntropy: h,
		Steps:          []Step{},
	}

	asked := make(map[string]struct{}, kb.NumSymptoms())
	for policy.Evaluate(d, len(asked), kb.NumSymptoms()) == domain.CompletionNone {
		next, ok, err := e.NextQuestion(d, asked)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		yes := o.answer(next.Index)
		d, err = e.Update(d, next.Symptom.ID, yes)
		if err != nil {
			return nil, err
		}
		asked[next.Symptom.ID] = struct{}{}

		after, err := inference.Entropy(d)
		if err != nil {
			return nil, err
		}
		path.Steps = append(path.Steps, Step{
			Number:        len(path.Steps) + 1,
			Symptom:       next.Symptom,
			Answer:        yes,
			Gain:          next.Gain,
			EntropyBefore: h,
			EntropyAfter:  after,
		})
		h = after
	}

	leader, confidence := d.Max()
	path.Posterior = d
	path.Leading = kb.Diagnosis(leader)
	path.Confidence = confidence
	path.Reason = policy.Evaluate(d, len(asked), kb.NumSymptoms())
	return path, nil
}
