package analysis

import (
	"fmt"

	"github.com/Harshitk-cp/informed/internal/knowledge"
)

// Case is a simulated patient. Symptoms listed in Overrides are answered as
// given; every other symptom gets the answer the target diagnosis most likely
// produces (yes when its conditional probability exceeds one half).
type Case struct {
	Diagnosis string          `json:"diagnosis" yaml:"diagnosis"`
	Overrides map[string]bool `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// DefaultCases returns the hallmark presentation of four headache types.
func DefaultCases() []Case {
	return []Case{
		{Diagnosis: "migraine", Overrides: map[string]bool{
			"S1": true, "S3": true, "S4": true, "S7": true, "S8": true,
		}},
		{Diagnosis: "trigeminal-neuralgia", Overrides: map[string]bool{
			"S28": true, "S26": true, "S27": true, "S2": true,
		}},
		{Diagnosis: "tension-type", Overrides: map[string]bool{
			"S17": true, "S18": true, "S19": true, "S34": true,
		}},
		{Diagnosis: "cluster", Overrides: map[string]bool{
			"S11": true, "S6": true, "S5": true, "S12": true,
		}},
	}
}

// oracle answers questions for one case against a knowledge base.
type oracle struct {
	kb        *knowledge.Base
	target    int
	overrides map[string]bool
}

func newOracle(kb *knowledge.Base, c Case) (*oracle, error) {
	target, err := kb.DiagnosisIndex(c.Diagnosis)
	if err != nil {
		return nil, err
	}
	for id := range c.Overrides {
		if _, err := kb.SymptomIndex(id); err != nil {
			return nil, fmt.Errorf("override: %w", err)
		}
	}
	return &oracle{kb: kb, target: target, overrides: c.Overrides}, nil
}

func (o *oracle) answer(s int) bool {
	if yes, ok := o.overrides[o.kb.Symptom(s).ID]; ok {
		return yes
	}
	return o.kb.At(o.target, s) > 0.5
}
