package inference

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Harshitk-cp/informed/internal/domain"
	"github.com/Harshitk-cp/informed/internal/knowledge"
)

// Observer is told about numeric conditions that indicate an inconsistent
// knowledge base. Implementations must be safe for concurrent use.
type Observer interface {
	// DegenerateUpdate is called when an answer has zero total probability
	// under the current posterior and the update fell back to uniform.
	DegenerateUpdate(symptomID string)
	// NegativeGain is called when a computed information gain is below
	// -Tolerance.
	NegativeGain(symptomID string, gain float64)
}

type nopObserver struct{}

func (nopObserver) DegenerateUpdate(string)      {}
func (nopObserver) NegativeGain(string, float64) {}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for data-quality warnings. The default discards.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver reports degenerate updates and negative gains to o.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithParallelism evaluates candidate gains on up to n goroutines during
// selection. Results are identical to sequential evaluation.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// Engine holds no session state. Every method is a pure function of its
// arguments and the read-only knowledge base, so one Engine can serve any
// number of concurrent sessions.
type Engine struct {
	kb       *knowledge.Base
	logger   *zap.Logger
	observer Observer
	workers  int
}

// New returns an engine over kb.
func New(kb *knowledge.Base, opts ...Option) *Engine {
	e := &Engine{
		kb:       kb,
		logger:   zap.NewNop(),
		observer: nopObserver{},
		workers:  1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Knowledge returns the knowledge base the engine reads.
func (e *Engine) Knowledge() *knowledge.Base {
	return e.kb
}

// Prior returns the uniform starting distribution over the diagnosis catalog.
func (e *Engine) Prior() Distribution {
	return Uniform(e.kb.NumDiagnoses())
}

// Candidate is a symptom question together with its information gain.
type Candidate struct {
	Symptom domain.Symptom `json:"symptom"`
	Index   int            `json:"index"`
	Gain    float64        `json:"gain"`
}

func (e *Engine) check(d Distribution) error {
	if len(d) != e.kb.NumDiagnoses() {
		return fmt.Errorf("%w: %d entries, want %d", ErrMalformedDistribution, len(d), e.kb.NumDiagnoses())
	}
	return Validate(d)
}

// Update folds the answer to symptomID into d by Bayes' rule and returns a
// new distribution. d is never modified.
func (e *Engine) Update(d Distribution, symptomID string, yes bool) (Distribution, error) {
	s, err := e.kb.SymptomIndex(symptomID)
	if err != nil {
		return nil, err
	}
	if err := e.check(d); err != nil {
		return nil, err
	}
	return e.update(d, s, yes), nil
}

func (e *Engine) update(d Distribution, s int, yes bool) Distribution {
	post := make(Distribution, len(d))
	total := 0.0
	for i, prior := range d {
		likelihood := e.kb.At(i, s)
		if !yes {
			likelihood = 1 - likelihood
		}
		post[i] = likelihood * max(prior, 0)
		total += post[i]
	}

	if total == 0 {
		symptomID := e.kb.Symptom(s).ID
		e.logger.Warn("degenerate bayesian update, resetting to uniform",
			zap.String("symptom_id", symptomID),
			zap.Bool("answer", yes))
		e.observer.DegenerateUpdate(symptomID)
		return Uniform(len(d))
	}

	for i := range post {
		post[i] /= total
	}
	return post
}

// AnswerProbability returns P(symptom = yes) under d by total probability.
func (e *Engine) AnswerProbability(d Distribution, symptomID string) (float64, error) {
	s, err := e.kb.SymptomIndex(symptomID)
	if err != nil {
		return 0, err
	}
	if err := e.check(d); err != nil {
		return 0, err
	}
	return e.pYes(d, s), nil
}

func (e *Engine) pYes(d Distribution, s int) float64 {
	yes, _ := e.branches(d, s)
	return yes
}

// branches returns the unnormalised mass of the yes and no answers. Each is
// the exact total update divides by, so a positive branch never degenerates.
func (e *Engine) branches(d Distribution, s int) (yes, no float64) {
	for i, prior := range d {
		p := e.kb.At(i, s)
		yes += p * max(prior, 0)
		no += (1 - p) * max(prior, 0)
	}
	return yes, no
}

// InformationGain returns the expected entropy reduction, in bits, from
// asking symptomID when the current belief is d.
func (e *Engine) InformationGain(d Distribution, symptomID string) (float64, error) {
	s, err := e.kb.SymptomIndex(symptomID)
	if err != nil {
		return 0, err
	}
	if err := e.check(d); err != nil {
		return 0, err
	}
	return e.gain(d, s), nil
}

func (e *Engine) gain(d Distribution, s int) float64 {
	current := entropy(d)
	pYes, pNo := e.branches(d, s)

	// A branch that cannot happen contributes nothing and is not evaluated.
	expected := 0.0
	if pYes > 0 {
		expected += pYes * entropy(e.update(d, s, true))
	}
	if pNo > 0 {
		expected += pNo * entropy(e.update(d, s, false))
	}

	g := current - expected
	if g < -Tolerance {
		symptomID := e.kb.Symptom(s).ID
		e.logger.Warn("negative information gain",
			zap.String("symptom_id", symptomID),
			zap.Float64("gain", g))
		e.observer.NegativeGain(symptomID, g)
	}
	return g
}

// unasked resolves the asked set and returns the catalog positions of the
// symptoms not in it, in catalog order.
func (e *Engine) unasked(asked map[string]struct{}) ([]int, error) {
	skip := make([]bool, e.kb.NumSymptoms())
	for id := range asked {
		s, err := e.kb.SymptomIndex(id)
		if err != nil {
			return nil, fmt.Errorf("asked set: %w", err)
		}
		skip[s] = true
	}
	out := make([]int, 0, len(skip))
	for s, done := range skip {
		if !done {
			out = append(out, s)
		}
	}
	return out, nil
}

// gains evaluates the information gain of each candidate position. The
// result is indexed like candidates.
func (e *Engine) gains(d Distribution, candidates []int) []float64 {
	out := make([]float64, len(candidates))
	if e.workers <= 1 || len(candidates) < 2 {
		for i, s := range candidates {
			out[i] = e.gain(d, s)
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, s := range candidates {
		g.Go(func() error {
			out[i] = e.gain(d, s)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// NextQuestion returns the unasked symptom with the largest information gain.
// Ties go to the symptom earliest in the catalog. ok is false when every
// symptom has already been asked.
func (e *Engine) NextQuestion(d Distribution, asked map[string]struct{}) (c Candidate, ok bool, err error) {
	if err := e.check(d); err != nil {
		return Candidate{}, false, err
	}
	candidates, err := e.unasked(asked)
	if err != nil {
		return Candidate{}, false, err
	}
	if len(candidates) == 0 {
		return Candidate{}, false, nil
	}

	gains := e.gains(d, candidates)
	best := 0
	for i := 1; i < len(candidates); i++ {
		if gains[i] > gains[best] {
			best = i
		}
	}

	s := candidates[best]
	return Candidate{Symptom: e.kb.Symptom(s), Index: s, Gain: gains[best]}, true, nil
}

// Rank returns every unasked symptom with its gain, best first. Equal gains
// keep catalog order, so Rank(d, asked)[0] matches NextQuestion.
func (e *Engine) Rank(d Distribution, asked map[string]struct{}) ([]Candidate, error) {
	if err := e.check(d); err != nil {
		return nil, err
	}
	candidates, err := e.unasked(asked)
	if err != nil {
		return nil, err
	}

	gains := e.gains(d, candidates)
	out := make([]Candidate, len(candidates))
	for i, s := range candidates {
		out[i] = Candidate{Symptom: e.kb.Symptom(s), Index: s, Gain: gains[i]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Gain > out[j].Gain
	})
	return out, nil
}
