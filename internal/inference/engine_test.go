package inference

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshitk-cp/informed/internal/domain"
	"github.com/Harshitk-cp/informed/internal/knowledge"
)

type recordingObserver struct {
	mu          sync.Mutex
	degenerate  []string
	negativeIDs []string
}

func (o *recordingObserver) DegenerateUpdate(symptomID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.degenerate = append(o.degenerate, symptomID)
}

func (o *recordingObserver) NegativeGain(symptomID string, gain float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.negativeIDs = append(o.negativeIDs, symptomID)
}

func newReferenceEngine(t *testing.T, opts ...Option) (*Engine, *recordingObserver) {
	t.Helper()
	obs := &recordingObserver{}
	return New(knowledge.Reference(), append([]Option{WithObserver(obs)}, opts...)...), obs
}

// pinpointBase has a symptom "x" that only diagnosis "a" can produce and a
// symptom "always" every diagnosis produces.
func pinpointBase(t *testing.T) *knowledge.Base {
	t.Helper()
	kb, err := knowledge.New(
		[]domain.Diagnosis{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}, {ID: "d", Name: "D"}},
		[]domain.Symptom{{ID: "x", Question: "X?"}, {ID: "always", Question: "Always?"}, {ID: "y", Question: "Y?"}},
		[][]float64{
			{1.0, 1.0, 0.5},
			{0.0, 1.0, 0.5},
			{0.0, 1.0, 0.5},
			{0.0, 1.0, 0.5},
		},
	)
	require.NoError(t, err)
	return kb
}

func TestUpdatePinpointsDiagnosis(t *testing.T) {
	obs := &recordingObserver{}
	e := New(pinpointBase(t), WithObserver(obs))

	post, err := e.Update(e.Prior(), "x", true)
	require.NoError(t, err)
	assert.Equal(t, Distribution{1, 0, 0, 0}, post)

	h, err := Entropy(post)
	require.NoError(t, err)
	assert.Equal(t, 0.0, h)
	assert.Empty(t, obs.degenerate)
}

func TestUpdateDegenerateFallsBackToUniform(t *testing.T) {
	obs := &recordingObserver{}
	e := New(pinpointBase(t), WithObserver(obs))

	post, err := e.Update(Distribution{0.1, 0.2, 0.3, 0.4}, "always", false)
	require.NoError(t, err)
	assert.Equal(t, Uniform(4), post)
	assert.Equal(t, []string{"always"}, obs.degenerate)
}

func TestUpdateDoesNotMutateInput(t *testing.T) {
	e, _ := newReferenceEngine(t)
	prior := e.Prior()
	before := prior.Clone()

	post, err := e.Update(prior, "S28", true)
	require.NoError(t, err)
	assert.Equal(t, before, prior)
	assert.NotEqual(t, prior, post)

	post[0] = 42
	assert.Equal(t, before, prior)
}

func TestUpdatePreservesDistribution(t *testing.T) {
	e, obs := newReferenceEngine(t)
	r := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 50; i++ {
		d := randomDistribution(r, 8)
		for _, s := range e.Knowledge().Symptoms() {
			for _, yes := range []bool{true, false} {
				post, err := e.Update(d, s.ID, yes)
				require.NoError(t, err)
				assert.NoError(t, Validate(post))
			}
		}
	}
	assert.Empty(t, obs.degenerate, "reference knowledge base must never produce a degenerate update")
}

func TestUpdateErrors(t *testing.T) {
	e, _ := newReferenceEngine(t)

	_, err := e.Update(e.Prior(), "S0", true)
	assert.True(t, errors.Is(err, knowledge.ErrUnknownSymptom))

	_, err = e.Update(Uniform(7), "S1", true)
	assert.True(t, errors.Is(err, ErrMalformedDistribution))

	_, err = e.Update(Distribution{1, 1, 0, 0, 0, 0, 0, 0}, "S1", true)
	assert.True(t, errors.Is(err, ErrMalformedDistribution))
}

// Mixing the yes and no posteriors by the answer probabilities must give
// back the prior (law of total probability).
func TestUpdateTotalProbabilityRoundTrip(t *testing.T) {
	e, _ := newReferenceEngine(t)
	r := rand.New(rand.NewPCG(3, 5))

	priors := []Distribution{e.Prior()}
	for i := 0; i < 20; i++ {
		priors = append(priors, randomDistribution(r, 8))
	}

	for _, p := range priors {
		for _, s := range e.Knowledge().Symptoms() {
			pYes, err := e.AnswerProbability(p, s.ID)
			require.NoError(t, err)
			yes, err := e.Update(p, s.ID, true)
			require.NoError(t, err)
			no, err := e.Update(p, s.ID, false)
			require.NoError(t, err)

			for i := range p {
				mixed := pYes*yes[i] + (1-pYes)*no[i]
				assert.InDelta(t, p[i], mixed, 1e-12, "symptom %s diagnosis %d", s.ID, i)
			}
		}
	}
}

func TestInformationGainNonNegative(t *testing.T) {
	e, obs := newReferenceEngine(t)
	r := rand.New(rand.NewPCG(13, 17))

	priors := []Distribution{e.Prior()}
	for i := 0; i < 30; i++ {
		priors = append(priors, randomDistribution(r, 8))
	}

	for _, p := range priors {
		for _, s := range e.Knowledge().Symptoms() {
			g, err := e.InformationGain(p, s.ID)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, g, -Tolerance, "symptom %s", s.ID)
		}
	}
	assert.Empty(t, obs.negativeIDs)
}

func TestInformationGainMatchesDefinition(t *testing.T) {
	e, _ := newReferenceEngine(t)
	p := Distribution{0.3, 0.05, 0.1, 0.2, 0.05, 0.1, 0.15, 0.05}

	g, err := e.InformationGain(p, "S17")
	require.NoError(t, err)

	hCur, _ := Entropy(p)
	pYes, _ := e.AnswerProbability(p, "S17")
	yes, _ := e.Update(p, "S17", true)
	no, _ := e.Update(p, "S17", false)
	hYes, _ := Entropy(yes)
	hNo, _ := Entropy(no)

	assert.InDelta(t, hCur-(pYes*hYes+(1-pYes)*hNo), g, 1e-12)
}

func TestInformationGainCertainAnswer(t *testing.T) {
	obs := &recordingObserver{}
	e := New(pinpointBase(t), WithObserver(obs))

	// Every diagnosis answers yes, so the question can teach nothing and the
	// impossible "no" branch must not be evaluated.
	g, err := e.InformationGain(e.Prior(), "always")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, g, 1e-15)
	assert.Empty(t, obs.degenerate)

	// From a one-hot belief nothing is left to learn.
	g, err = e.InformationGain(Distribution{0, 0, 1, 0}, "x")
	require.NoError(t, err)
	assert.Equal(t, 0.0, g)
}

func TestInformationGainCertainAnswerUnderSlackPrior(t *testing.T) {
	kb, err := knowledge.New(
		[]domain.Diagnosis{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
		[]domain.Symptom{{ID: "always", Question: "Always?"}, {ID: "y", Question: "Y?"}},
		[][]float64{
			{1.0, 0.7},
			{1.0, 0.2},
		},
	)
	require.NoError(t, err)
	obs := &recordingObserver{}
	e := New(kb, WithObserver(obs))

	// Sums to 1-5e-10, inside Tolerance, so 1-P(yes) is positive while the
	// "no" branch carries no mass at all.
	d := Distribution{0.3, 0.7 - 5e-10}
	require.NoError(t, Validate(d))

	g, err := e.InformationGain(d, "always")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, g, 1e-9)

	c, ok, err := e.NextQuestion(d, nil)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "y", c.Symptom.ID)
	assert.Empty(t, obs.degenerate)
}

func TestInformationGainIsDeterministic(t *testing.T) {
	e, _ := newReferenceEngine(t)
	p := Distribution{0.05, 0.1, 0.15, 0.2, 0.25, 0.1, 0.1, 0.05}

	for _, s := range e.Knowledge().Symptoms() {
		g1, err := e.InformationGain(p, s.ID)
		require.NoError(t, err)
		g2, err := e.InformationGain(p, s.ID)
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(g1), math.Float64bits(g2), "symptom %s", s.ID)
	}
}

func TestNextQuestionFromUniformPrior(t *testing.T) {
	e, _ := newReferenceEngine(t)
	prior := e.Prior()

	c, ok, err := e.NextQuestion(prior, nil)
	require.NoError(t, err)
	require.True(t, ok)

	// Exhaustive reference: first symptom with the globally maximal gain.
	bestID, bestGain := "", math.Inf(-1)
	for _, s := range e.Knowledge().Symptoms() {
		g, err := e.InformationGain(prior, s.ID)
		require.NoError(t, err)
		if g > bestGain {
			bestID, bestGain = s.ID, g
		}
	}

	assert.Equal(t, bestID, c.Symptom.ID)
	assert.Equal(t, bestGain, c.Gain)
	assert.Equal(t, "S28", c.Symptom.ID)
	assert.Equal(t, 27, c.Index)
	assert.InDelta(t, 0.40656, c.Gain, 1e-4)
	assert.Equal(t, "Does the pain last only seconds to 2 minutes per episode?", c.Symptom.Question)
}

func TestNextQuestionTieBreaksByCatalogOrder(t *testing.T) {
	kb, err := knowledge.New(
		[]domain.Diagnosis{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
		[]domain.Symptom{
			{ID: "weak", Question: "Weak?"},
			{ID: "first", Question: "First?"},
			{ID: "second", Question: "Second?"},
		},
		[][]float64{
			{0.5, 0.9, 0.9},
			{0.5, 0.1, 0.1},
		},
	)
	require.NoError(t, err)

	for _, workers := range []int{1, 3} {
		e := New(kb, WithParallelism(workers))
		c, ok, err := e.NextQuestion(e.Prior(), nil)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "first", c.Symptom.ID)

		c, ok, err = e.NextQuestion(e.Prior(), map[string]struct{}{"first": {}})
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "second", c.Symptom.ID)
	}
}

func TestNextQuestionNeverRepeats(t *testing.T) {
	e, _ := newReferenceEngine(t)
	prior := e.Prior()
	asked := map[string]struct{}{}

	for i := 0; i < e.Knowledge().NumSymptoms(); i++ {
		c, ok, err := e.NextQuestion(prior, asked)
		require.NoError(t, err)
		require.True(t, ok)
		_, seen := asked[c.Symptom.ID]
		require.False(t, seen, "returned already asked symptom %s", c.Symptom.ID)
		asked[c.Symptom.ID] = struct{}{}
	}

	_, ok, err := e.NextQuestion(prior, asked)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNextQuestionGainsDoNotIncreaseWithoutNewEvidence(t *testing.T) {
	e, _ := newReferenceEngine(t)
	prior := e.Prior()
	asked := map[string]struct{}{}

	last := math.Inf(1)
	for i := 0; i < e.Knowledge().NumSymptoms(); i++ {
		c, ok, err := e.NextQuestion(prior, asked)
		require.NoError(t, err)
		require.True(t, ok)
		assert.LessOrEqual(t, c.Gain, last)
		last = c.Gain
		asked[c.Symptom.ID] = struct{}{}
	}
}

func TestNextQuestionErrors(t *testing.T) {
	e, _ := newReferenceEngine(t)

	_, _, err := e.NextQuestion(e.Prior(), map[string]struct{}{"S404": {}})
	assert.True(t, errors.Is(err, knowledge.ErrUnknownSymptom))

	_, _, err = e.NextQuestion(Distribution{0.5, 0.5}, nil)
	assert.True(t, errors.Is(err, ErrMalformedDistribution))
}

func TestRankMatchesNextQuestion(t *testing.T) {
	e, _ := newReferenceEngine(t)
	prior := e.Prior()

	ranked, err := e.Rank(prior, map[string]struct{}{"S28": {}})
	require.NoError(t, err)
	require.Len(t, ranked, 35)

	c, ok, err := e.NextQuestion(prior, map[string]struct{}{"S28": {}})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, c, ranked[0])
	assert.Equal(t, "S11", ranked[0].Symptom.ID)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Gain, ranked[i].Gain)
	}
	assert.Equal(t, "S9", ranked[len(ranked)-1].Symptom.ID)
}

func TestParallelSelectionMatchesSequential(t *testing.T) {
	seq, _ := newReferenceEngine(t)
	par, _ := newReferenceEngine(t, WithParallelism(8))
	r := rand.New(rand.NewPCG(21, 23))

	for i := 0; i < 10; i++ {
		d := randomDistribution(r, 8)
		asked := map[string]struct{}{"S1": {}, "S28": {}}

		want, err := seq.Rank(d, asked)
		require.NoError(t, err)
		got, err := par.Rank(d, asked)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("parallel rank differs (-seq +par):\n%s", diff)
		}

		c1, _, err := seq.NextQuestion(d, asked)
		require.NoError(t, err)
		c2, _, err := par.NextQuestion(d, asked)
		require.NoError(t, err)
		assert.Equal(t, c1, c2)
	}
}

// Answering each selected question the way the target diagnosis most likely
// would drives the posterior past 0.90 well before the catalog runs out.
func TestGreedySessionsConverge(t *testing.T) {
	e, obs := newReferenceEngine(t)
	kb := e.Knowledge()

	want := map[string]int{
		"migraine":             8,
		"tension-type":         8,
		"cluster":              3,
		"sinus":                4,
		"medication-overuse":   10,
		"cervicogenic":         7,
		"trigeminal-neuralgia": 2,
		"hypertensive":         8,
	}

	for _, diag := range kb.Diagnoses() {
		t.Run(diag.ID, func(t *testing.T) {
			target, err := kb.DiagnosisIndex(diag.ID)
			require.NoError(t, err)

			p := e.Prior()
			asked := map[string]struct{}{}
			for {
				if _, top := p.Max(); top >= 0.90 {
					break
				}
				c, ok, err := e.NextQuestion(p, asked)
				require.NoError(t, err)
				require.True(t, ok, "ran out of questions")

				yes := kb.At(target, c.Index) > 0.5
				p, err = e.Update(p, c.Symptom.ID, yes)
				require.NoError(t, err)
				asked[c.Symptom.ID] = struct{}{}
			}

			leader, _ := p.Max()
			assert.Equal(t, target, leader)
			assert.Equal(t, want[diag.ID], len(asked))
			assert.LessOrEqual(t, len(asked), 10)
		})
	}
	assert.Empty(t, obs.degenerate)
	assert.Empty(t, obs.negativeIDs)
}
