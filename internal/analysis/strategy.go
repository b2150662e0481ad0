package analysis

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/Harshitk-cp/informed/internal/domain"
	"github.com/Harshitk-cp/informed/internal/inference"
	"github.com/Harshitk-cp/informed/internal/knowledge"
	"github.com/Harshitk-cp/informed/internal/service"
)

// Result is the number of questions a strategy needed for one case. Mean
// and Std coincide with the single run for deterministic strategies.
type Result struct {
	Strategy string  `json:"strategy"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Trials   int     `json:"trials"`
}

// Strategy orders questions for a simulated session.
type Strategy interface {
	Name() string
	Run(e *inference.Engine, policy service.Policy, c Case) (Result, error)
}

// InformationGain is the greedy strategy the engine implements.
type InformationGain struct{}

func (InformationGain) Name() string { return "information-gain" }

func (s InformationGain) Run(e *inference.Engine, policy service.Policy, c Case) (Result, error) {
	path, err := Trace(e, policy, c)
	if err != nil {
		return Result{}, err
	}
	return single(s.Name(), len(path.Steps)), nil
}

// Frequency asks the symptoms that are common across all diagnoses first.
type Frequency struct{}

func (Frequency) Name() string { return "frequency" }

func (s Frequency) Run(e *inference.Engine, policy service.Policy, c Case) (Result, error) {
	o, err := newOracle(e.Knowledge(), c)
	if err != nil {
		return Result{}, err
	}
	n, err := askInOrder(e, policy, o, FrequencyOrder(e.Knowledge()))
	if err != nil {
		return Result{}, err
	}
	return single(s.Name(), n), nil
}

// FrequencyOrder returns symptom positions by mean conditional probability
// over the diagnoses, highest first. Equal means keep catalog order.
func FrequencyOrder(kb *knowledge.Base) []int {
	means := make([]float64, kb.NumSymptoms())
	for s := range means {
		sum := 0.0
		for d := 0; d < kb.NumDiagnoses(); d++ {
			sum += kb.At(d, s)
		}
		means[s] = sum / float64(kb.NumDiagnoses())
	}

	order := make([]int, len(means))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return means[order[i]] > means[order[j]]
	})
	return order
}

// Random asks the symptoms in a shuffled order and reports the mean and
// population standard deviation over Trials shuffles. Runs are reproducible
// for a given Seed and case.
type Random struct {
	Trials int
	Seed   uint64
}

func (Random) Name() string { return "random" }

func (s Random) Run(e *inference.Engine, policy service.Policy, c Case) (Result, error) {
	kb := e.Knowledge()
	o, err := newOracle(kb, c)
	if err != nil {
		return Result{}, err
	}

	trials := s.Trials
	if trials <= 0 {
		trials = 1
	}
	h := fnv.New64a()
	h.Write([]byte(c.Diagnosis))
	rng := rand.New(rand.NewPCG(s.Seed, h.Sum64()))

	order := make([]int, kb.NumSymptoms())
	counts := make([]float64, trials)
	for t := range counts {
		for i := range order {
			order[i] = i
		}
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		n, err := askInOrder(e, policy, o, order)
		if err != nil {
			return Result{}, err
		}
		counts[t] = float64(n)
	}

	mean, std := meanStd(counts)
	return Result{Strategy: s.Name(), Mean: mean, Std: std, Trials: trials}, nil
}

// askInOrder walks a fixed question order until the policy stops the session
// and returns the number of questions asked.
func askInOrder(e *inference.Engine, policy service.Policy, o *oracle, order []int) (int, error) {
	kb := e.Knowledge()
	d := e.Prior()
	asked := 0
	for _, s := range order {
		if policy.Evaluate(d, asked, kb.NumSymptoms()) != domain.CompletionNone {
			break
		}
		var err error
		d, err = e.Update(d, kb.Symptom(s).ID, o.answer(s))
		if err != nil {
			return 0, err
		}
		asked++
	}
	return asked, nil
}

func single(name string, n int) Result {
	return Result{Strategy: name, Mean: float64(n), Trials: 1}
}

func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	ss := 0.0
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(ss / float64(len(xs)))
}
