package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Harshitk-cp/informed/internal/domain"
	"github.com/Harshitk-cp/informed/internal/inference"
	"github.com/Harshitk-cp/informed/internal/service"
)

const (
	DefaultTrials = 100
	DefaultSeed   = 42
)

// CompareOptions tunes the random baseline and the worker count of Compare.
// Trials below one selects DefaultTrials; Workers below one means no limit.
type CompareOptions struct {
	Trials  int
	Seed    uint64
	Workers int
}

// DefaultStrategies returns the greedy strategy followed by its baselines.
func DefaultStrategies(opts CompareOptions) []Strategy {
	trials := opts.Trials
	if trials <= 0 {
		trials = DefaultTrials
	}
	return []Strategy{
		InformationGain{},
		Random{Trials: trials, Seed: opts.Seed},
		Frequency{},
	}
}

// CaseResult holds every strategy's result for one target diagnosis.
type CaseResult struct {
	Target  domain.Diagnosis `json:"target"`
	Results []Result         `json:"results"`
}

// Comparison holds per-case results in strategy order and the mean question
// count of each strategy over all cases.
type Comparison struct {
	Strategies []string     `json:"strategies"`
	Cases      []CaseResult `json:"cases"`
	Averages   []float64    `json:"averages"`
}

// Speedup returns how many times more questions strategy i needs on average
// than strategy j.
func (c *Comparison) Speedup(i, j int) float64 {
	if c.Averages[j] == 0 {
		return 0
	}
	return c.Averages[i] / c.Averages[j]
}

// Compare runs every strategy on every case concurrently. The outcome does
// not depend on scheduling.
func Compare(ctx context.Context, e *inference.Engine, policy service.Policy, cases []Case, strategies []Strategy, opts CompareOptions) (*Comparison, error) {
	kb := e.Knowledge()
	out := &Comparison{
		Strategies: make([]string, len(strategies)),
		Cases:      make([]CaseResult, len(cases)),
		Averages:   make([]float64, len(strategies)),
	}
	for i, s := range strategies {
		out.Strategies[i] = s.Name()
	}
	for i, c := range cases {
		d, err := kb.DiagnosisIndex(c.Diagnosis)
		if err != nil {
			return nil, err
		}
		out.Cases[i] = CaseResult{Target: kb.Diagnosis(d), Results: make([]Result, len(strategies))}
	}

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, c := range cases {
		for j, s := range strategies {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				r, err := s.Run(e, policy, c)
				if err != nil {
					return err
				}
				out.Cases[i].Results[j] = r
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(cases) > 0 {
		for j := range strategies {
			sum := 0.0
			for i := range cases {
				sum += out.Cases[i].Results[j].Mean
			}
			out.Averages[j] = sum / float64(len(cases))
		}
	}
	return out, nil
}
