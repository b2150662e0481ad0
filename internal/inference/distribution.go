package inference

import (
	"errors"
	"fmt"
	"math"
)

// Tolerance is the floating-point slack allowed when checking that a
// distribution sums to one, that entries are non-negative, and that an
// information gain is non-negative.
const Tolerance = 1e-9

// ErrMalformedDistribution is returned for a distribution with the wrong
// length, a non-finite or negative entry, or a sum away from one.
var ErrMalformedDistribution = errors.New("malformed distribution")

// Distribution is a probability vector over diagnoses in catalog order.
type Distribution []float64

// Uniform returns the distribution assigning 1/n to each of n outcomes.
func Uniform(n int) Distribution {
	d := make(Distribution, n)
	for i := range d {
		d[i] = 1.0 / float64(n)
	}
	return d
}

// Clone returns a copy of d.
func (d Distribution) Clone() Distribution {
	return append(Distribution(nil), d...)
}

// Max returns the position and value of the largest entry. Ties resolve to
// the lowest position. Max of an empty distribution is (-1, 0).
func (d Distribution) Max() (int, float64) {
	best, bestP := -1, 0.0
	for i, p := range d {
		if best < 0 || p > bestP {
			best, bestP = i, p
		}
	}
	return best, bestP
}

// Validate checks that d is a usable probability distribution: non-empty,
// finite, no entry below -Tolerance, and a sum within Tolerance of one.
func Validate(d Distribution) error {
	if len(d) == 0 {
		return fmt.Errorf("%w: empty", ErrMalformedDistribution)
	}
	sum := 0.0
	for i, p := range d {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: entry %d is %v", ErrMalformedDistribution, i, p)
		}
		if p < -Tolerance {
			return fmt.Errorf("%w: entry %d is negative (%v)", ErrMalformedDistribution, i, p)
		}
		sum += p
	}
	if math.Abs(sum-1) > Tolerance {
		return fmt.Errorf("%w: sums to %v", ErrMalformedDistribution, sum)
	}
	return nil
}

// Entropy returns the Shannon entropy of d in bits. Zero entries contribute
// nothing. d is rejected with ErrMalformedDistribution if Validate fails.
func Entropy(d Distribution) (float64, error) {
	if err := Validate(d); err != nil {
		return 0, err
	}
	return entropy(d), nil
}

func entropy(d Distribution) float64 {
	h := 0.0
	for _, p := range d {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}
