// Package rank maps continuous probabilities into ordinal decile tiers.
package rank

import (
	"math"

	"time-to-shop/internal/pipeline"
)

// Decile maps a probability to one of 10 fixed-width bins over [0,1]:
// decile 1 covers [0.9, 1.0], decile 10 covers [0.0, 0.1). Bins are
// left-closed, so a probability exactly on a 0.1 multiple takes the higher
// bin's decile number (0.9 -> 1, 0.1 -> 9).
//
// Fixed-width binning keeps decile labels stable across runs: "decile 1"
// means the same probability range in every scoring cycle, regardless of
// the run's population.
//
// Out-of-range or non-finite input violates the predictor's contract and
// returns an InvariantError; it is never silently clamped.
func Decile(p float64) (int, error) {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, &pipeline.InvariantError{Reason: "probability is not a finite number"}
	}
	if p < 0 || p > 1 {
		return 0, &pipeline.InvariantError{Reason: "probability outside [0,1]"}
	}
	// Find the highest bin edge k/10 that p reaches. Comparing against the
	// edges directly keeps boundary behavior exact; p == 1.0 lands in the
	// top bin without a separate clamp.
	k := 9
	for k > 0 && p < float64(k)/10 {
		k--
	}
	return 10 - k, nil
}

// Rank maps each probability to its decile. Output length equals input
// length and row order is preserved. Identical probabilities always get
// identical deciles; ties are expected and acceptable.
func Rank(probabilities []float64) ([]int, error) {
	deciles := make([]int, len(probabilities))
	for i, p := range probabilities {
		d, err := Decile(p)
		if err != nil {
			return nil, err
		}
		deciles[i] = d
	}
	return deciles, nil
}
