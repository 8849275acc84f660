// Package stats provides the statistic primitives used by the drift monitor:
// population stability index, error metrics, and Clarke error-grid zones.
package stats

// #region imports
import (
	"errors"
	"math"
)

// #endregion

// #region errors

// ErrNoSamples is returned when a statistic is requested over zero values.
var ErrNoSamples = errors.New("no samples")

// ErrDegenerateReference is returned when a reference distribution cannot
// support binning (zero width or too few bins).
var ErrDegenerateReference = errors.New("degenerate reference distribution")

// #endregion errors

// #region moments

// Mean computes the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrNoSamples
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// StdDev computes the sample standard deviation (n-1 denominator).
func StdDev(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0, ErrNoSamples
	}
	mean, err := Mean(values)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1)), nil
}

// #endregion moments

// #region histogram

// minBinShare floors empty bins so the PSI log ratio stays finite.
const minBinShare = 1e-4

// BinEdges builds bins+1 equal-width edges spanning the reference min..max.
// Edges stay finite so profiles serialize cleanly; BinShares treats the outer
// bins as open-ended, so production values never fall outside.
func BinEdges(reference []float64, bins int) ([]float64, error) {
	if len(reference) == 0 {
		return nil, ErrNoSamples
	}
	if bins < 2 {
		return nil, ErrDegenerateReference
	}
	lo, hi := reference[0], reference[0]
	for _, v := range reference {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return nil, ErrDegenerateReference
	}
	edges := make([]float64, bins+1)
	step := (hi - lo) / float64(bins)
	for i := range edges {
		edges[i] = lo + step*float64(i)
	}
	return edges, nil
}

// BinShares computes the fraction of values in each bin, floored at
// minBinShare. Edges must be ascending with len(edges) = bins+1; the lowest
// and highest bins are open-ended, catching values outside the edge span.
func BinShares(values []float64, edges []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, ErrNoSamples
	}
	if len(edges) < 3 {
		return nil, ErrDegenerateReference
	}
	counts := make([]int, len(edges)-1)
	for _, v := range values {
		idx := len(edges) - 2
		for i := 1; i < len(edges)-1; i++ {
			if v <= edges[i] {
				idx = i - 1
				break
			}
		}
		counts[idx]++
	}
	shares := make([]float64, len(counts))
	for i, c := range counts {
		share := float64(c) / float64(len(values))
		if share < minBinShare {
			share = minBinShare
		}
		shares[i] = share
	}
	return shares, nil
}

// #endregion histogram

// #region psi

// PSI computes the Population Stability Index of values against reference
// bin shares. PSI < 0.1 is stable, 0.1-0.25 moderate shift, > 0.25 severe.
func PSI(refShares []float64, edges []float64, values []float64) (float64, error) {
	if len(refShares) != len(edges)-1 {
		return 0, ErrDegenerateReference
	}
	curShares, err := BinShares(values, edges)
	if err != nil {
		return 0, err
	}
	var psi float64
	for i := range curShares {
		ref := refShares[i]
		if ref < minBinShare {
			ref = minBinShare
		}
		psi += (curShares[i] - ref) * math.Log(curShares[i]/ref)
	}
	return psi, nil
}

// #endregion psi

// #region error-metrics

// RMSE computes the root mean squared error between predictions and truths.
func RMSE(predicted, truth []float64) (float64, error) {
	if len(predicted) == 0 || len(predicted) != len(truth) {
		return 0, ErrNoSamples
	}
	var sum float64
	for i := range predicted {
		d := predicted[i] - truth[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(predicted))), nil
}

// MAE computes the mean absolute error between predictions and truths.
func MAE(predicted, truth []float64) (float64, error) {
	if len(predicted) == 0 || len(predicted) != len(truth) {
		return 0, ErrNoSamples
	}
	var sum float64
	for i := range predicted {
		sum += math.Abs(predicted[i] - truth[i])
	}
	return sum / float64(len(predicted)), nil
}

// #endregion error-metrics

// #region clarke

// ClarkeZone classifies a single glucose prediction into an error-grid zone.
// Zones A and B are clinically acceptable; C, D, E carry escalating risk.
func ClarkeZone(truth, predicted float64) string {
	if truth <= 70 && predicted <= 70 {
		return "A"
	}
	if math.Abs(predicted-truth) <= 0.2*truth {
		return "A"
	}
	if (truth <= 70 && predicted >= 180) || (truth >= 180 && predicted <= 70) {
		return "E"
	}
	if (truth < 70 && predicted > 180) || (truth > 240 && predicted < 70) {
		return "D"
	}
	if truth >= 70 && truth <= 290 && predicted <= 70 {
		return "C"
	}
	if truth >= 70 && truth <= 180 && predicted >= 240 {
		return "C"
	}
	return "B"
}

// ZoneAgreement returns the percentage of predictions in zones A or B.
func ZoneAgreement(predicted, truth []float64) (float64, error) {
	if len(predicted) == 0 || len(predicted) != len(truth) {
		return 0, ErrNoSamples
	}
	ab := 0
	for i := range predicted {
		zone := ClarkeZone(truth[i], predicted[i])
		if zone == "A" || zone == "B" {
			ab++
		}
	}
	return float64(ab) / float64(len(predicted)) * 100, nil
}

// #endregion clarke
