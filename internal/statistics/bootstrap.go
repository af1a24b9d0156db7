// Package statistics holds the small numeric helpers used to annotate
// evaluation comparisons.
package statistics

import (
	"math"
	"math/rand"
	"sort"
)

// ConfidenceInterval is a percentile bootstrap interval around a sample mean.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// DefaultBootstrapIterations is the number of resamples drawn per interval.
const DefaultBootstrapIterations = 10000

// BootstrapCI resamples samples with replacement and returns the percentile
// interval of the resampled means at confidenceLevel (e.g. 0.95). The same
// seed always yields the same interval. With fewer than two samples the
// interval collapses onto the mean and no resampling happens.
func BootstrapCI(samples []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	m := Mean(samples)
	n := len(samples)
	if n < 2 {
		return ConfidenceInterval{
			Lower:           m,
			Upper:           m,
			Mean:            m,
			ConfidenceLevel: confidenceLevel,
		}
	}

	rng := rand.New(rand.NewSource(seed))
	iters := DefaultBootstrapIterations

	means := make([]float64, iters)
	resample := make([]float64, n)
	for i := range iters {
		for j := range n {
			resample[j] = samples[rng.Intn(n)]
		}
		means[i] = Mean(resample)
	}
	sort.Float64s(means)

	alpha := 1.0 - confidenceLevel
	lo := int(math.Floor(alpha / 2.0 * float64(iters)))
	hi := int(math.Floor((1.0 - alpha/2.0) * float64(iters)))
	if hi >= iters {
		hi = iters - 1
	}

	return ConfidenceInterval{
		Lower:           means[lo],
		Upper:           means[hi],
		Mean:            m,
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   iters,
	}
}

// IsSignificant reports whether the interval excludes zero.
func IsSignificant(ci ConfidenceInterval) bool {
	return ci.Lower > 0 || ci.Upper < 0
}

// NormalizedGain is Hake's gain for rates in [0, 1]:
//
//	g = (post - pre) / (1 - pre)
//
// A baseline already at 1.0 has no headroom and yields 0; a candidate that
// reaches 1.0 yields 1. Regressions produce negative gains.
func NormalizedGain(pre, post float64) float64 {
	if pre >= 1.0 {
		return 0.0
	}
	if post >= 1.0 {
		return 1.0
	}
	if math.Abs(post-pre) < 1e-12 {
		return 0.0
	}
	return (post - pre) / (1.0 - pre)
}

// Mean is the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
