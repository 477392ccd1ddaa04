// Package stats summarises small samples of measurements, such as the
// per-iteration throughput of a benchmark.
package stats

import (
	"math"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"

	"github.com/ossf/entropy-analysis/internal/utils"
)

// RealNumber is any integer or floating point type.
type RealNumber interface {
	constraints.Integer | constraints.Float
}

// Summary describes a sample. Every field is finite: an empty sample gives
// the zero Summary and a single observation has zero variance.
type Summary struct {
	Size     int     `json:"size"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Median   float64 `json:"median"`
	Max      float64 `json:"max"`
}

// StdDev returns the square root of the variance.
func (s Summary) StdDev() float64 {
	return math.Sqrt(s.Variance)
}

// Equals reports whether s and other have the same size and all statistics
// agree to within absTol.
func (s Summary) Equals(other Summary, absTol float64) bool {
	if s.Size != other.Size {
		return false
	}
	a := [...]float64{s.Mean, s.Variance, s.Min, s.Median, s.Max}
	b := [...]float64{other.Mean, other.Variance, other.Min, other.Median, other.Max}
	for i := range a {
		if !utils.FloatEquals(a[i], b[i], absTol) {
			return false
		}
	}
	return true
}

func mean[T RealNumber](sample []T) float64 {
	sum := 0.0
	for _, x := range sample {
		sum += float64(x)
	}
	return sum / float64(len(sample))
}

// variance is the bias-corrected sample variance around m.
func variance[T RealNumber](sample []T, m float64) float64 {
	if len(sample) < 2 {
		return 0
	}
	sumSquares := 0.0
	for _, x := range sample {
		d := float64(x) - m
		sumSquares += d * d
	}
	return sumSquares / float64(len(sample)-1)
}

// median of an already sorted sample; the mean of the middle pair for even
// sizes.
func median[T RealNumber](sorted []T) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return (float64(sorted[n/2-1]) + float64(sorted[n/2])) / 2
}

// Summarise computes the Summary of sample without modifying it.
func Summarise[T RealNumber](sample []T) Summary {
	if len(sample) == 0 {
		return Summary{}
	}
	sorted := slices.Clone(sample)
	slices.Sort(sorted)

	m := mean(sample)
	return Summary{
		Size:     len(sample),
		Mean:     m,
		Variance: variance(sample, m),
		Min:      float64(sorted[0]),
		Median:   median(sorted),
		Max:      float64(sorted[len(sorted)-1]),
	}
}
