/*
Package randtest implements five statistical tests of randomness modelled on
the NIST SP 800-22 battery: frequency (monobit), runs, longest run of ones,
chi-square byte uniformity and the serial two-bit test.

Each test maps a byte sample to a p-value in [0, 1]. A p-value of at least
Threshold means the sample is consistent with uniform randomness at the 1%
significance level. Samples a test cannot be applied to (too short, or too
biased for the runs test) get a p-value of 0, which counts as a failure, so
callers can aggregate results without special cases.

Bits are read most significant first within each byte.
*/
package randtest

import (
	"math"

	"github.com/ossf/entropy-analysis/internal/bitstats"
	"github.com/ossf/entropy-analysis/internal/specialfunc"
)

// Threshold is the significance level: p-values below it reject randomness.
const Threshold = 0.01

// FrequencyTest checks that ones and zeros are about equally common.
//
// With S = #ones - #zeros over all n bits, the statistic is |S|/sqrt(n) and
// the p-value is erfc(|S| / sqrt(2n)). An empty sample gives 0.
func FrequencyTest(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	bits := bitstats.NewBitStream(data)
	n := float64(bits.Len())
	sum := float64(2*bits.Ones()) - n
	sObs := math.Abs(sum) / math.Sqrt(n)
	return specialfunc.Erfc(sObs / math.Sqrt2)
}

// RunsTest checks that the number of runs (maximal blocks of identical bits)
// matches what a random sequence with the same proportion of ones would have.
//
// The test only applies when the proportion of ones pi satisfies
// |pi - 0.5| < 2/sqrt(n); otherwise, and for empty input, it returns 0.
func RunsTest(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	bits := bitstats.NewBitStream(data)
	n := float64(bits.Len())
	pi := float64(bits.Ones()) / n

	if math.Abs(pi-0.5) >= 2/math.Sqrt(n) {
		return 0
	}

	vObs := float64(bits.Runs())
	numerator := math.Abs(vObs - 2*n*pi*(1-pi))
	denominator := 2 * math.Sqrt(2*n) * pi * (1 - pi)
	if denominator == 0 {
		return 0
	}
	return specialfunc.Erfc(numerator / (denominator * math.Sqrt2))
}

// ChiSquareTest checks that byte values are uniformly distributed, comparing
// the chi-square statistic over all 256 values against the chi-square
// distribution with 255 degrees of freedom. An empty sample gives 0.
func ChiSquareTest(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	return specialfunc.ChiSquareSurvival(bitstats.Count(data).ChiSquare(), 255)
}

// SerialTest checks that the four overlapping two-bit patterns 00, 01, 10 and
// 11 are equally common. Over n bits there are n-1 windows, each pattern is
// expected (n-1)/4 times, and the chi-square statistic has 3 degrees of
// freedom. Samples shorter than two bytes give 0.
func SerialTest(data []byte) float64 {
	if len(data) < 2 {
		return 0
	}
	bits := bitstats.NewBitStream(data)
	counts := bits.Pairs()
	expected := float64(bits.Len()-1) / 4
	stat := 0.0
	for _, count := range counts {
		d := float64(count) - expected
		stat += d * d / expected
	}
	return specialfunc.ChiSquareSurvival(stat, 3)
}
