// Package specialfunc evaluates the special functions needed to turn test
// statistics into p-values: the complementary error function and the
// chi-square distribution.
package specialfunc

import "math"

// erfcCoefficients are the Chebyshev fitting coefficients of the exponent in
// the approximation used by Erfc, lowest order first.
var erfcCoefficients = [...]float64{
	-1.26551223,
	1.00002368,
	0.37409196,
	0.09678418,
	-0.18628806,
	0.27886807,
	-1.13520398,
	1.48851587,
	-0.82215223,
	0.17087277,
}

/*
Erfc returns the complementary error function of x,

	erfc(x) = 1 - erf(x) = 2/sqrt(pi) * integral from x to infinity of exp(-t^2) dt,

using a fixed-coefficient Chebyshev approximation with fractional error below
1.2e-7 everywhere. The reflection erfc(-x) = 2 - erfc(x) is applied for
negative arguments.

The fit overshoots slightly near zero, so the result is clamped to [0, 1] for
x >= 0 and to [1, 2] for x < 0.

NaN is returned for a NaN argument; +Inf gives 0 and -Inf gives 2.
*/
func Erfc(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	z := math.Abs(x)
	t := 1 / (1 + 0.5*z)

	// Horner evaluation of the polynomial in t, highest order first.
	poly := 0.0
	for i := len(erfcCoefficients) - 1; i >= 1; i-- {
		poly = t * (erfcCoefficients[i] + poly)
	}
	ans := t * math.Exp(-z*z+erfcCoefficients[0]+poly)

	if x >= 0 {
		return math.Min(ans, 1)
	}
	return math.Max(2-ans, 1)
}
