package specialfunc

import "math"

// ChiSquareCDF returns the cumulative distribution function of the chi-square
// distribution with df degrees of freedom, evaluated at x.
//
// Non-positive x gives 0. Invalid df (df <= 0 or NaN) gives 0 as well, so a
// p-value derived from it fails conservatively rather than being undefined.
func ChiSquareCDF(x float64, df float64) float64 {
	if !validChiSquare(x, df) {
		return 0
	}
	if x <= 0 {
		return 0
	}
	return LowerRegularizedGamma(df/2, x/2)
}

// ChiSquareSurvival returns 1 - ChiSquareCDF(x, df), the upper tail
// probability used as the p-value of a chi-square goodness-of-fit statistic.
//
// Invalid arguments give 0.
func ChiSquareSurvival(x float64, df float64) float64 {
	if !validChiSquare(x, df) {
		return 0
	}
	if x <= 0 {
		return 1
	}
	return UpperRegularizedGamma(df/2, x/2)
}

func validChiSquare(x, df float64) bool {
	return !math.IsNaN(x) && !math.IsNaN(df) && !math.IsInf(df, 0) && df > 0
}
