package metrics

import "math"

// Weights of the composite score. They are fixed so that scores stay
// comparable between runs and sources.
const (
	shannonWeight    = 0.5
	minEntropyWeight = 0.3
	meanWeight       = 0.2
)

// Grade is a coarse verdict on the Shannon entropy of a sample.
type Grade string

const (
	GradeExcellent = Grade("excellent")
	GradeGood      = Grade("good")
	GradePoor      = Grade("poor")
)

// OverallScore combines the metrics into a single score between 0 and 100,
// where 100 is ideal:
//
//	0.5 * (H/8 * 100) + 0.3 * (Hmin/8 * 100) + 0.2 * ((127.5 - |mean - 127.5|) / 127.5 * 100)
func (m QualityMetrics) OverallScore() float64 {
	shannonScore := m.ShannonEntropy / MaxEntropy * 100
	minEntropyScore := m.MinEntropy / MaxEntropy * 100
	meanScore := (IdealMean - math.Abs(m.Mean-IdealMean)) / IdealMean * 100

	return shannonScore*shannonWeight + minEntropyScore*minEntropyWeight + meanScore*meanWeight
}

// Grade returns GradeExcellent for at least 7.9 bits per byte of Shannon
// entropy, GradeGood for at least 7.5 and GradePoor below that.
func (m QualityMetrics) Grade() Grade {
	switch {
	case m.ShannonEntropy >= 7.9:
		return GradeExcellent
	case m.ShannonEntropy >= 7.5:
		return GradeGood
	default:
		return GradePoor
	}
}
