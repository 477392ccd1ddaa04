package randtest

import (
	"github.com/ossf/entropy-analysis/internal/bitstats"
	"github.com/ossf/entropy-analysis/internal/specialfunc"
)

// LongestRunMinBytes is the smallest sample LongestRunTest accepts.
const LongestRunMinBytes = 128

// longestRunRegime holds the parameters of the longest-run-of-ones test for
// sequences shorter than maxBits. The first category counts blocks whose
// longest run is at most bounds[0], the last one those with at least
// bounds[len-1], and the ones between count exact lengths.
type longestRunRegime struct {
	maxBits   int
	blockSize int
	bounds    []int
	probs     []float64
}

// longestRunRegimes follows the tables of NIST SP 800-22 section 2.4.
var longestRunRegimes = []longestRunRegime{
	{
		maxBits:   6272,
		blockSize: 8,
		bounds:    []int{1, 2, 3, 4},
		probs:     []float64{0.2148, 0.3672, 0.2305, 0.1875},
	},
	{
		maxBits:   75000,
		blockSize: 128,
		bounds:    []int{4, 5, 6, 7, 8, 9},
		probs:     []float64{0.1174, 0.2430, 0.2493, 0.1752, 0.1027, 0.1124},
	},
	{
		maxBits:   -1, // no upper limit
		blockSize: 10000,
		bounds:    []int{10, 11, 12, 13, 14, 15, 16},
		probs:     []float64{0.0882, 0.2092, 0.2483, 0.1933, 0.1208, 0.0675, 0.0727},
	},
}

func regimeFor(nBits int) longestRunRegime {
	for _, r := range longestRunRegimes {
		if r.maxBits < 0 || nBits < r.maxBits {
			return r
		}
	}
	return longestRunRegimes[len(longestRunRegimes)-1]
}

// category returns the index of the category for a block whose longest run
// of ones is run.
func (r longestRunRegime) category(run int) int {
	for i, b := range r.bounds {
		if run <= b {
			return i
		}
	}
	return len(r.bounds) - 1
}

// LongestRunTest checks the longest run of ones within fixed-size blocks.
//
// The sequence is split into blocks whose size depends on its length (8, 128
// or 10000 bits). Each block is put into a category by its longest run of ones
// and the category counts are compared with their expected frequencies by a
// chi-square statistic with (categories - 1) degrees of freedom.
//
// Samples shorter than LongestRunMinBytes give 0.
func LongestRunTest(data []byte) float64 {
	if len(data) < LongestRunMinBytes {
		return 0
	}
	bits := bitstats.NewBitStream(data)
	n := bits.Len()
	regime := regimeFor(n)

	numBlocks := n / regime.blockSize
	observed := make([]int, len(regime.bounds))
	for block := 0; block < numBlocks; block++ {
		start := block * regime.blockSize
		run := bits.LongestOnesRun(start, start+regime.blockSize)
		observed[regime.category(run)]++
	}

	stat := 0.0
	for i, count := range observed {
		expected := float64(numBlocks) * regime.probs[i]
		if expected == 0 {
			return 0
		}
		d := float64(count) - expected
		stat += d * d / expected
	}
	return specialfunc.ChiSquareSurvival(stat, float64(len(regime.bounds)-1))
}
