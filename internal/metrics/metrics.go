// Package metrics computes descriptive quality metrics of a byte sample:
// Shannon entropy, min-entropy, the byte chi-square statistic, the mean byte
// value and the longest run of identical bits, plus a composite score.
//
// Every function is total. Empty input yields zero values, never an error.
package metrics

import (
	"fmt"
	"math"

	"github.com/ossf/entropy-analysis/internal/bitstats"
	"github.com/ossf/entropy-analysis/internal/entropysource"
)

// IdealMean is the expected mean of uniformly distributed bytes.
const IdealMean = 127.5

// MaxEntropy is the maximum entropy of byte data, in bits per byte.
const MaxEntropy = 8.0

// QualityMetrics holds the descriptive metrics of one sample. It is created
// once per analysis and never modified.
type QualityMetrics struct {
	ShannonEntropy float64                 `json:"shannon_entropy"`
	MinEntropy     float64                 `json:"min_entropy"`
	ByteFrequency  bitstats.FrequencyTable `json:"byte_frequency"`
	TotalBytes     int                     `json:"total_bytes"`
	ChiSquare      float64                 `json:"chi_square"`
	Mean           float64                 `json:"mean"`
	LongestRun     int                     `json:"longest_run"`
}

/*
ShannonEntropy returns the entropy of the empirical byte distribution of data
in bits per byte,

	H = - sum(b observed) { p(b) * log2(p(b)) },

where p(b) is the fraction of bytes equal to b. The result is in [0, 8];
an empty sample has entropy 0.
*/
func ShannonEntropy(data []byte) float64 {
	return shannonEntropy(bitstats.Count(data), len(data))
}

func shannonEntropy(ft bitstats.FrequencyTable, n int) float64 {
	if n == 0 {
		return 0
	}
	total := float64(n)
	entropy := 0.0
	for _, count := range ft {
		if count > 0 {
			p := float64(count) / total
			entropy -= p * math.Log2(p)
		}
	}
	// A single repeated value gives -1*log2(1) = -0. The sum can also round
	// a few ulps below the min-entropy of a uniform table, and H >= H_min.
	return math.Max(math.Abs(entropy), minEntropy(ft, n))
}

// MinEntropy returns the min-entropy -log2(max p(b)) of data in bits per
// byte, the worst-case information content set by the most frequent value.
// An empty sample has min-entropy 0.
func MinEntropy(data []byte) float64 {
	return minEntropy(bitstats.Count(data), len(data))
}

func minEntropy(ft bitstats.FrequencyTable, n int) float64 {
	_, maxCount := ft.Max()
	if n == 0 || maxCount == 0 {
		return 0
	}
	return math.Abs(math.Log2(float64(maxCount) / float64(n)))
}

// ChiSquare returns the chi-square statistic of the byte counts of data
// against the uniform distribution, summed over all 256 values with expected
// count len(data)/256. Lower is more uniform. An empty sample gives 0.
func ChiSquare(data []byte) float64 {
	return bitstats.Count(data).ChiSquare()
}

// Mean returns the arithmetic mean of the byte values of data, or 0 for an
// empty sample.
func Mean(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum uint64
	for _, b := range data {
		sum += uint64(b)
	}
	return float64(sum) / float64(len(data))
}

// LongestRun returns the length of the longest run of identical bits in data,
// reading each byte most significant bit first and continuing across byte
// boundaries. An empty sample gives 0.
func LongestRun(data []byte) int {
	return bitstats.NewBitStream(data).LongestRun()
}

// FromSample computes every metric for an already captured sample in a single
// frequency-table pass.
func FromSample(data []byte) QualityMetrics {
	ft := bitstats.Count(data)
	n := len(data)
	return QualityMetrics{
		ShannonEntropy: shannonEntropy(ft, n),
		MinEntropy:     minEntropy(ft, n),
		ByteFrequency:  ft,
		TotalBytes:     n,
		ChiSquare:      ft.ChiSquare(),
		Mean:           Mean(data),
		LongestRun:     LongestRun(data),
	}
}

// Analyze draws exactly sampleSize bytes from src with a single bulk fill and
// returns the metrics of that sample.
//
// A failed fill is returned as an error; the buffer is never padded.
func Analyze(src entropysource.Source, sampleSize int) (QualityMetrics, error) {
	if sampleSize < 0 {
		return QualityMetrics{}, fmt.Errorf("invalid sample size %d", sampleSize)
	}
	data := make([]byte, sampleSize)
	if err := src.Fill(data); err != nil {
		return QualityMetrics{}, fmt.Errorf("failed to sample %s: %w", entropysource.Name(src), err)
	}
	return FromSample(data), nil
}
