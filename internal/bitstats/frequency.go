// Package bitstats holds the byte and bit level counting primitives shared by
// the descriptive metrics and the statistical test battery.
package bitstats

import (
	"encoding/json"
	"fmt"

	"github.com/ossf/entropy-analysis/pkg/valuecounts"
)

// FrequencyTable maps each byte value to the number of times it occurs in a sample.
// All 256 values are always present; values that were never observed have a zero count.
type FrequencyTable [256]int

// Count builds the frequency table for data.
func Count(data []byte) FrequencyTable {
	var ft FrequencyTable
	for _, b := range data {
		ft[b]++
	}
	return ft
}

// Count returns the number of occurrences of b.
func (ft FrequencyTable) Count(b byte) int {
	return ft[b]
}

// Total returns the sum of all counts, which equals the sample length.
func (ft FrequencyTable) Total() int {
	total := 0
	for _, c := range ft {
		total += c
	}
	return total
}

// Max returns the highest count in the table and the (smallest) byte value
// that has it. An empty table returns (0, 0).
func (ft FrequencyTable) Max() (value byte, count int) {
	for v, c := range ft {
		if c > count {
			value, count = byte(v), c
		}
	}
	return value, count
}

// ChiSquare returns the chi-square statistic of the table against the uniform
// distribution: the sum over all 256 values of (count - E)^2 / E with
// E = Total()/256. An empty table gives 0.
func (ft FrequencyTable) ChiSquare() float64 {
	n := ft.Total()
	if n == 0 {
		return 0
	}
	expected := float64(n) / 256
	stat := 0.0
	for _, count := range ft {
		d := float64(count) - expected
		stat += d * d / expected
	}
	return stat
}

// Observed returns the number of distinct byte values with a non-zero count.
func (ft FrequencyTable) Observed() int {
	n := 0
	for _, c := range ft {
		if c > 0 {
			n++
		}
	}
	return n
}

// ValueCounts converts the observed entries of the table to a ValueCounts.
func (ft FrequencyTable) ValueCounts() valuecounts.ValueCounts {
	observed := make(map[int]int, ft.Observed())
	for v, c := range ft {
		if c > 0 {
			observed[v] = c
		}
	}
	return valuecounts.FromMap(observed)
}

// MarshalJSON serialises the observed entries as a list of (value, count) pairs.
func (ft FrequencyTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(ft.ValueCounts())
}

// UnmarshalJSON restores a table serialised with MarshalJSON. Values outside
// the byte range and negative counts are rejected.
func (ft *FrequencyTable) UnmarshalJSON(data []byte) error {
	vc := valuecounts.New()
	if err := json.Unmarshal(data, &vc); err != nil {
		return err
	}

	var table FrequencyTable
	for _, pair := range vc.ToPairs() {
		if pair.Value < 0 || pair.Value > 255 {
			return fmt.Errorf("byte value out of range: %d", pair.Value)
		}
		if pair.Count < 0 {
			return fmt.Errorf("negative count for byte value %d: %d", pair.Value, pair.Count)
		}
		table[pair.Value] = pair.Count
	}

	*ft = table
	return nil
}
