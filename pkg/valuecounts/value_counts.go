// Package valuecounts provides a sparse histogram of integer values with a
// stable JSON form, used to publish byte frequency tables.
package valuecounts

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ValueCounts maps integer values to the number of times they were seen.
// It serialises to JSON as a list of {value, count} objects sorted by value.
type ValueCounts struct {
	counts map[int]int
}

// Pair is a single value with its count.
type Pair struct {
	Value int `json:"value"`
	Count int `json:"count"`
}

// New returns an empty ValueCounts.
func New() ValueCounts {
	return ValueCounts{counts: map[int]int{}}
}

// FromMap returns a ValueCounts holding a copy of m.
func FromMap(m map[int]int) ValueCounts {
	vc := New()
	maps.Copy(vc.counts, m)
	return vc
}

func (vc ValueCounts) String() string {
	parts := make([]string, 0, len(vc.counts))
	for _, p := range vc.ToPairs() {
		parts = append(parts, fmt.Sprintf("%d: %d", p.Value, p.Count))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ToPairs lists the stored counts in ascending order of value. An empty
// ValueCounts gives an empty, non-nil slice.
func (vc ValueCounts) ToPairs() []Pair {
	values := maps.Keys(vc.counts)
	slices.Sort(values)

	pairs := make([]Pair, 0, len(values))
	for _, v := range values {
		pairs = append(pairs, Pair{Value: v, Count: vc.counts[v]})
	}
	return pairs
}

// FromPairs builds a ValueCounts from a list of pairs. A value listed more
// than once is an error.
func FromPairs(pairs []Pair) (ValueCounts, error) {
	vc := New()
	for _, p := range pairs {
		if _, dup := vc.counts[p.Value]; dup {
			return ValueCounts{}, fmt.Errorf("duplicate value in pairs: %d", p.Value)
		}
		vc.counts[p.Value] = p.Count
	}
	return vc, nil
}

// MarshalJSON implements json.Marshaler.
func (vc ValueCounts) MarshalJSON() ([]byte, error) {
	return json.Marshal(vc.ToPairs())
}

// UnmarshalJSON implements json.Unmarshaler. On error vc is left untouched.
func (vc *ValueCounts) UnmarshalJSON(data []byte) error {
	var pairs []Pair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	parsed, err := FromPairs(pairs)
	if err != nil {
		return err
	}
	*vc = parsed
	return nil
}
