package stats

import (
	"testing"
)

func TestSummarise(t *testing.T) {
	tests := []struct {
		name string
		got  Summary
		want Summary
	}{
		{
			"odd size",
			Summarise([]int{1, 2, 3, 4, 5, 6, 7, 8, 9}),
			Summary{Size: 9, Mean: 5, Variance: 7.5, Min: 1, Median: 5, Max: 9},
		},
		{
			"unsorted",
			Summarise([]int{36, 7, 40, 41, 6, 42, 43, 47, 49, 15, 39}),
			Summary{Size: 11, Mean: 33.18181818181818, Variance: 251.9636363636363, Min: 6, Median: 40, Max: 49},
		},
		{
			"even size",
			Summarise([]int{36, 40, 7, 39, 15, 41}),
			Summary{Size: 6, Mean: 29.666666666666668, Variance: 218.26666666666665, Min: 7, Median: 37.5, Max: 41},
		},
		{
			"floats",
			Summarise([]float64{2.5, 0.5}),
			Summary{Size: 2, Mean: 1.5, Variance: 2, Min: 0.5, Median: 1.5, Max: 2.5},
		},
		{
			"single",
			Summarise([]float64{812.25}),
			Summary{Size: 1, Mean: 812.25, Variance: 0, Min: 812.25, Median: 812.25, Max: 812.25},
		},
		{
			"empty",
			Summarise[float64](nil),
			Summary{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Equals(tt.want, 1e-9) {
				t.Errorf("Summarise() = %+v; want %+v", tt.got, tt.want)
			}
		})
	}
}

func TestSummariseDoesNotSort(t *testing.T) {
	data := []int{3, 1, 2}
	Summarise(data)
	if data[0] != 3 || data[1] != 1 || data[2] != 2 {
		t.Errorf("Summarise() modified its input: %v", data)
	}
}

func TestStdDev(t *testing.T) {
	s := Summarise([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	// Sample variance 32/7.
	if got, want := s.StdDev()*s.StdDev(), 32.0/7.0; got-want > 1e-12 || want-got > 1e-12 {
		t.Errorf("StdDev()^2 = %v; want %v", got, want)
	}
}
