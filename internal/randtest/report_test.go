package randtest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRunAllOrder(t *testing.T) {
	want := []string{FrequencyTestName, RunsTestName, LongestRunTestName, ChiSquareTestName, SerialTestName}
	for _, data := range [][]byte{nil, {1}, make([]byte, 500)} {
		report := RunAll(data)
		var names []string
		for _, res := range report {
			names = append(names, res.Name)
		}
		if diff := cmp.Diff(want, names); diff != "" {
			t.Errorf("RunAll(%d bytes) names mismatch (-want +got):\n%s", len(data), diff)
		}
	}
}

func TestRunAllIdempotent(t *testing.T) {
	data := chachaSample(t, 4096)
	first := RunAll(data)
	second := RunAll(data)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("RunAll() not idempotent (-first +second):\n%s", diff)
	}
}

func TestReport(t *testing.T) {
	tests := []struct {
		name       string
		pValues    []float64
		passed     int
		consistent bool
	}{
		{"all pass", []float64{0.5, 0.5, 0.5, 0.5, 0.5}, 5, true},
		{"one failure tolerated", []float64{0.5, 0.001, 0.5, 0.5, 0.5}, 4, true},
		{"two failures", []float64{0.5, 0.001, 0.5, 0, 0.5}, 3, false},
		{"threshold passes", []float64{0.01, 0.01, 0.01, 0.01, 0.0099}, 4, true},
		{"empty", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Report
			for _, p := range tt.pValues {
				r = append(r, Result{PValue: p})
			}
			if got := r.PassedCount(); got != tt.passed {
				t.Errorf("PassedCount() = %d; want %d", got, tt.passed)
			}
			if got := r.Consistent(); got != tt.consistent {
				t.Errorf("Consistent() = %v; want %v", got, tt.consistent)
			}
		})
	}
}
