// Package bench measures how fast an entropy source produces bytes.
package bench

import (
	"errors"
	"fmt"
	"time"

	"github.com/ossf/entropy-analysis/internal/entropysource"
	"github.com/ossf/entropy-analysis/internal/stats"
)

// now is replaced in tests.
var now = time.Now

var errNoIterations = errors.New("iterations must be positive")

// Result is the outcome of a benchmark run.
type Result struct {
	Source string `json:"source"`
	// ThroughputMBps is in decimal megabytes (10^6 bytes) per second.
	ThroughputMBps float64 `json:"throughput_mbps"`
	// LatencyMicros is the mean time per byte in microseconds.
	LatencyMicros float64       `json:"latency_us"`
	Bytes         int           `json:"bytes"`
	Duration      time.Duration `json:"duration"`
	// Throughput summarises the per-iteration throughput of BenchmarkAvg.
	// It is the zero Summary for a single Benchmark.
	Throughput stats.Summary `json:"throughput"`
}

func (r Result) String() string {
	return fmt.Sprintf("Throughput: %.2f MB/s\nLatency: %.4f µs/byte\nGenerated: %d bytes in %.3fs",
		r.ThroughputMBps, r.LatencyMicros, r.Bytes, r.Duration.Seconds())
}

// rates converts a byte count and elapsed time to throughput and latency. A
// zero elapsed time, possible with coarse clocks, is counted as one
// nanosecond so both values stay finite.
func rates(n int, elapsed time.Duration) (mbps, micros float64) {
	if n == 0 {
		return 0, 0
	}
	if elapsed <= 0 {
		elapsed = time.Nanosecond
	}
	secs := elapsed.Seconds()
	return float64(n) / secs / 1e6, secs * 1e6 / float64(n)
}

// Benchmark times a single fill of totalBytes from src.
func Benchmark(src entropysource.Source, totalBytes int) (Result, error) {
	if totalBytes < 0 {
		return Result{}, fmt.Errorf("invalid benchmark size %d", totalBytes)
	}
	buf := make([]byte, totalBytes)

	start := now()
	if err := src.Fill(buf); err != nil {
		return Result{}, fmt.Errorf("benchmark fill from %s: %w", entropysource.Name(src), err)
	}
	elapsed := now().Sub(start)

	mbps, micros := rates(totalBytes, elapsed)
	return Result{
		Source:         entropysource.Name(src),
		ThroughputMBps: mbps,
		LatencyMicros:  micros,
		Bytes:          totalBytes,
		Duration:       elapsed,
	}, nil
}

// BenchmarkAvg runs Benchmark iterations times and averages the throughput
// and latency of the runs. Bytes and Duration are totals.
func BenchmarkAvg(src entropysource.Source, bytesPerIteration, iterations int) (Result, error) {
	if iterations <= 0 {
		return Result{}, errNoIterations
	}
	throughputs := make([]float64, 0, iterations)
	latency := 0.0
	total := Result{Source: entropysource.Name(src)}
	for i := 0; i < iterations; i++ {
		r, err := Benchmark(src, bytesPerIteration)
		if err != nil {
			return Result{}, fmt.Errorf("iteration %d: %w", i, err)
		}
		throughputs = append(throughputs, r.ThroughputMBps)
		latency += r.LatencyMicros
		total.Bytes += r.Bytes
		total.Duration += r.Duration
	}
	total.Throughput = stats.Summarise(throughputs)
	total.ThroughputMBps = total.Throughput.Mean
	total.LatencyMicros = latency / float64(iterations)
	return total, nil
}
