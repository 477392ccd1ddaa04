package sampling

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ossf/entropy-analysis/internal/entropysource"
)

// trackingSource records the peak number of concurrent fills.
type trackingSource struct {
	inFlight *atomic.Int32
	peak     *atomic.Int32
	src      entropysource.Source
}

func (s trackingSource) Fill(p []byte) error {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return s.src.Fill(p)
}

func (s trackingSource) Name() string {
	return entropysource.Name(s.src)
}

func TestRunBatchPreservesOrder(t *testing.T) {
	var jobs []Job
	var want []string
	for i := 0; i < 12; i++ {
		src := entropysource.Constant(byte(i))
		jobs = append(jobs, Job{Source: src, SampleSize: 256 + i})
		want = append(want, entropysource.Name(src))
	}

	results, err := RunBatch(context.Background(), jobs, 3)
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}
	var got []string
	for i, a := range results {
		got = append(got, a.SourceName)
		if a.Metrics.TotalBytes != 256+i {
			t.Errorf("result %d: TotalBytes = %d; want %d", i, a.Metrics.TotalBytes, 256+i)
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result order mismatch (-want +got):\n%s", diff)
	}
}

func TestRunBatchLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	var jobs []Job
	for i := 0; i < 8; i++ {
		jobs = append(jobs, Job{
			Source:     trackingSource{inFlight: &inFlight, peak: &peak, src: entropysource.NewMock(uint64(i))},
			SampleSize: 128,
		})
	}
	if _, err := RunBatch(context.Background(), jobs, 2); err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("peak concurrency = %d; want at most 2", p)
	}
}

func TestRunBatchFailure(t *testing.T) {
	boom := errors.New("read error")
	jobs := []Job{
		{Source: entropysource.NewMock(1), SampleSize: 64},
		{Source: entropysource.Func(func([]byte) error { return boom }), SampleSize: 64},
	}
	results, err := RunBatch(context.Background(), jobs, 0)
	if !errors.Is(err, boom) {
		t.Errorf("RunBatch() error = %v; want %v", err, boom)
	}
	if results != nil {
		t.Errorf("RunBatch() results = %v; want nil", results)
	}
}

func TestRunBatchEmpty(t *testing.T) {
	results, err := RunBatch(context.Background(), nil, 4)
	if err != nil || len(results) != 0 {
		t.Errorf("RunBatch(nil) = %v, %v; want empty, nil", results, err)
	}
}

func TestExclusive(t *testing.T) {
	var inFlight, peak atomic.Int32
	shared := Exclusive(trackingSource{inFlight: &inFlight, peak: &peak, src: entropysource.NewMock(9)})

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, 64)
			if err := shared.Fill(buf); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if p := peak.Load(); p != 1 {
		t.Errorf("peak concurrency = %d; want 1", p)
	}
	if Exclusive(shared) != shared {
		t.Error("Exclusive() wrapped an already exclusive source")
	}
	if got := entropysource.Name(shared); got != "Mock RNG (for testing only)" {
		t.Errorf("Name() = %q", got)
	}
}

func TestExclusiveReset(t *testing.T) {
	src := Exclusive(entropysource.NewMock(42))
	first := make([]byte, 32)
	_ = src.Fill(first)
	if !entropysource.Reset(src) {
		t.Fatal("Reset() = false; want true")
	}
	again := make([]byte, 32)
	_ = src.Fill(again)
	if diff := cmp.Diff(first, again); diff != "" {
		t.Errorf("stream after Reset() differs (-want +got):\n%s", diff)
	}
}

func TestRunBatchSharedSource(t *testing.T) {
	shared := Exclusive(entropysource.NewMock(42))
	jobs := make([]Job, 4)
	for i := range jobs {
		jobs[i] = Job{Source: shared, SampleSize: 1000}
	}
	results, err := RunBatch(context.Background(), jobs, 4)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for _, a := range results {
		if seen[a.SampleSHA256] {
			t.Error("two jobs analysed the same bytes from a shared source")
		}
		seen[a.SampleSHA256] = true
	}
}
