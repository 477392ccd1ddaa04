package worker

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/mempubsub"

	"github.com/ossf/entropy-analysis/internal/bitstats"
	"github.com/ossf/entropy-analysis/internal/entropysource"
	"github.com/ossf/entropy-analysis/internal/featureflags"
	"github.com/ossf/entropy-analysis/internal/log"
	"github.com/ossf/entropy-analysis/internal/resultstore"
	"github.com/ossf/entropy-analysis/internal/sampling"
	"github.com/ossf/entropy-analysis/pkg/api/qualityrun"
	pkgnotification "github.com/ossf/entropy-analysis/pkg/notification"
)

// setFlags applies flags for the duration of the test.
func setFlags(t *testing.T, flags string) {
	t.Helper()
	saved := featureflags.State()
	if err := featureflags.Update(flags); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		var restore []string
		for name, enabled := range saved {
			if !enabled {
				name = "-" + name
			}
			restore = append(restore, name)
		}
		if err := featureflags.Update(strings.Join(restore, ",")); err != nil {
			t.Fatal(err)
		}
	})
}

// receive delivers a request with metadata through an in-memory subscription
// so that the returned message can be acked or nacked.
func receive(t *testing.T, metadata map[string]string) *pubsub.Message {
	t.Helper()
	ctx := context.Background()
	topic := mempubsub.NewTopic()
	sub := mempubsub.NewSubscription(topic, time.Minute)
	t.Cleanup(func() {
		sub.Shutdown(ctx)
		topic.Shutdown(ctx)
	})

	if err := topic.Send(ctx, &pubsub.Message{Body: []byte("{}"), Metadata: metadata}); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	msg, err := sub.Receive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	return msg
}

type fixture struct {
	bucket  *blob.Bucket
	stores  ResultStores
	topic   *pubsub.Topic
	sub     *pubsub.Subscription
	metrics *Metrics
	handler *Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{bucket: memblob.OpenBucket(nil), topic: mempubsub.NewTopic()}
	f.sub = mempubsub.NewSubscription(f.topic, time.Minute)
	t.Cleanup(func() {
		f.sub.Shutdown(ctx)
		f.topic.Shutdown(ctx)
		f.bucket.Close()
	})

	f.stores = ResultStores{
		Records: resultstore.New("mem://", resultstore.Bucket(f.bucket), resultstore.BasePath("records")),
		Samples: resultstore.New("mem://", resultstore.Bucket(f.bucket), resultstore.BasePath("samples")),
	}
	f.metrics = NewMetrics(prometheus.NewRegistry())
	f.handler = NewHandler(f.stores, f.topic, 2048, f.metrics)
	return f
}

func (f *fixture) requests(outcome string) float64 {
	return testutil.ToFloat64(f.metrics.requests.WithLabelValues(outcome))
}

func TestHandleMessage(t *testing.T) {
	setFlags(t, "ReportByteFrequency,-SaveRawSample")
	ctx := context.Background()
	f := newFixture(t)

	msg := receive(t, map[string]string{"source": "mock:7", "sample_size": "4096", "run_id": "r1"})
	if err := f.handler.HandleMessage(ctx, msg); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	want, err := sampling.Run(ctx, entropysource.NewMock(7), 4096)
	if err != nil {
		t.Fatal(err)
	}
	key := qualityrun.Key{Source: "mock:7", RunID: "r1"}
	record, err := f.stores.Records.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if record.Run != key {
		t.Errorf("record.Run = %+v; want %+v", record.Run, key)
	}
	if diff := cmp.Diff(want, record.Analysis); diff != "" {
		t.Errorf("stored analysis mismatch (-want +got):\n%s", diff)
	}

	// Raw samples are off.
	if ok, _ := f.bucket.Exists(ctx, f.stores.Samples.SamplePath(key)); ok {
		t.Errorf("sample saved with SaveRawSample disabled")
	}

	rctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	note, err := f.sub.Receive(rctx)
	if err != nil {
		t.Fatalf("no notification: %v", err)
	}
	note.Ack()
	completion, err := pkgnotification.ParseJSON(note)
	if err != nil {
		t.Fatal(err)
	}
	if completion.Run != key || completion.OverallScore != want.OverallScore || completion.Consistent != want.Consistent {
		t.Errorf("notification = %+v", completion)
	}

	if got := f.requests(OutcomeSuccess); got != 1 {
		t.Errorf("success count = %v; want 1", got)
	}
	if got := testutil.CollectAndCount(f.metrics.duration); got != 1 {
		t.Errorf("duration metrics = %d; want 1", got)
	}
}

func TestHandleMessageSavesSample(t *testing.T) {
	setFlags(t, "SaveRawSample,-ReportByteFrequency")
	ctx := context.Background()
	f := newFixture(t)

	msg := receive(t, map[string]string{"source": "constant:0x00", "run_id": "zeros"})
	if err := f.handler.HandleMessage(ctx, msg); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	key := qualityrun.Key{Source: "constant:0x00", RunID: "zeros"}
	raw, err := f.bucket.ReadAll(ctx, f.stores.Samples.SamplePath(key))
	if err != nil {
		t.Fatalf("sample not saved: %v", err)
	}
	if len(raw) != 2048 {
		t.Errorf("sample length = %d; want default 2048", len(raw))
	}

	record, err := f.stores.Records.Load(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if record.Analysis.Metrics.ByteFrequency != (bitstats.FrequencyTable{}) {
		t.Errorf("byte frequency stored with ReportByteFrequency disabled")
	}
	if record.Analysis.Consistent {
		t.Errorf("constant source judged consistent")
	}
	if got := testutil.ToFloat64(f.metrics.inconsistent.WithLabelValues("constant:0x00")); got != 1 {
		t.Errorf("inconsistent count = %v; want 1", got)
	}
}

func TestHandleMessageDropsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]string
	}{
		{"no source", map[string]string{"sample_size": "100"}},
		{"bad size", map[string]string{"source": "mock", "sample_size": "-5"}},
		{"unknown kind", map[string]string{"source": "quantum"}},
		{"bad seed", map[string]string{"source": "mock:seven"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if err := f.handler.HandleMessage(context.Background(), receive(t, tt.metadata)); err != nil {
				t.Errorf("HandleMessage() error = %v; want nil", err)
			}
			if got := f.requests(OutcomeInvalid); got != 1 {
				t.Errorf("invalid count = %v; want 1", got)
			}
			if got := f.requests(OutcomeSuccess); got != 0 {
				t.Errorf("success count = %v; want 0", got)
			}
		})
	}
}

type closeTracker struct {
	entropysource.Source
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestHandleMessageSourceFailure(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("device unplugged")
	src := &closeTracker{Source: entropysource.Func(func([]byte) error { return boom })}
	f.handler.open = func(context.Context, string) (entropysource.Source, error) { return src, nil }

	err := f.handler.HandleMessage(context.Background(), receive(t, map[string]string{"source": "file:/dev/flaky"}))
	if !errors.Is(err, boom) {
		t.Errorf("HandleMessage() error = %v; want %v", err, boom)
	}
	if !src.closed {
		t.Errorf("source not closed")
	}
	if got := f.requests(OutcomeError); got != 1 {
		t.Errorf("error count = %v; want 1", got)
	}
}

func TestHandleMessageWithoutStores(t *testing.T) {
	h := NewHandler(ResultStores{}, nil, 512, nil)
	if err := h.HandleMessage(context.Background(), receive(t, map[string]string{"source": "chacha20"})); err != nil {
		t.Errorf("HandleMessage() error = %v", err)
	}
}

func TestHandleMessageLogsReport(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	saved := slog.Default()
	slog.SetDefault(log.NewLogger(core))
	t.Cleanup(func() { slog.SetDefault(saved) })

	h := NewHandler(ResultStores{}, nil, 1000, nil)
	if err := h.HandleMessage(context.Background(), receive(t, map[string]string{"source": "mock", "run_id": "r9"})); err != nil {
		t.Fatal(err)
	}

	if n := logs.FilterMessage(gotRequestLogMsg).Len(); n != 1 {
		t.Errorf("%q logged %d times; want 1", gotRequestLogMsg, n)
	}
	done := logs.FilterMessage(analysisCompleteLogMsg).All()
	if len(done) != 1 {
		t.Fatalf("%q logged %d times; want 1", analysisCompleteLogMsg, len(done))
	}
	if got := done[0].ContextMap()["run_id"]; got != "r9" {
		t.Errorf("run_id = %v; want r9", got)
	}
	if logs.FilterMessageSnippet("Verdict:").Len() != 1 {
		t.Errorf("text report not logged")
	}
	if logs.FilterMessageSnippet("Tests passed:").FilterLevelExact(zapcore.DebugLevel).Len() != 1 {
		t.Errorf("text report not logged at debug level")
	}
}
