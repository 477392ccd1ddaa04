// Package worker handles analysis requests received over pubsub: it samples
// the requested entropy source, stores the result and announces completion.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gocloud.dev/pubsub"

	"github.com/ossf/entropy-analysis/internal/entropysource"
	"github.com/ossf/entropy-analysis/internal/featureflags"
	"github.com/ossf/entropy-analysis/internal/log"
	"github.com/ossf/entropy-analysis/internal/notification"
	"github.com/ossf/entropy-analysis/internal/sampling"
)

// Handler processes analysis request messages.
type Handler struct {
	stores            ResultStores
	notificationTopic *pubsub.Topic
	defaultSampleSize int
	metrics           *Metrics

	// open is replaced in tests.
	open func(ctx context.Context, spec string) (entropysource.Source, error)
}

// NewHandler returns a Handler saving to stores and, if topic is not nil,
// publishing a notification there after each successful run. Requests that
// do not name a sample size get defaultSampleSize bytes. A nil m gets
// unexported metrics.
func NewHandler(stores ResultStores, topic *pubsub.Topic, defaultSampleSize int, m *Metrics) *Handler {
	if m == nil {
		m = NewMetrics(nil)
	}
	return &Handler{
		stores:            stores,
		notificationTopic: topic,
		defaultSampleSize: defaultSampleSize,
		metrics:           m,
		open:              entropysource.Open,
	}
}

// HandleMessage runs the analysis requested by msg.
//
// Messages that cannot be turned into a runnable request (missing source,
// bad sample size, a source spec that does not open) are logged, acked and
// dropped, since redelivery would fail the same way. Any later failure is
// returned and the message is nacked when the driver supports it, so it is
// retried.
func (h *Handler) HandleMessage(ctx context.Context, msg *pubsub.Message) error {
	req, err := ParseRequest(msg, h.defaultSampleSize)
	if err != nil {
		h.drop(ctx, msg, err)
		return nil
	}
	LogRequest(ctx, req)

	src, err := h.open(ctx, req.Source)
	if err != nil {
		h.drop(ctx, msg, err)
		return nil
	}
	defer func() {
		if err := entropysource.Close(src); err != nil {
			slog.WarnContext(ctx, "Failed to close source", "error", err)
		}
	}()

	key := req.Key()
	ctx = log.ContextWithAttrs(ctx, log.LabelAttr("run_id", key.RunID))

	start := time.Now()
	a, sample, err := sampling.RunSample(ctx, src, req.SampleSize)
	if err != nil {
		LogAnalysisError(ctx, key, err)
		h.fail(msg)
		return err
	}
	h.metrics.duration.Observe(time.Since(start).Seconds())
	h.metrics.score.Observe(a.OverallScore)
	if !a.Consistent {
		h.metrics.inconsistent.WithLabelValues(req.Source).Inc()
	}
	LogAnalysisResult(ctx, key, a)
	h.logReport(ctx, a)

	if err := SaveAnalysisData(ctx, key, h.stores, a, sample); err != nil {
		h.fail(msg)
		return err
	}

	if h.notificationTopic != nil {
		if err := notification.PublishAnalysisCompletion(ctx, h.notificationTopic, key, a); err != nil {
			h.fail(msg)
			return fmt.Errorf("run %s: %w", key, err)
		}
	}

	h.metrics.requests.WithLabelValues(OutcomeSuccess).Inc()
	msg.Ack()
	return nil
}

func (h *Handler) drop(ctx context.Context, msg *pubsub.Message, err error) {
	LogInvalidRequest(ctx, msg.Metadata, err)
	h.metrics.requests.WithLabelValues(OutcomeInvalid).Inc()
	msg.Ack()
}

func (h *Handler) fail(msg *pubsub.Message) {
	h.metrics.requests.WithLabelValues(OutcomeError).Inc()
	if msg.Nackable() {
		msg.Nack()
	}
}

// logReport writes the human readable report at debug level, one record per
// line.
func (h *Handler) logReport(ctx context.Context, a sampling.Analysis) {
	logger := slog.Default()
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	w := log.NewWriter(ctx, logger, slog.LevelDebug)
	defer w.Close()
	if err := a.WriteText(w, featureflags.ReportByteFrequency.Enabled()); err != nil {
		slog.WarnContext(ctx, "Failed to write report", "error", err)
	}
}
