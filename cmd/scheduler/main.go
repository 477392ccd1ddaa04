package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"gocloud.dev/pubsub"
	_ "gocloud.dev/pubsub/gcppubsub"
	_ "gocloud.dev/pubsub/kafkapubsub"
	_ "gocloud.dev/pubsub/mempubsub"

	"github.com/ossf/entropy-analysis/cmd/scheduler/proxy"
	"github.com/ossf/entropy-analysis/internal/entropysource"
	"github.com/ossf/entropy-analysis/internal/log"
	"github.com/ossf/entropy-analysis/internal/worker"
)

// sourceRequest is the JSON body of an upstream analysis request.
type sourceRequest struct {
	Source     string `json:"source"`
	SampleSize int    `json:"sample_size,omitempty"`
	RunID      string `json:"run_id,omitempty"`
}

type KindConfig struct {
	// MaxSampleSize caps the sample size that may be requested for the kind.
	// Zero means worker.MaxSampleSize.
	MaxSampleSize int
}

func (k *KindConfig) maxSampleSize() int {
	if k.MaxSampleSize == 0 {
		return worker.MaxSampleSize
	}
	return k.MaxSampleSize
}

// supportedKinds lists the source kinds that may be requested remotely.
// File sources name paths on the worker host and are only available through
// the analyze command.
var supportedKinds = map[entropysource.Kind]*KindConfig{
	entropysource.KindSystem:   {},
	entropysource.KindMock:     {},
	entropysource.KindChaCha20: {},
	entropysource.KindConstant: {MaxSampleSize: 1 << 20},
	entropysource.KindBlob:     {},
}

var errUnsupportedKind = errors.New("source kind is not supported")

// toWorkerMessage converts an upstream request into the metadata-only message
// read by the worker.
func toWorkerMessage(m *pubsub.Message) (*pubsub.Message, error) {
	req := sourceRequest{}
	if err := json.Unmarshal(m.Body, &req); err != nil {
		return nil, fmt.Errorf("error unmarshalling json: %w", err)
	}
	if req.Source == "" {
		return nil, worker.ErrMissingSource
	}
	kind := entropysource.KindOf(req.Source)
	config, ok := supportedKinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnsupportedKind, kind)
	}
	if req.SampleSize < 0 || req.SampleSize > config.maxSampleSize() {
		return nil, fmt.Errorf("%w %d for kind %s", worker.ErrInvalidSampleSize, req.SampleSize, kind)
	}

	metadata := map[string]string{"source": req.Source}
	if req.SampleSize > 0 {
		metadata["sample_size"] = strconv.Itoa(req.SampleSize)
	}
	if req.RunID != "" {
		metadata["run_id"] = req.RunID
	}
	return &pubsub.Message{Body: []byte{}, Metadata: metadata}, nil
}

func main() {
	subscriptionURL := os.Getenv("ENTROPY_REQUEST_SUBSCRIPTION")
	topicURL := os.Getenv("ENTROPY_WORKER_TOPIC")
	flush := log.Initialize(os.Getenv("LOGGER_ENV"))
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := listenLoop(ctx, subscriptionURL, topicURL)
	if err != nil && ctx.Err() == nil {
		slog.Error("Error encountered", "error", err)
	}
}

func listenLoop(ctx context.Context, subURL, topicURL string) error {
	sub, err := pubsub.OpenSubscription(ctx, subURL)
	if err != nil {
		return err
	}
	defer sub.Shutdown(context.Background())

	topic, err := pubsub.OpenTopic(ctx, topicURL)
	if err != nil {
		return err
	}
	defer topic.Shutdown(context.Background())

	srv := proxy.New(topic, sub)
	slog.InfoContext(ctx, "Listening for messages to proxy...")

	return srv.Listen(ctx, log.ZapLogger(), toWorkerMessage)
}
