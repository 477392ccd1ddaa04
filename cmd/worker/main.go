package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gocloud.dev/pubsub"
	_ "gocloud.dev/pubsub/gcppubsub"
	_ "gocloud.dev/pubsub/kafkapubsub"
	_ "gocloud.dev/pubsub/mempubsub"

	"github.com/ossf/entropy-analysis/cmd/worker/pubsubextender"
	"github.com/ossf/entropy-analysis/internal/featureflags"
	"github.com/ossf/entropy-analysis/internal/log"
	"github.com/ossf/entropy-analysis/internal/worker"
)

func serveMetrics(addr string, reg *prometheus.Registry) {
	m := http.NewServeMux()
	m.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		slog.Info("Serving metrics", "addr", addr)
		if err := http.ListenAndServe(addr, m); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server stopped", "error", err)
		}
	}()
}

func handleWithExtension(ctx context.Context, ext *pubsubextender.Extender, h *worker.Handler, msg *pubsub.Message) error {
	me, err := ext.Start(ctx, msg, func() {
		slog.DebugContext(ctx, "Extended message deadline", "deadline", ext.Deadline)
	})
	if err != nil {
		return err
	}
	handleErr := h.HandleMessage(ctx, msg)
	if err := me.Stop(); err != nil {
		slog.WarnContext(ctx, "Message deadline extension failed", "error", err)
	}
	return handleErr
}

func messageLoop(ctx context.Context, cfg *config, reg prometheus.Registerer) error {
	sub, err := pubsub.OpenSubscription(ctx, cfg.subURL)
	if err != nil {
		return err
	}
	defer sub.Shutdown(context.Background())

	ext, err := pubsubextender.New(ctx, cfg.subURL, sub)
	if err != nil {
		return err
	}

	// A nil topic disables completion notifications.
	var notificationTopic *pubsub.Topic
	if cfg.notificationTopicURL != "" {
		notificationTopic, err = pubsub.OpenTopic(ctx, cfg.notificationTopicURL)
		if err != nil {
			return err
		}
		defer notificationTopic.Shutdown(context.Background())
	}

	handler := worker.NewHandler(cfg.resultStores, notificationTopic, cfg.sampleSize, worker.NewMetrics(reg))

	slog.InfoContext(ctx, "Listening for messages to process...")
	for {
		msg, err := sub.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// All subsequent receive calls will return the same error, so we bail out.
			return fmt.Errorf("error receiving message: %w", err)
		}

		if err := handleWithExtension(ctx, ext, handler, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to process message", "error", err)
		}
	}
}

func main() {
	cfg := mustConfigFromEnv()

	flush := log.Initialize(cfg.loggerEnv)
	defer flush()

	if err := featureflags.Update(cfg.featureFlags); err != nil {
		slog.Error("Failed to parse feature flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if cfg.metricsAddr != "" {
		serveMetrics(cfg.metricsAddr, reg)
	}

	// If configured, start a webserver so that Go's pprof can be accessed for
	// debugging and profiling.
	if cfg.enableProfiler {
		go func() {
			slog.Info("Starting profiler")
			http.ListenAndServe(":6060", nil)
		}()
	}

	// Log the configuration of the worker at startup so we can observe it.
	slog.InfoContext(ctx, "Starting worker", "config", cfg, "features", featureflags.State())

	if err := messageLoop(ctx, cfg, reg); err != nil {
		slog.ErrorContext(ctx, "Error encountered", "error", err)
	}
}
