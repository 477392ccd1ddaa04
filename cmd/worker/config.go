package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/ossf/entropy-analysis/internal/resultstore"
	"github.com/ossf/entropy-analysis/internal/worker"
)

const defaultSampleSize = 1 << 20

type config struct {
	resultStores worker.ResultStores

	subURL               string
	notificationTopicURL string
	metricsAddr          string
	featureFlags         string
	loggerEnv            string
	enableProfiler       bool

	sampleSize int
}

func (c *config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("subscription", c.subURL),
		slog.String("records_store", c.resultStores.Records.String()),
		slog.String("samples_store", c.resultStores.Samples.String()),
		slog.String("topic_notification", c.notificationTopicURL),
		slog.String("metrics_addr", c.metricsAddr),
		slog.String("feature_flags", c.featureFlags),
		slog.Int("default_sample_size", c.sampleSize),
		slog.Bool("profiler", c.enableProfiler),
	)
}

func resultStoreForEnv(getenv func(string) string, key string) *resultstore.ResultStore {
	val := getenv(key)
	if val == "" {
		return nil
	}
	return resultstore.New(val, resultstore.ConstructPath())
}

func configFromEnv(getenv func(string) string) (*config, error) {
	c := &config{
		resultStores: worker.ResultStores{
			Records: resultStoreForEnv(getenv, "ENTROPY_RESULTS_BUCKET"),
			Samples: resultStoreForEnv(getenv, "ENTROPY_SAMPLES_BUCKET"),
		},
		subURL:               getenv("ENTROPY_WORKER_SUBSCRIPTION"),
		notificationTopicURL: getenv("ENTROPY_NOTIFICATION_TOPIC"),
		metricsAddr:          getenv("ENTROPY_METRICS_ADDR"),
		featureFlags:         getenv("ENTROPY_FEATURE_FLAGS"),
		loggerEnv:            getenv("LOGGER_ENV"),
		enableProfiler:       getenv("ENTROPY_ENABLE_PROFILER") != "",
		sampleSize:           defaultSampleSize,
	}
	if c.subURL == "" {
		return nil, errors.New("ENTROPY_WORKER_SUBSCRIPTION is not set")
	}
	if s := getenv("ENTROPY_SAMPLE_SIZE"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > worker.MaxSampleSize {
			return nil, fmt.Errorf("invalid ENTROPY_SAMPLE_SIZE %q", s)
		}
		c.sampleSize = n
	}
	return c, nil
}

func mustConfigFromEnv() *config {
	c, err := configFromEnv(os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return c
}
