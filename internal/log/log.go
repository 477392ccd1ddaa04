// Package log configures structured logging for the entropy analysis
// commands. Records are written through log/slog, backed by a Zap core.
//
// Call Initialize once at startup, before the first log statement.
package log

import (
	golog "log"
	"log/slog"
	"strings"

	"github.com/blendle/zapdriver"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// LoggingEnv selects the logging configuration for an environment.
type LoggingEnv string

func (e LoggingEnv) String() string {
	return string(e)
}

const (
	LoggingEnvDev  LoggingEnv = "dev"
	LoggingEnvProd LoggingEnv = "prod"
)

var (
	currentEnv = LoggingEnvDev
	zapLogger  = zap.NewNop()
)

// Initialize builds the Zap logger for env and installs it as the slog
// default. "prod" uses the Stackdriver (zapdriver) production config, anything
// else the Zap development config. The returned function flushes buffered
// entries and should be deferred by main.
func Initialize(env string) func() {
	var (
		logger *zap.Logger
		err    error
	)
	switch LoggingEnv(strings.ToLower(env)) {
	case LoggingEnvProd:
		currentEnv = LoggingEnvProd
		config := zapdriver.NewProductionConfig()
		// Every analysis completion matters; never drop entries.
		config.Sampling = nil
		logger, err = config.Build(zapdriver.WrapCore())
	default:
		currentEnv = LoggingEnvDev
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		golog.Panic(err)
	}
	zapLogger = logger
	zap.RedirectStdLog(logger)
	slog.SetDefault(NewLogger(logger.Core()))
	return func() { _ = logger.Sync() }
}

// ZapLogger returns the logger built by Initialize, for code that logs with
// Zap directly. Before Initialize it discards everything.
func ZapLogger() *zap.Logger {
	return zapLogger
}

// NewLogger returns an slog.Logger writing to core that also emits any
// attributes attached to the context with ContextWithAttrs.
func NewLogger(core zapcore.Core) *slog.Logger {
	return slog.New(NewContextLogHandler(zapslog.NewHandler(core, &zapslog.HandlerOptions{
		AddSource: true,
	})))
}

// LabelAttr returns an attribute that zapdriver turns into a Cloud Logging
// label in production. Elsewhere it is a plain string attribute.
func LabelAttr(key, value string) slog.Attr {
	if currentEnv == LoggingEnvProd {
		return slog.String("labels."+key, value)
	}
	return slog.String(key, value)
}
