package worker

import (
	"context"
	"log/slog"

	"github.com/ossf/entropy-analysis/internal/log"
	"github.com/ossf/entropy-analysis/internal/sampling"
	"github.com/ossf/entropy-analysis/pkg/api/qualityrun"
)

/*
NOTE: These strings may be matched by log based metrics and alerts, so
change them with care.
*/
const (
	gotRequestLogMsg       = "Got request"
	invalidRequestLogMsg   = "Invalid request"
	analysisCompleteLogMsg = "Analysis completed successfully"
	analysisErrorLogMsg    = "Analysis run failed"
)

// LogRequest records that a request for analysis was received by the worker.
func LogRequest(ctx context.Context, req Request) {
	slog.InfoContext(ctx, gotRequestLogMsg,
		log.LabelAttr("source", req.Source),
		"sample_size", req.SampleSize,
		"run_id", req.RunID)
}

// LogInvalidRequest records a message that was dropped because it could not
// be decoded into a Request.
func LogInvalidRequest(ctx context.Context, metadata map[string]string, err error) {
	slog.WarnContext(ctx, invalidRequestLogMsg,
		"metadata", metadata,
		"error", err)
}

// LogAnalysisError indicates the source could not be opened or sampled, so
// no result exists for the run.
func LogAnalysisError(ctx context.Context, key qualityrun.Key, err error) {
	slog.ErrorContext(ctx, analysisErrorLogMsg,
		log.LabelAttr("source", key.Source),
		"error", err)
}

// LogAnalysisResult records the verdict of a completed run. The run ID is
// expected among the context attributes.
func LogAnalysisResult(ctx context.Context, key qualityrun.Key, a sampling.Analysis) {
	slog.InfoContext(ctx, analysisCompleteLogMsg,
		log.LabelAttr("source", key.Source),
		"grade", string(a.Grade),
		"overall_score", a.OverallScore,
		"tests_passed", a.TestsPassed,
		"consistent", a.Consistent)
}
