package sampling

import (
	"context"
	"log/slog"

	"github.com/ossf/entropy-analysis/internal/bitstats"
	"github.com/ossf/entropy-analysis/internal/entropysource"
	"github.com/ossf/entropy-analysis/internal/log"
	"github.com/ossf/entropy-analysis/internal/metrics"
	"github.com/ossf/entropy-analysis/internal/randtest"
	"github.com/ossf/entropy-analysis/internal/utils"
)

// Analysis is the combined result of the metrics and the test battery over
// one sample.
type Analysis struct {
	SourceName   string                 `json:"source_name"`
	SampleSHA256 string                 `json:"sample_sha256"`
	Metrics      metrics.QualityMetrics `json:"metrics"`
	OverallScore float64                `json:"overall_score"`
	Grade        metrics.Grade          `json:"grade"`
	Report       randtest.Report        `json:"tests"`
	TestsPassed  int                    `json:"tests_passed"`
	Consistent   bool                   `json:"consistent"`
}

// Analyze computes the Analysis of an already captured sample. It is
// deterministic: the same sample always gives the same Analysis.
func Analyze(sourceName string, sample ByteSample) Analysis {
	m := metrics.FromSample(sample.data)
	report := randtest.RunAll(sample.data)
	return Analysis{
		SourceName:   sourceName,
		SampleSHA256: utils.SHA256Hex(sample.data),
		Metrics:      m,
		OverallScore: m.OverallScore(),
		Grade:        m.Grade(),
		Report:       report,
		TestsPassed:  report.PassedCount(),
		Consistent:   report.Consistent(),
	}
}

// Run captures n bytes from src and analyses them.
func Run(ctx context.Context, src entropysource.Source, n int) (Analysis, error) {
	a, _, err := RunSample(ctx, src, n)
	return a, err
}

// RunSample is Run but also returns the captured sample.
func RunSample(ctx context.Context, src entropysource.Source, n int) (Analysis, ByteSample, error) {
	name := entropysource.Name(src)
	ctx = log.ContextWithAttrs(ctx, log.LabelAttr("source", name))

	slog.DebugContext(ctx, "Capturing sample", "sample_size", n)
	sample, err := Capture(src, n)
	if err != nil {
		slog.ErrorContext(ctx, "Sampling failed", "error", err)
		return Analysis{}, ByteSample{}, err
	}

	a := Analyze(name, sample)
	slog.InfoContext(ctx, "Analysis complete",
		"sample_size", sample.Len(),
		"shannon_entropy", a.Metrics.ShannonEntropy,
		"min_entropy", a.Metrics.MinEntropy,
		"overall_score", a.OverallScore,
		"tests_passed", a.TestsPassed,
		"consistent", a.Consistent)
	return a, sample, nil
}

// WithoutFrequency returns a copy of a with the byte frequency table cleared,
// for reports that omit it.
func (a Analysis) WithoutFrequency() Analysis {
	a.Metrics.ByteFrequency = bitstats.FrequencyTable{}
	return a
}
