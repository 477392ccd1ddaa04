package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ossf/entropy-analysis/internal/featureflags"
	"github.com/ossf/entropy-analysis/internal/resultstore"
	"github.com/ossf/entropy-analysis/internal/sampling"
	"github.com/ossf/entropy-analysis/pkg/api/qualityrun"
)

// ResultStores holds ResultStore instances for saving each kind of analysis
// data. They can be nil, in which case saving that kind of data is a no-op.
type ResultStores struct {
	Records *resultstore.ResultStore
	Samples *resultstore.ResultStore
}

// SaveAnalysisData saves the record of a run and, when the SaveRawSample
// feature is enabled, the sample it was computed from. The byte frequency
// table is dropped from the record unless ReportByteFrequency is enabled.
// If the record cannot be saved the sample is not attempted.
func SaveAnalysisData(ctx context.Context, key qualityrun.Key, dest ResultStores, a sampling.Analysis, sample sampling.ByteSample) error {
	if dest.Records != nil {
		if !featureflags.ReportByteFrequency.Enabled() {
			a = a.WithoutFrequency()
		}
		if err := dest.Records.Save(ctx, key, a); err != nil {
			return fmt.Errorf("failed to save analysis record to %s: %w", dest.Records, err)
		}
	}

	if dest.Samples == nil || !featureflags.SaveRawSample.Enabled() {
		return nil
	}

	start := time.Now()
	if err := dest.Samples.SaveSample(ctx, key, sample); err != nil {
		return fmt.Errorf("failed to save raw sample to %s: %w", dest.Samples, err)
	}
	slog.InfoContext(ctx, "Sample upload duration",
		"bytes", sample.Len(),
		"sample_upload_duration", time.Since(start))
	return nil
}
