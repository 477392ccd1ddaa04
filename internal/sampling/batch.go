package sampling

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ossf/entropy-analysis/internal/entropysource"
)

// Job is one analysis to run as part of a batch.
type Job struct {
	Source     entropysource.Source
	SampleSize int
}

// RunBatch runs the jobs concurrently, at most limit at a time (no limit if
// limit <= 0), and returns their analyses in job order. The first failure
// cancels the jobs that have not started yet and is returned.
//
// Jobs sharing a Source must wrap it with Exclusive.
func RunBatch(ctx context.Context, jobs []Job, limit int) ([]Analysis, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]Analysis, len(jobs))
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := Run(ctx, job.Source, job.SampleSize)
			if err != nil {
				return fmt.Errorf("job %d: %w", i, err)
			}
			results[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
