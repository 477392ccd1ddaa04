package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ossf/entropy-analysis/internal/log"
	"github.com/ossf/entropy-analysis/internal/stats"
	"github.com/ossf/entropy-analysis/pkg/api/qualityrun"
)

// Command-line tool to summarise the analysis records stored in a results
// bucket, per source.
var (
	bucket     = flag.String("bucket", "", "bucket URL holding analysis records")
	prefix     = flag.String("prefix", "", "only read records below this prefix")
	numWorkers = flag.Int("workers", 16, "number of records read concurrently")
	jsonOutput = flag.Bool("json", false, "print the summary as JSON")
)

type sourceSummary struct {
	Source     string        `json:"source"`
	Runs       int           `json:"runs"`
	Consistent int           `json:"consistent"`
	Score      stats.Summary `json:"overall_score"`
}

// loadRecords reads every .json object below prefix as a qualityrun.Record,
// using workers concurrent readers. Objects that fail to read or decode are
// reported together in the returned error; the records read so far are
// still returned.
func loadRecords(ctx context.Context, bkt *blob.Bucket, prefix string, workers int) ([]qualityrun.Record, error) {
	if workers < 1 {
		workers = 1
	}

	var (
		mu      sync.Mutex
		records []qualityrun.Record
		errs    []error
	)
	queue := make(chan string, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for key := range queue {
				var record qualityrun.Record
				data, err := bkt.ReadAll(ctx, key)
				if err == nil {
					err = json.Unmarshal(data, &record)
				}

				mu.Lock()
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", key, err))
				} else {
					records = append(records, record)
				}
				mu.Unlock()
			}
		}()
	}

	it := bkt.List(&blob.ListOptions{Prefix: prefix})
	var listErr error
	for {
		obj, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			listErr = err
			break
		}

		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}

		queue <- obj.Key
	}
	close(queue)
	wg.Wait()

	return records, errors.Join(append(errs, listErr)...)
}

// summarize groups records by source, sorted by source spec.
func summarize(records []qualityrun.Record) []sourceSummary {
	scores := make(map[string][]float64)
	consistent := make(map[string]int)
	for _, r := range records {
		scores[r.Run.Source] = append(scores[r.Run.Source], r.Analysis.OverallScore)
		if r.Analysis.Consistent {
			consistent[r.Run.Source]++
		}
	}

	sources := maps.Keys(scores)
	slices.Sort(sources)

	summaries := make([]sourceSummary, 0, len(sources))
	for _, source := range sources {
		summaries = append(summaries, sourceSummary{
			Source:     source,
			Runs:       len(scores[source]),
			Consistent: consistent[source],
			Score:      stats.Summarise(scores[source]),
		})
	}
	return summaries
}

func writeTable(w io.Writer, summaries []sourceSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tRUNS\tCONSISTENT\tSCORE MEAN\tSCORE MIN\tSCORE MEDIAN\tSCORE MAX")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f\t%.1f\t%.1f\t%.1f\n",
			s.Source, s.Runs, s.Consistent, s.Score.Mean, s.Score.Min, s.Score.Median, s.Score.Max)
	}
	return tw.Flush()
}

func main() {
	flush := log.Initialize(os.Getenv("LOGGER_ENV"))
	defer flush()

	flag.Parse()
	if *bucket == "" {
		flag.Usage()
		return
	}

	ctx := context.Background()
	bkt, err := blob.OpenBucket(ctx, *bucket)
	if err != nil {
		slog.Error("Failed to open bucket", "bucket", *bucket, "error", err)
		os.Exit(1)
	}
	defer bkt.Close()

	records, err := loadRecords(ctx, bkt, *prefix, *numWorkers)
	if err != nil {
		slog.Warn("Some records could not be read", "error", err)
	}

	summaries := summarize(records)
	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(summaries)
	} else {
		err = writeTable(os.Stdout, summaries)
	}
	if err != nil {
		slog.Error("Failed to write summary", "error", err)
	}
}
