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
	"runtime"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ossf/entropy-analysis/internal/bench"
	"github.com/ossf/entropy-analysis/internal/entropysource"
	"github.com/ossf/entropy-analysis/internal/featureflags"
	"github.com/ossf/entropy-analysis/internal/log"
	"github.com/ossf/entropy-analysis/internal/resultstore"
	"github.com/ossf/entropy-analysis/internal/sampling"
	"github.com/ossf/entropy-analysis/internal/utils"
	"github.com/ossf/entropy-analysis/internal/worker"
	"github.com/ossf/entropy-analysis/pkg/api/qualityrun"
)

var (
	sampleSize   = flag.Int("size", 1<<20, "number of bytes to sample from each source")
	jsonOutput   = flag.Bool("json", false, "print results as JSON instead of text")
	upload       = flag.String("upload", "", "bucket URL for uploading analysis records")
	repeat       = flag.Int("repeat", 1, "number of consecutive samples to analyse per source")
	concurrency  = flag.Int("concurrency", runtime.NumCPU(), "maximum number of analyses run at once")
	runBench     = flag.Bool("bench", false, "measure source throughput instead of analysing")
	iterations   = flag.Int("iterations", 10, "number of benchmark iterations (with -bench)")
	listSources  = flag.Bool("list-sources", false, "prints out a list of available source kinds")
	features     = flag.String("features", "", "override features that are enabled/disabled by default")
	listFeatures = flag.Bool("list-features", false, "list available features that can be toggled")
	help         = flag.Bool("help", false, "print help on available options")
	sources      = utils.NewListFlag("source", []string{"system"},
		"list of entropy sources to analyse, separated by commas. Use -list-sources to see available options")
)

func printSources(w io.Writer) {
	fmt.Fprintln(w, "Available entropy sources:")
	kinds := entropysource.Kinds()
	names := maps.Keys(kinds)
	slices.Sort(names)
	for _, k := range names {
		fmt.Fprintf(w, "  %-10s %s\n", k, kinds[k])
	}
	fmt.Fprintln(w)
}

func printFeatureFlags(w io.Writer) {
	fmt.Fprintf(w, "Feature List\n\n")
	fmt.Fprintf(w, "%-30s %s\n", "Name", "Default")
	fmt.Fprintf(w, "----------------------------------------\n")

	// print Off/On rather than 'false' and 'true'
	state := featureflags.State()
	stateStrings := map[bool]string{false: "Off", true: "On"}
	for _, feature := range featureflags.Names() {
		fmt.Fprintf(w, "%-30s %s\n", feature, stateStrings[state[feature]])
	}

	fmt.Fprintln(w)
}

type openedSource struct {
	spec string
	src  entropysource.Source
}

// openSources opens every spec. On error the sources already opened are
// closed.
func openSources(ctx context.Context, specs []string) ([]openedSource, error) {
	var opened []openedSource
	for _, spec := range specs {
		src, err := entropysource.Open(ctx, spec)
		if err != nil {
			closeSources(opened)
			return nil, err
		}
		opened = append(opened, openedSource{spec: spec, src: src})
	}
	return opened, nil
}

func closeSources(opened []openedSource) {
	for _, o := range opened {
		if err := entropysource.Close(o.src); err != nil {
			slog.Warn("Failed to close source", "source", o.spec, "error", err)
		}
	}
}

// makeJobs returns n jobs per source, each sampling size bytes. Repeated
// jobs read consecutive parts of the source's stream, so a source used more
// than once is wrapped with sampling.Exclusive when the ExclusiveSources
// feature is on. Otherwise the returned limit is 1 so that no source is
// filled concurrently.
func makeJobs(opened []openedSource, n, size, limit int) ([]sampling.Job, []string, int) {
	var (
		jobs  []sampling.Job
		specs []string
	)
	for _, o := range opened {
		src := o.src
		if n > 1 {
			if featureflags.ExclusiveSources.Enabled() {
				src = sampling.Exclusive(src)
			} else {
				limit = 1
			}
		}
		for i := 0; i < n; i++ {
			jobs = append(jobs, sampling.Job{Source: src, SampleSize: size})
			specs = append(specs, o.spec)
		}
	}
	return jobs, specs, limit
}

// prepare drops the byte frequency table when the feature is off.
func prepare(results []sampling.Analysis) []sampling.Analysis {
	if featureflags.ReportByteFrequency.Enabled() {
		return results
	}
	return utils.Transform(results, sampling.Analysis.WithoutFrequency)
}

func writeResults(w io.Writer, results []sampling.Analysis, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(prepare(results))
	}
	for i, a := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := a.WriteText(w, featureflags.ReportByteFrequency.Enabled()); err != nil {
			return err
		}
	}
	return nil
}

func uploadResults(ctx context.Context, bucketURL string, specs []string, results []sampling.Analysis) error {
	stores := worker.ResultStores{Records: resultstore.New(bucketURL, resultstore.ConstructPath())}
	for i, a := range results {
		key := qualityrun.NewKey(specs[i])
		if err := worker.SaveAnalysisData(ctx, key, stores, a, sampling.ByteSample{}); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Uploaded analysis", "source", specs[i], "run", key.String())
	}
	return nil
}

func benchmark(w io.Writer, opened []openedSource, size, n int, asJSON bool) error {
	var results []bench.Result
	for _, o := range opened {
		r, err := bench.BenchmarkAvg(o.src, size, n)
		if err != nil {
			return fmt.Errorf("benchmark of %s failed: %w", o.spec, err)
		}
		results = append(results, r)
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for i, r := range results {
		fmt.Fprintf(w, "== %s ==\n%s\n", r.Source, r)
		if i < len(results)-1 {
			fmt.Fprintln(w)
		}
	}
	return nil
}

func run(ctx context.Context, w io.Writer) error {
	specs := utils.RemoveDuplicates(sources.Values)
	if len(specs) == 0 {
		return errors.New("no sources given")
	}
	if *repeat < 1 {
		return fmt.Errorf("invalid -repeat %d", *repeat)
	}

	opened, err := openSources(ctx, specs)
	if err != nil {
		return err
	}
	defer closeSources(opened)

	if *runBench {
		return benchmark(w, opened, *sampleSize, *iterations, *jsonOutput)
	}

	jobs, jobSpecs, limit := makeJobs(opened, *repeat, *sampleSize, *concurrency)
	results, err := sampling.RunBatch(ctx, jobs, limit)
	if err != nil {
		return err
	}

	if *upload != "" {
		if err := uploadResults(ctx, *upload, jobSpecs, results); err != nil {
			return err
		}
	}
	return writeResults(w, results, *jsonOutput)
}

func main() {
	flush := log.Initialize(os.Getenv("LOGGER_ENV"))
	defer flush()

	sources.Register(flag.CommandLine)
	flag.Parse()

	if err := featureflags.Update(*features); err != nil {
		slog.Error("Failed to parse flags", "error", err)
		os.Exit(1)
	}

	if *help {
		flag.Usage()
		return
	}

	if *listFeatures {
		printFeatureFlags(os.Stdout)
		return
	}

	if *listSources {
		printSources(os.Stdout)
		return
	}

	if err := run(context.Background(), os.Stdout); err != nil {
		slog.Error("Analysis failed", "error", err)
		flush()
		os.Exit(1)
	}
}
