package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ossf/entropy-analysis/internal/entropysource"
	"github.com/ossf/entropy-analysis/internal/sampling"
	"github.com/ossf/entropy-analysis/pkg/api/qualityrun"
)

// Command-line tool to capture raw samples from a list of entropy sources,
// one source spec per line. The files can later be analysed offline with
// "analyze -source file:<path>".
var (
	specFilePath = flag.String("f", "", "file containing list of source specs")
	captureDir   = flag.String("d", "", "directory to store captured samples")
	captureSize  = flag.Int("n", 1<<20, "number of bytes to capture from each source")
)

// cmdError is a simple string error type, used when command usage
// should be printed alongside the actual error message
type cmdError struct {
	message string
}

func (c *cmdError) Error() string {
	return c.message
}

func newCmdError(message string) error {
	return &cmdError{message}
}

func captureSource(ctx context.Context, w io.Writer, spec, dir string, n int) error {
	src, err := entropysource.Open(ctx, spec)
	if err != nil {
		return err
	}
	defer entropysource.Close(src)

	fmt.Fprintf(w, "[%s] %d bytes", entropysource.Name(src), n)

	sample, err := sampling.Capture(src, n)
	if err != nil {
		fmt.Fprintln(w)
		return err
	}
	capturePath := filepath.Join(dir, qualityrun.SafeName(spec)+".bin")
	if err := os.WriteFile(capturePath, sample.Bytes(), 0o644); err != nil {
		fmt.Fprintln(w)
		return err
	}
	fmt.Fprintf(w, " -> %s\n", capturePath)
	return nil
}

func checkDirectoryExists(path string) error {
	stat, err := os.Stat(path)

	if err != nil && errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("path %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("could not stat %s: %w", path, err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	return nil
}

func processFileLine(ctx context.Context, w io.Writer, text, dir string, n int) error {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) == 0 || trimmed[0] == '#' {
		return nil
	}

	if err := captureSource(ctx, w, trimmed, dir, n); err != nil {
		return fmt.Errorf("could not capture %s: %w", trimmed, err)
	}

	return nil
}

// captureAll processes every line of r and reports per-line failures to
// errOut without stopping.
func captureAll(ctx context.Context, r io.Reader, w, errOut io.Writer, dir string, n int) (failed int, err error) {
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line += 1 {
		if err := processFileLine(ctx, w, scanner.Text(), dir, n); err != nil {
			fmt.Fprintf(errOut, "line %d: %v\n", line, err)
			failed++
		}
	}
	return failed, scanner.Err()
}

func run() error {
	flag.Parse()

	if *specFilePath == "" {
		return newCmdError("Please specify sources to capture using -f <file>")
	}
	if *captureSize < 0 {
		return newCmdError("-n must not be negative")
	}
	if *captureDir == "" {
		*captureDir = "."
	}

	if err := checkDirectoryExists(*captureDir); err != nil {
		return err
	}

	specFile, err := os.Open(*specFilePath)
	if err != nil {
		return err
	}

	defer specFile.Close()

	_, err = captureAll(context.Background(), specFile, os.Stdout, os.Stderr, *captureDir, *captureSize)
	return err
}

func main() {
	if err := run(); err != nil {
		var cmdErr *cmdError
		if errors.As(err, &cmdErr) {
			flag.Usage()
			fmt.Fprintf(os.Stderr, "\n")
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
