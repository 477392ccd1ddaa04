package worker

import (
	"errors"
	"fmt"
	"strconv"

	"gocloud.dev/pubsub"

	"github.com/ossf/entropy-analysis/pkg/api/qualityrun"
)

// MaxSampleSize bounds the sample size a request may ask for.
const MaxSampleSize = 64 << 20

var (
	ErrMissingSource     = errors.New("source is empty")
	ErrInvalidSampleSize = errors.New("invalid sample size")
)

// Request is an analysis request decoded from the metadata of a pubsub
// message.
type Request struct {
	// Source is an entropy source spec, as accepted by entropysource.Open.
	Source string

	// SampleSize is the number of bytes to capture.
	SampleSize int

	// RunID is optional. A random one is generated when it is empty.
	RunID string
}

// Key returns the run key the results of req are stored under.
func (req Request) Key() qualityrun.Key {
	if req.RunID == "" {
		return qualityrun.NewKey(req.Source)
	}
	return qualityrun.Key{Source: req.Source, RunID: req.RunID}
}

// ParseRequest reads a Request from the "source", "sample_size" and "run_id"
// metadata of msg. defaultSize is used when sample_size is absent.
func ParseRequest(msg *pubsub.Message, defaultSize int) (Request, error) {
	req := Request{
		Source:     msg.Metadata["source"],
		SampleSize: defaultSize,
		RunID:      msg.Metadata["run_id"],
	}
	if req.Source == "" {
		return Request{}, ErrMissingSource
	}
	if s := msg.Metadata["sample_size"]; s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Request{}, fmt.Errorf("%w %q: %w", ErrInvalidSampleSize, s, err)
		}
		req.SampleSize = n
	}
	if req.SampleSize <= 0 || req.SampleSize > MaxSampleSize {
		return Request{}, fmt.Errorf("%w: %d", ErrInvalidSampleSize, req.SampleSize)
	}
	return req, nil
}
