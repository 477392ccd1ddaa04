// Package sampling draws a sample from an entropy source once and routes the
// same bytes to both the descriptive metrics and the randomness tests.
package sampling

import (
	"fmt"

	"github.com/ossf/entropy-analysis/internal/entropysource"
)

// ByteSample is an immutable sequence of bytes captured from a source.
type ByteSample struct {
	data []byte
}

// NewByteSample returns a ByteSample holding a copy of data.
func NewByteSample(data []byte) ByteSample {
	return ByteSample{data: append([]byte(nil), data...)}
}

// Len returns the number of bytes in the sample.
func (s ByteSample) Len() int {
	return len(s.data)
}

// Bytes returns a copy of the sample.
func (s ByteSample) Bytes() []byte {
	return append([]byte(nil), s.data...)
}

// Capture fills a buffer of n bytes from src with a single bulk fill. A
// failed fill is returned as an error and no sample is produced.
func Capture(src entropysource.Source, n int) (ByteSample, error) {
	if n < 0 {
		return ByteSample{}, fmt.Errorf("invalid sample size %d", n)
	}
	buf := make([]byte, n)
	if err := src.Fill(buf); err != nil {
		return ByteSample{}, fmt.Errorf("failed to sample %s: %w", entropysource.Name(src), err)
	}
	return ByteSample{data: buf}, nil
}
