// Package entropysource defines the boundary between the quality engine and
// the byte generators it evaluates.
//
// A Source only has to fill buffers. Naming and resetting are optional
// capabilities discovered with type assertions, so generators implement only
// what they support.
package entropysource

import (
	"errors"
	"fmt"
	"io"
)

// ErrShortFill is returned when a source delivers fewer bytes than requested.
// A partially filled buffer is never a valid sample.
var ErrShortFill = errors.New("entropy source delivered a short fill")

// UnknownName is reported for sources that do not implement Namer.
const UnknownName = "Unknown Source"

// Source supplies bytes. Fill must either fill all of p or return an error.
//
// Implementations usually carry sequential state and are not safe for
// concurrent use.
type Source interface {
	Fill(p []byte) error
}

// Namer is implemented by sources with a human readable name.
type Namer interface {
	Name() string
}

// Resetter is implemented by sources that can return to their initial state.
type Resetter interface {
	Reset()
}

// Name returns the name of src, or UnknownName if it has none.
func Name(src Source) string {
	if n, ok := src.(Namer); ok {
		return n.Name()
	}
	return UnknownName
}

// Reset resets src if it supports it and reports whether it did.
func Reset(src Source) bool {
	if r, ok := src.(Resetter); ok {
		r.Reset()
		return true
	}
	return false
}

// Func adapts a plain function to the Source interface.
type Func func(p []byte) error

// Fill implements Source.
func (f Func) Fill(p []byte) error {
	return f(p)
}

// Reader is a Source that reads from an io.Reader such as a file or a device.
type Reader struct {
	r    io.Reader
	name string
}

// NewReader returns a Source reading from r.
func NewReader(r io.Reader, name string) *Reader {
	return &Reader{r: r, name: name}
}

// Fill implements Source. Running out of input before p is full is reported
// as ErrShortFill.
func (s *Reader) Fill(p []byte) error {
	n, err := io.ReadFull(s.r, p)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: got %d of %d bytes", ErrShortFill, n, len(p))
	}
	return err
}

// Name implements Namer.
func (s *Reader) Name() string {
	return s.name
}
