// Package qualityrun defines the persisted form of an entropy quality
// analysis.
package qualityrun

import (
	"strings"

	"github.com/google/uuid"
)

// Key identifies one analysis run of one source.
type Key struct {
	// Source is the source spec that was analysed, such as "mock:7".
	Source string `json:"source"`
	RunID  string `json:"run_id"`
}

// NewKey returns a Key for source with a fresh random run ID.
func NewKey(source string) Key {
	return Key{Source: source, RunID: uuid.NewString()}
}

// SafeName replaces every character of s outside [A-Za-z0-9._-] with '_' so
// that it can be used in storage object names.
func SafeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

// String returns SafeName(Source) followed by '-' and the run ID.
func (k Key) String() string {
	return SafeName(k.Source) + "-" + k.RunID
}
