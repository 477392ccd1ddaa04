// Package featureflags holds boolean switches for optional behaviour. Flags
// are toggled at startup from a comma separated list such as
// "SaveRawSample,-ReportByteFrequency".
package featureflags

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var ErrUndefinedFlag = errors.New("undefined feature flag")

var registry = make(map[string]*FeatureFlag)

// FeatureFlag is a single named switch.
type FeatureFlag struct {
	name    string
	enabled bool
}

func new(name string, enabled bool) *FeatureFlag {
	ff := &FeatureFlag{name: name, enabled: enabled}
	registry[name] = ff
	return ff
}

// Name returns the name used to toggle the flag.
func (ff *FeatureFlag) Name() string {
	return ff.name
}

// Enabled reports whether the flag is on.
func (ff *FeatureFlag) Enabled() bool {
	return ff.enabled
}

// Update applies a comma separated list of flag names. A bare name enables
// the flag and a name prefixed with "-" disables it. Unknown names produce an
// error wrapping ErrUndefinedFlag and leave every flag unchanged.
func Update(flags string) error {
	if flags == "" {
		return nil
	}
	changes := make(map[*FeatureFlag]bool)
	for _, item := range strings.Split(flags, ",") {
		item = strings.TrimSpace(item)
		enabled := !strings.HasPrefix(item, "-")
		name := strings.TrimPrefix(item, "-")
		ff, ok := registry[name]
		if !ok {
			return fmt.Errorf("%w %q", ErrUndefinedFlag, name)
		}
		changes[ff] = enabled
	}
	for ff, enabled := range changes {
		ff.enabled = enabled
	}
	return nil
}

// State returns the current value of every flag by name.
func State() map[string]bool {
	state := make(map[string]bool, len(registry))
	for name, ff := range registry {
		state[name] = ff.enabled
	}
	return state
}

// Names returns the registered flag names in sorted order.
func Names() []string {
	names := maps.Keys(registry)
	slices.Sort(names)
	return names
}
