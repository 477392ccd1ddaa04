package utils

import (
	"flag"
	"strings"
)

// ListFlag is a flag.Value holding a comma separated list of strings, such
// as "-source system,mock:7". Empty items are dropped.
type ListFlag struct {
	Name   string
	Values []string
	Usage  string
}

// NewListFlag returns a ListFlag with the given defaults. Call Register
// before flag.Parse.
func NewListFlag(name string, defaults []string, usage string) *ListFlag {
	return &ListFlag{Name: name, Values: defaults, Usage: usage}
}

// Set implements flag.Value.
func (l *ListFlag) Set(value string) error {
	l.Values = nil
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			l.Values = append(l.Values, item)
		}
	}
	return nil
}

func (l *ListFlag) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(l.Values, ",")
}

// Register adds the flag to fs.
func (l *ListFlag) Register(fs *flag.FlagSet) {
	fs.Var(l, l.Name, l.Usage)
}
