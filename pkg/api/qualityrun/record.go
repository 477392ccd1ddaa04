package qualityrun

import (
	"github.com/ossf/entropy-analysis/internal/sampling"
)

// Record is serialised to produce the JSON result file of a run.
type Record struct {
	Run              Key               `json:"Run"`
	CreatedTimestamp int64             `json:"CreatedTimestamp"`
	Analysis         sampling.Analysis `json:"Analysis"`
}
