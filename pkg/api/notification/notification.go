// Package notification defines the message published when an analysis run
// completes.
package notification

import (
	"github.com/ossf/entropy-analysis/pkg/api/qualityrun"
)

// AnalysisCompletion announces a finished run. Consumers fetch the full
// record from the results bucket using Run.
type AnalysisCompletion struct {
	Run          qualityrun.Key `json:"run"`
	OverallScore float64        `json:"overall_score"`
	Consistent   bool           `json:"consistent"`
}
