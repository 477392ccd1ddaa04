package notification

import (
	"encoding/json"
	"fmt"

	"gocloud.dev/pubsub"

	apinotification "github.com/ossf/entropy-analysis/pkg/api/notification"
)

// ParseJSON decodes the body of a completion message.
func ParseJSON(msg *pubsub.Message) (apinotification.AnalysisCompletion, error) {
	var n apinotification.AnalysisCompletion
	if err := json.Unmarshal(msg.Body, &n); err != nil {
		return n, fmt.Errorf("error unmarshalling json: %w", err)
	}
	return n, nil
}
