// Package notification publishes completion messages for analysis runs.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"gocloud.dev/pubsub"

	"github.com/ossf/entropy-analysis/internal/sampling"
	apinotification "github.com/ossf/entropy-analysis/pkg/api/notification"
	"github.com/ossf/entropy-analysis/pkg/api/qualityrun"
)

// PublishAnalysisCompletion sends an AnalysisCompletion for the run key with
// result a to topic. The source and verdict are also set as message metadata
// so subscribers can filter without decoding the body.
func PublishAnalysisCompletion(ctx context.Context, topic *pubsub.Topic, key qualityrun.Key, a sampling.Analysis) error {
	body, err := json.Marshal(apinotification.AnalysisCompletion{
		Run:          key,
		OverallScore: a.OverallScore,
		Consistent:   a.Consistent,
	})
	if err != nil {
		return fmt.Errorf("failed to encode completion notification: %w", err)
	}
	err = topic.Send(ctx, &pubsub.Message{
		Body: body,
		Metadata: map[string]string{
			"source":     key.Source,
			"consistent": fmt.Sprint(a.Consistent),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send completion notification: %w", err)
	}
	return nil
}
