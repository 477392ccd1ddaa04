package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gocloud.dev/pubsub/mempubsub"

	"github.com/ossf/entropy-analysis/internal/sampling"
	apinotification "github.com/ossf/entropy-analysis/pkg/api/notification"
	"github.com/ossf/entropy-analysis/pkg/api/qualityrun"
	pkgnotification "github.com/ossf/entropy-analysis/pkg/notification"
)

func TestPublishAnalysisCompletion(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	topic := mempubsub.NewTopic()
	defer topic.Shutdown(ctx)
	sub := mempubsub.NewSubscription(topic, time.Minute)
	defer sub.Shutdown(ctx)

	key := qualityrun.Key{Source: "constant:0x00", RunID: "r1"}
	a := sampling.Analyze("Constant 0x00", sampling.NewByteSample(make([]byte, 100)))

	if err := PublishAnalysisCompletion(ctx, topic, key, a); err != nil {
		t.Fatalf("PublishAnalysisCompletion() error = %v", err)
	}

	msg, err := sub.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	msg.Ack()

	got, err := pkgnotification.ParseJSON(msg)
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	want := apinotification.AnalysisCompletion{Run: key, OverallScore: a.OverallScore, Consistent: false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("notification mismatch (-want +got):\n%s", diff)
	}
	if msg.Metadata["source"] != "constant:0x00" || msg.Metadata["consistent"] != "false" {
		t.Errorf("Metadata = %v", msg.Metadata)
	}
}
