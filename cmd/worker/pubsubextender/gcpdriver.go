package pubsubextender

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	api "cloud.google.com/go/pubsub/apiv1"
	pb "cloud.google.com/go/pubsub/apiv1/pubsubpb"
	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/gcppubsub"
)

// Bounds the service accepts for an ack deadline.
const (
	gcpMinAckDeadline = 10 * time.Second
	gcpMaxAckDeadline = 600 * time.Second
)

var fullSubscriptionPath = regexp.MustCompile("^projects/.+/subscriptions/.+$")

type gcpDriver struct {
	client       *api.SubscriberClient
	subscription string
}

// subscriptionPath accepts both gcppubsub://projects/P/subscriptions/S and
// the short gcppubsub://P/S form.
func subscriptionPath(u *url.URL) string {
	p := path.Join(u.Host, u.Path)
	if fullSubscriptionPath.MatchString(p) {
		return p
	}
	return fmt.Sprintf("projects/%s/subscriptions/%s", u.Host, strings.TrimPrefix(u.Path, "/"))
}

func newGCPDriver(u *url.URL, sub *pubsub.Subscription) (driver, error) {
	if u.Scheme != gcppubsub.Scheme {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	var client *api.SubscriberClient
	if !sub.As(&client) {
		return nil, errors.New("not a GCP subscription")
	}
	return &gcpDriver{client: client, subscription: subscriptionPath(u)}, nil
}

func clampDeadline(d time.Duration) time.Duration {
	return min(max(d, gcpMinAckDeadline), gcpMaxAckDeadline)
}

func (d *gcpDriver) ExtendMessageDeadline(ctx context.Context, msg *pubsub.Message, deadline time.Duration) error {
	var rm *pb.ReceivedMessage
	if !msg.As(&rm) {
		return errors.New("not a GCP message")
	}
	err := d.client.ModifyAckDeadline(ctx, &pb.ModifyAckDeadlineRequest{
		Subscription:       d.subscription,
		AckIds:             []string{rm.AckId},
		AckDeadlineSeconds: int32(clampDeadline(deadline) / time.Second),
	})
	if err != nil {
		return fmt.Errorf("failed to extend message deadline: %w", err)
	}
	return nil
}

func (d *gcpDriver) GetSubscriptionDeadline(ctx context.Context) (time.Duration, error) {
	s, err := d.client.GetSubscription(ctx, &pb.GetSubscriptionRequest{Subscription: d.subscription})
	if err != nil {
		return 0, err
	}
	return time.Duration(s.GetAckDeadlineSeconds()) * time.Second, nil
}
