// Package pubsubextender keeps a pubsub message leased while a long analysis
// runs, by periodically pushing its ack deadline back.
package pubsubextender

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/gcppubsub"

	"github.com/ossf/entropy-analysis/internal/featureflags"
)

const (
	defaultGracePeriod = 60 * time.Second
	defaultDeadline    = 300 * time.Second
)

var ErrInvalidGracePeriod = errors.New("invalid grace period")

// driver talks to the pubsub service behind a subscription.
type driver interface {
	// ExtendMessageDeadline asks the service to move the ack deadline of msg
	// to deadline from now.
	ExtendMessageDeadline(ctx context.Context, msg *pubsub.Message, deadline time.Duration) error

	// GetSubscriptionDeadline returns the ack deadline configured on the
	// subscription, or 0 if unknown.
	GetSubscriptionDeadline(ctx context.Context) (time.Duration, error)
}

// noopDriver is used for services that need no explicit extension.
type noopDriver struct{}

func (noopDriver) ExtendMessageDeadline(context.Context, *pubsub.Message, time.Duration) error {
	return nil
}

func (noopDriver) GetSubscriptionDeadline(context.Context) (time.Duration, error) {
	return 0, nil
}

// Extender starts MessageExtenders for the messages of one subscription.
type Extender struct {
	driver      driver
	Deadline    time.Duration
	GracePeriod time.Duration
}

func driverFor(u *url.URL, sub *pubsub.Subscription) (driver, error) {
	if !featureflags.PubSubExtender.Enabled() || u.Scheme != gcppubsub.Scheme {
		return noopDriver{}, nil
	}
	return newGCPDriver(u, sub)
}

// New returns an Extender for sub, opened from subURL. Only gcppubsub
// subscriptions are actively extended.
func New(ctx context.Context, subURL string, sub *pubsub.Subscription) (*Extender, error) {
	u, err := url.Parse(subURL)
	if err != nil {
		return nil, err
	}
	d, err := driverFor(u, sub)
	if err != nil {
		return nil, err
	}
	deadline, err := d.GetSubscriptionDeadline(ctx)
	if err != nil {
		return nil, err
	}
	if deadline == 0 {
		deadline = defaultDeadline
	}
	return &Extender{driver: d, Deadline: deadline, GracePeriod: defaultGracePeriod}, nil
}

// MessageExtender extends the deadline of a single message until stopped.
type MessageExtender struct {
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
	stopped sync.Once
	running bool
}

// Start extends the deadline of msg every Deadline-GracePeriod until Stop is
// called or an extension fails. onExtend, if set, runs after each success.
func (e *Extender) Start(ctx context.Context, msg *pubsub.Message, onExtend func()) (*MessageExtender, error) {
	interval := e.Deadline - e.GracePeriod
	if interval <= 0 {
		return nil, fmt.Errorf("%w: deadline %v is not larger than grace period %v", ErrInvalidGracePeriod, e.Deadline, e.GracePeriod)
	}

	ctx, cancel := context.WithCancel(ctx)
	me := &MessageExtender{cancel: cancel, done: make(chan struct{}), running: true}
	go func() {
		defer close(me.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := e.driver.ExtendMessageDeadline(ctx, msg, e.Deadline); err != nil {
					me.err = err
					return
				}
				if onExtend != nil {
					onExtend()
				}
			}
		}
	}()
	return me, nil
}

// IsRunning reports whether Stop has not been called yet.
func (me *MessageExtender) IsRunning() bool {
	return me.running
}

// Stop ends the extension and returns the error that ended it early, if any.
// Later calls return nil.
func (me *MessageExtender) Stop() error {
	var err error
	me.stopped.Do(func() {
		me.cancel()
		<-me.done
		me.running = false
		err = me.err
	})
	return err
}
