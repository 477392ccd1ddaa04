// Package proxy forwards messages from a subscription to a topic, rewriting
// each one on the way.
package proxy

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"gocloud.dev/pubsub"
)

// MessageMutateFunc turns a received message into the message to forward.
// An error drops the message.
type MessageMutateFunc func(*pubsub.Message) (*pubsub.Message, error)

type PubSubProxy struct {
	topic        *pubsub.Topic
	subscription *pubsub.Subscription
}

func New(topic *pubsub.Topic, subscription *pubsub.Subscription) *PubSubProxy {
	return &PubSubProxy{
		topic:        topic,
		subscription: subscription,
	}
}

// Listen forwards messages until receiving fails, which includes ctx being
// cancelled. Messages in flight are finished before it returns.
func (proxy *PubSubProxy) Listen(ctx context.Context, logger *zap.Logger, preprocess MessageMutateFunc) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		msg, err := proxy.subscription.Receive(ctx)
		if err != nil {
			logger.With(zap.Error(err)).Error("Error receiving message")
			return err
		}
		wg.Add(1)
		go func(m *pubsub.Message) {
			defer wg.Done()
			logger := logger.With(zap.String("message_id", m.LoggableID))
			outMsg, err := preprocess(m)
			if err != nil {
				// Failure to parse and process messages should result in an acknowledgement
				// to avoid the message being redelivered.
				logger.With(zap.Error(err)).Warn("Error processing message")
				m.Ack()
				return
			}
			if err := proxy.topic.Send(ctx, outMsg); err != nil {
				logger.With(zap.Error(err)).Error("Error sending message")
				if m.Nackable() {
					m.Nack()
				}
				return
			}
			logger.Info("Sent message successfully", zap.Any("metadata", outMsg.Metadata))
			m.Ack()
		}(msg)
	}
}
