package trigger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eduapp-backend/pkg/logger"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// Subscriber pulls change events from a Pub/Sub subscription and feeds them
// into the bus.
type Subscriber struct {
	pubsubClient *pubsub.Client
	bus          *Bus
	log          *logger.Logger
	topicName    string
	subName      string
}

func NewSubscriber(ctx context.Context, projectID, topicName, subName string, bus *Bus, log *logger.Logger, opts ...option.ClientOption) (*Subscriber, error) {
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	return &Subscriber{
		pubsubClient: client,
		bus:          bus,
		log:          log.With("topic", topicName, "subscription", subName),
		topicName:    topicName,
		subName:      subName,
	}, nil
}

// Start blocks receiving messages until ctx is done. The subscription is
// created on the topic when it does not exist yet.
func (s *Subscriber) Start(ctx context.Context) error {
	sub, err := s.ensureSubscription(ctx)
	if err != nil {
		return err
	}

	s.log.Info("listening for change events")
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.process(ctx, msg.ID, msg.Data)
		// Acked even when a trigger failed: redelivery is not a retry policy we offer.
		msg.Ack()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("receive on %s: %w", s.subName, err)
	}
	return nil
}

func (s *Subscriber) Close() error {
	return s.pubsubClient.Close()
}

func (s *Subscriber) ensureSubscription(ctx context.Context) (*pubsub.Subscription, error) {
	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check subscription %s: %w", s.subName, err)
	}
	if exists {
		return sub, nil
	}

	topic := s.pubsubClient.Topic(s.topicName)
	topicExists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check topic %s: %w", s.topicName, err)
	}
	if !topicExists {
		return nil, fmt.Errorf("topic %s does not exist, cannot create subscription", s.topicName)
	}

	sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
		Topic:       topic,
		AckDeadline: 60 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("create subscription %s: %w", s.subName, err)
	}
	s.log.Info("created subscription")
	return sub, nil
}

// process decodes one message and dispatches it. Malformed messages are
// logged and dropped.
func (s *Subscriber) process(ctx context.Context, messageID string, data []byte) []Result {
	evt, err := decodeMessage(messageID, data)
	if err != nil {
		s.log.Warn("dropping malformed change event", "message_id", messageID, "error", err)
		return nil
	}
	results := s.bus.Dispatch(ctx, evt)
	if len(results) == 0 {
		s.log.Debug("no trigger matched", "event_id", evt.ID, "path", evt.Path, "change", evt.Type)
	}
	return results
}
