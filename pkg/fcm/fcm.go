package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"

	"eduapp-backend/pkg/logger"
)

// MaxMulticastTokens is the largest token list FCM accepts in one multicast request
const MaxMulticastTokens = 500

// sender is the part of *messaging.Client the wrapper uses
type sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Client wraps Firebase Cloud Messaging functionality
type Client struct {
	messagingClient sender
	log             *logger.Logger
}

// NewClient creates a new FCM client from an initialized Firebase app
func NewClient(ctx context.Context, app *firebase.App, log *logger.Logger) (*Client, error) {
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Info("fcm client initialized")
	return &Client{
		messagingClient: messagingClient,
		log:             log,
	}, nil
}

// NotificationData contains the data to send in a push notification
type NotificationData struct {
	Title string
	Body  string
	Sound string            // Platform sound name, "default" for the system sound
	Data  map[string]string // Custom data payload
	// Click action
	ClickAction string // Client routing action for Android taps
}

// MulticastResult summarizes a targeted send
type MulticastResult struct {
	SuccessCount int
	FailureCount int
	// FailedTokens holds every token whose send failed
	FailedTokens []string
	// UnregisteredTokens is the subset of FailedTokens FCM reported as no longer valid
	UnregisteredTokens []string
}

// SendToTopic broadcasts a push notification to every subscriber of a topic
func (c *Client) SendToTopic(ctx context.Context, topic string, notification NotificationData) (string, error) {
	message := topicMessage(topic, notification)

	response, err := c.messagingClient.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("failed to send FCM topic message: %w", err)
	}

	c.log.Debug("fcm topic message sent", "topic", topic, "message_id", response)
	return response, nil
}

// SendToDevices sends a push notification to multiple device tokens. Lists
// longer than MaxMulticastTokens are sent in consecutive batches and the
// results merged. An error is returned only when no batch got through.
func (c *Client) SendToDevices(ctx context.Context, tokens []string, notification NotificationData) (*MulticastResult, error) {
	result := &MulticastResult{}
	var firstErr error

	for start := 0; start < len(tokens); start += MaxMulticastTokens {
		end := min(start+MaxMulticastTokens, len(tokens))
		batch := tokens[start:end]

		response, err := c.messagingClient.SendEachForMulticast(ctx, multicastMessage(batch, notification))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			c.log.Warn("fcm multicast batch failed", "batch_start", start, "batch_size", len(batch), "error", err)
			result.FailureCount += len(batch)
			result.FailedTokens = append(result.FailedTokens, batch...)
			continue
		}
		result.merge(collectFailures(batch, response))
	}

	if firstErr != nil && result.SuccessCount == 0 {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", firstErr)
	}

	c.log.Debug("fcm multicast sent", "success", result.SuccessCount, "failure", result.FailureCount)
	return result, nil
}

func (r *MulticastResult) merge(other *MulticastResult) {
	r.SuccessCount += other.SuccessCount
	r.FailureCount += other.FailureCount
	r.FailedTokens = append(r.FailedTokens, other.FailedTokens...)
	r.UnregisteredTokens = append(r.UnregisteredTokens, other.UnregisteredTokens...)
}

func collectFailures(tokens []string, response *messaging.BatchResponse) *MulticastResult {
	result := &MulticastResult{
		SuccessCount: response.SuccessCount,
		FailureCount: response.FailureCount,
	}
	for i, resp := range response.Responses {
		if resp.Success || i >= len(tokens) {
			continue
		}
		result.FailedTokens = append(result.FailedTokens, tokens[i])
		if messaging.IsUnregistered(resp.Error) {
			result.UnregisteredTokens = append(result.UnregisteredTokens, tokens[i])
		}
	}
	return result
}

func topicMessage(topic string, n NotificationData) *messaging.Message {
	return &messaging.Message{
		Topic:        topic,
		Notification: notificationOf(n),
		Data:         n.Data,
		Android:      androidConfig(n),
		APNS:         apnsConfig(n),
	}
}

func multicastMessage(tokens []string, n NotificationData) *messaging.MulticastMessage {
	return &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: notificationOf(n),
		Data:         n.Data,
		Android:      androidConfig(n),
		APNS:         apnsConfig(n),
	}
}

func notificationOf(n NotificationData) *messaging.Notification {
	return &messaging.Notification{
		Title: n.Title,
		Body:  n.Body,
	}
}

func androidConfig(n NotificationData) *messaging.AndroidConfig {
	if n.Sound == "" && n.ClickAction == "" {
		return nil
	}
	return &messaging.AndroidConfig{
		Notification: &messaging.AndroidNotification{
			Sound:       n.Sound,
			ClickAction: n.ClickAction,
		},
	}
}

func apnsConfig(n NotificationData) *messaging.APNSConfig {
	if n.Sound == "" {
		return nil
	}
	return &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{Sound: n.Sound},
		},
	}
}
