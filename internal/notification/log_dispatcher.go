package notification

import (
	"context"

	"eduapp-backend/pkg/fcm"
	"eduapp-backend/pkg/logger"

	"github.com/google/uuid"
)

// LogDispatcher stands in for FCM when no Firebase app is available. Every
// send is logged and reported as delivered.
type LogDispatcher struct {
	log *logger.Logger
}

func NewLogDispatcher(log *logger.Logger) *LogDispatcher {
	return &LogDispatcher{log: log.With("dispatcher", "log")}
}

func (d *LogDispatcher) SendToTopic(_ context.Context, topic string, n fcm.NotificationData) (string, error) {
	id := uuid.New().String()
	d.log.Info("push to topic (not sent)", "topic", topic, "title", n.Title, "body", n.Body, "message_id", id)
	return id, nil
}

func (d *LogDispatcher) SendToDevices(_ context.Context, tokens []string, n fcm.NotificationData) (*fcm.MulticastResult, error) {
	d.log.Info("push to devices (not sent)", "devices", len(tokens), "title", n.Title, "body", n.Body)
	return &fcm.MulticastResult{SuccessCount: len(tokens)}, nil
}
