package usecase

import (
	"context"

	"eduapp-backend/internal/notification"
	userdomain "eduapp-backend/internal/user/domain"
)

// Trigger names, as they appear in logs and the dispatch log
const (
	NewsTrigger  = "news_notification"
	ReplyTrigger = "comment_reply_notification"
)

// Notifier is the best-effort push sender. *notification.Service implements it.
type Notifier interface {
	Broadcast(ctx context.Context, trigger, topic string, p notification.Payload) notification.Outcome
	SendToTokens(ctx context.Context, trigger, userID string, tokens []string, p notification.Payload) notification.Outcome
}

// TokenSource resolves the device registrations of a user
type TokenSource interface {
	GetTokensByUserID(ctx context.Context, userID string) ([]userdomain.DeviceToken, error)
}
