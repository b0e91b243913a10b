package usecase

import (
	"context"
	"errors"
	"strings"

	newsdomain "eduapp-backend/internal/news/domain"
	"eduapp-backend/internal/notification"
	"eduapp-backend/pkg/logger"
)

// NewsNotificationTitle is the fixed headline of every news broadcast ("New news!").
const NewsNotificationTitle = "Жаңа жаңалық!"

var ErrEmptyTitle = errors.New("news item has no title")

// NewsNotifier broadcasts freshly created news items to the news topic
type NewsNotifier struct {
	notifier Notifier
	topic    string
	log      *logger.Logger
}

func NewNewsNotifier(notifier Notifier, topic string, log *logger.Logger) *NewsNotifier {
	return &NewsNotifier{notifier: notifier, topic: topic, log: log}
}

// OnNewsCreated sends one broadcast whose body is the item title. Gateway
// failures are reported in the outcome only.
func (u *NewsNotifier) OnNewsCreated(ctx context.Context, newsID string, item *newsdomain.NewsItem) (notification.Outcome, error) {
	if strings.TrimSpace(item.Title) == "" {
		return notification.Outcome{}, ErrEmptyTitle
	}

	out := u.notifier.Broadcast(ctx, NewsTrigger, u.topic, notification.Payload{
		Title:  NewsNotificationTitle,
		Body:   item.Title,
		NewsID: newsID,
	})
	if out.Delivered() {
		u.log.Info("news notification sent", "news_id", newsID, "title", item.Title)
	}
	return out, nil
}
