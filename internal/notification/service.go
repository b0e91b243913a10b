package notification

import (
	"context"

	dispatchdomain "eduapp-backend/internal/dispatchlog/domain"
	dispatchrepo "eduapp-backend/internal/dispatchlog/repository"
	"eduapp-backend/pkg/fcm"
	"eduapp-backend/pkg/logger"
)

const (
	// ClickAction routes a tapped notification inside the Flutter client.
	ClickAction  = "FLUTTER_NOTIFICATION_CLICK"
	DefaultSound = "default"
)

// Dispatcher is the push gateway. *fcm.Client implements it.
type Dispatcher interface {
	SendToTopic(ctx context.Context, topic string, notification fcm.NotificationData) (string, error)
	SendToDevices(ctx context.Context, tokens []string, notification fcm.NotificationData) (*fcm.MulticastResult, error)
}

// TokenPruner removes device registrations FCM no longer accepts.
type TokenPruner interface {
	DeleteToken(ctx context.Context, userID, token string) error
}

// Payload is the user-visible part of a news related notification.
type Payload struct {
	Title  string
	Body   string
	NewsID string
}

func (p Payload) notification() fcm.NotificationData {
	return fcm.NotificationData{
		Title:       p.Title,
		Body:        p.Body,
		Sound:       DefaultSound,
		ClickAction: ClickAction,
		Data: map[string]string{
			"click_action": ClickAction,
			"newsId":       p.NewsID,
		},
	}
}

// Outcome describes what happened to one dispatch. Callers may ignore it.
type Outcome struct {
	Mode       dispatchdomain.Mode
	Target     string
	Recipients int
	Success    int
	Failure    int
	MessageID  string
	Err        error
}

// Delivered reports whether the gateway accepted at least one message.
func (o Outcome) Delivered() bool {
	return o.Err == nil && o.Success > 0
}

// Service sends notifications on a best-effort basis: gateway errors are
// logged and reported in the Outcome, never returned.
type Service struct {
	dispatcher Dispatcher
	records    dispatchrepo.DispatchRepository
	pruner     TokenPruner
	log        *logger.Logger
}

type Option func(*Service)

// WithDispatchLog records every outcome.
func WithDispatchLog(repo dispatchrepo.DispatchRepository) Option {
	return func(s *Service) { s.records = repo }
}

// WithTokenPruner deletes tokens FCM reports as unregistered.
func WithTokenPruner(p TokenPruner) Option {
	return func(s *Service) { s.pruner = p }
}

func NewService(dispatcher Dispatcher, log *logger.Logger, opts ...Option) *Service {
	s := &Service{dispatcher: dispatcher, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Broadcast sends p to every subscriber of topic.
func (s *Service) Broadcast(ctx context.Context, trigger, topic string, p Payload) Outcome {
	out := Outcome{Mode: dispatchdomain.ModeTopic, Target: topic}

	messageID, err := s.dispatcher.SendToTopic(ctx, topic, p.notification())
	if err != nil {
		out.Err = err
		out.Failure = 1
		s.log.Error("topic notification failed", "trigger", trigger, "topic", topic, "news_id", p.NewsID, "error", err)
	} else {
		out.MessageID = messageID
		out.Success = 1
		s.log.Info("topic notification sent", "trigger", trigger, "topic", topic, "news_id", p.NewsID)
	}

	s.record(ctx, trigger, p, out)
	return out
}

// SendToTokens sends p to the given devices of one user in a single call.
func (s *Service) SendToTokens(ctx context.Context, trigger, userID string, tokens []string, p Payload) Outcome {
	out := Outcome{Mode: dispatchdomain.ModeTokens, Target: userID, Recipients: len(tokens)}

	result, err := s.dispatcher.SendToDevices(ctx, tokens, p.notification())
	if err != nil {
		out.Err = err
		out.Failure = len(tokens)
		s.log.Error("device notification failed", "trigger", trigger, "user_id", userID, "devices", len(tokens), "error", err)
		s.record(ctx, trigger, p, out)
		return out
	}

	out.Success = result.SuccessCount
	out.Failure = result.FailureCount
	s.log.Info("device notification sent", "trigger", trigger, "user_id", userID, "success", out.Success, "failure", out.Failure)
	if len(result.FailedTokens) > 0 {
		s.log.Warn("some devices rejected the notification", "trigger", trigger, "user_id", userID,
			"failed_devices", len(result.FailedTokens), "unregistered_devices", len(result.UnregisteredTokens))
	}

	s.prune(ctx, userID, result.UnregisteredTokens)
	s.record(ctx, trigger, p, out)
	return out
}

func (s *Service) prune(ctx context.Context, userID string, unregistered []string) {
	if s.pruner == nil || len(unregistered) == 0 {
		return
	}
	s.log.Info("pruning unregistered device tokens", "user_id", userID, "count", len(unregistered))
	for _, token := range unregistered {
		if err := s.pruner.DeleteToken(ctx, userID, token); err != nil {
			s.log.Warn("failed to prune device token", "user_id", userID, "error", err)
		}
	}
}

func (s *Service) record(ctx context.Context, trigger string, p Payload, out Outcome) {
	if s.records == nil {
		return
	}
	rec := &dispatchdomain.DispatchRecord{
		Trigger:      trigger,
		Mode:         out.Mode,
		Target:       out.Target,
		NewsID:       p.NewsID,
		Recipients:   out.Recipients,
		SuccessCount: out.Success,
		FailureCount: out.Failure,
	}
	if out.Err != nil {
		rec.Error = out.Err.Error()
	}
	if err := s.records.Create(ctx, rec); err != nil {
		s.log.Warn("failed to record dispatch", "trigger", trigger, "error", err)
	}
}
