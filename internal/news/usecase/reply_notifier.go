package usecase

import (
	"context"
	"fmt"

	newsdomain "eduapp-backend/internal/news/domain"
	newsrepo "eduapp-backend/internal/news/repository"
	"eduapp-backend/internal/notification"
	"eduapp-backend/pkg/logger"
)

// ReplyOutcome tells which branch a new comment took
type ReplyOutcome string

const (
	ReplyTopLevel      ReplyOutcome = "top_level"
	ReplyParentMissing ReplyOutcome = "parent_missing"
	ReplySelf          ReplyOutcome = "self_reply"
	ReplyNoTokens      ReplyOutcome = "no_tokens"
	ReplySent          ReplyOutcome = "sent"
)

// ReplyNotifier tells a comment author that somebody answered them
type ReplyNotifier struct {
	comments newsrepo.CommentRepository
	tokens   TokenSource
	notifier Notifier
	log      *logger.Logger
}

func NewReplyNotifier(comments newsrepo.CommentRepository, tokens TokenSource, notifier Notifier, log *logger.Logger) *ReplyNotifier {
	return &ReplyNotifier{comments: comments, tokens: tokens, notifier: notifier, log: log}
}

// ReplyTitle is the headline shown to the parent author ("<name> replied to you!").
func ReplyTitle(userName string) string {
	return fmt.Sprintf("Вам ответил %s!", userName)
}

// OnCommentCreated sends at most one targeted notification for a reply.
// Top-level comments, vanished parents, self replies and users without
// devices end quietly. Store errors are returned.
func (u *ReplyNotifier) OnCommentCreated(ctx context.Context, newsID string, comment *newsdomain.Comment) (ReplyOutcome, error) {
	if !comment.IsReply() {
		u.log.Debug("comment is not a reply, skipping", "news_id", newsID, "comment_id", comment.ID)
		return ReplyTopLevel, nil
	}

	parent, err := u.comments.FindByID(ctx, newsID, comment.ParentID)
	if err != nil {
		return "", fmt.Errorf("load parent comment %s: %w", comment.ParentID, err)
	}
	if parent == nil {
		u.log.Info("parent comment not found, skipping", "news_id", newsID, "parent_id", comment.ParentID)
		return ReplyParentMissing, nil
	}

	if comment.UserID == parent.UserID {
		u.log.Debug("user replied to themselves, skipping", "news_id", newsID, "user_id", comment.UserID)
		return ReplySelf, nil
	}

	registrations, err := u.tokens.GetTokensByUserID(ctx, parent.UserID)
	if err != nil {
		return "", fmt.Errorf("load device tokens: %w", err)
	}
	if len(registrations) == 0 {
		u.log.Info("parent author has no devices, skipping", "news_id", newsID, "parent_user_id", parent.UserID)
		return ReplyNoTokens, nil
	}

	tokens := make([]string, 0, len(registrations))
	for _, r := range registrations {
		tokens = append(tokens, r.Token)
	}

	u.log.Info("sending reply notification", "news_id", newsID, "parent_user_id", parent.UserID, "devices", len(tokens))
	u.notifier.SendToTokens(ctx, ReplyTrigger, parent.UserID, tokens, notification.Payload{
		Title:  ReplyTitle(comment.UserName),
		Body:   comment.CommentText,
		NewsID: newsID,
	})
	return ReplySent, nil
}
