package functions

import (
	"context"
	"errors"
	"fmt"

	courseusecase "eduapp-backend/internal/course/usecase"
	newsdomain "eduapp-backend/internal/news/domain"
	newsusecase "eduapp-backend/internal/news/usecase"
	"eduapp-backend/internal/trigger"
	"eduapp-backend/pkg/logger"
)

// Trigger names of the course aggregators. The notification triggers are
// named in the news usecase package.
const (
	ModuleCountTrigger = "course_module_count"
	LessonCountTrigger = "course_lesson_count"
)

// Document paths the triggers listen on
const (
	NewsPattern        = "news/{newsId}"
	CommentPattern     = "news/{newsId}/comments/{commentId}"
	ModulePattern      = "courses/{courseId}/modules/{moduleId}"
	ContentItemPattern = "courses/{courseId}/modules/{moduleId}/contentItems/{contentId}"
)

var errNoSnapshot = errors.New("event carries no document snapshot")

// Deps are the usecases the triggers delegate to
type Deps struct {
	News     *newsusecase.NewsNotifier
	Replies  *newsusecase.ReplyNotifier
	Counters *courseusecase.CounterService
	Log      *logger.Logger
}

// Register binds the four triggers of the backend to bus
func Register(bus *trigger.Bus, deps Deps) error {
	bindings := []trigger.Trigger{
		{Name: newsusecase.NewsTrigger, Pattern: trigger.MustPattern(NewsPattern), Kind: trigger.OnCreate, Handler: deps.onNewsCreated},
		{Name: newsusecase.ReplyTrigger, Pattern: trigger.MustPattern(CommentPattern), Kind: trigger.OnCreate, Handler: deps.onCommentCreated},
		{Name: ModuleCountTrigger, Pattern: trigger.MustPattern(ModulePattern), Kind: trigger.OnWrite, Handler: deps.onModuleWritten},
		{Name: LessonCountTrigger, Pattern: trigger.MustPattern(ContentItemPattern), Kind: trigger.OnWrite, Handler: deps.onContentItemWritten},
	}
	for _, b := range bindings {
		if err := bus.Register(b); err != nil {
			return fmt.Errorf("register %s: %w", b.Name, err)
		}
	}
	return nil
}

func (d Deps) onNewsCreated(ctx context.Context, inv trigger.Invocation) error {
	doc := inv.Event.Data()
	if doc == nil {
		return errNoSnapshot
	}
	var item newsdomain.NewsItem
	if err := doc.Decode(&item); err != nil {
		return fmt.Errorf("decode news item: %w", err)
	}
	newsID := inv.Params["newsId"]
	item.ID = newsID

	_, err := d.News.OnNewsCreated(ctx, newsID, &item)
	return err
}

func (d Deps) onCommentCreated(ctx context.Context, inv trigger.Invocation) error {
	doc := inv.Event.Data()
	if doc == nil {
		return errNoSnapshot
	}
	var comment newsdomain.Comment
	if err := doc.Decode(&comment); err != nil {
		return fmt.Errorf("decode comment: %w", err)
	}
	comment.ID = inv.Params["commentId"]

	outcome, err := d.Replies.OnCommentCreated(ctx, inv.Params["newsId"], &comment)
	if err != nil {
		return err
	}
	d.Log.Debug("comment processed", "news_id", inv.Params["newsId"], "comment_id", comment.ID, "outcome", string(outcome))
	return nil
}

func (d Deps) onModuleWritten(ctx context.Context, inv trigger.Invocation) error {
	_, err := d.Counters.RecountModules(ctx, inv.Params["courseId"])
	return err
}

func (d Deps) onContentItemWritten(ctx context.Context, inv trigger.Invocation) error {
	_, err := d.Counters.RecountLessons(ctx, inv.Params["courseId"])
	return err
}
