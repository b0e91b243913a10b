package repository

import (
	"context"

	newsdomain "eduapp-backend/internal/news/domain"
	"eduapp-backend/pkg/docstore"
)

const (
	newsCollection     = "news"
	commentsCollection = "comments"
)

// CommentRepository defines the interface for comment lookups
type CommentRepository interface {
	// FindByID returns nil, nil when the comment does not exist
	FindByID(ctx context.Context, newsID, commentID string) (*newsdomain.Comment, error)
}

type commentRepository struct {
	store docstore.Store
}

// NewCommentRepository creates a CommentRepository on the document store
func NewCommentRepository(store docstore.Store) CommentRepository {
	return &commentRepository{store: store}
}

func (r *commentRepository) FindByID(ctx context.Context, newsID, commentID string) (*newsdomain.Comment, error) {
	doc, err := r.store.Get(ctx, docstore.Join(newsCollection, newsID, commentsCollection, commentID))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	var comment newsdomain.Comment
	if err := doc.Decode(&comment); err != nil {
		return nil, err
	}
	comment.ID = doc.ID
	return &comment, nil
}
