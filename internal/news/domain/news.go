package domain

// NewsItem is an article published by the authoring flow
type NewsItem struct {
	ID    string `json:"id" firestore:"-"`
	Title string `json:"title" firestore:"title"`
}

// Comment is a user comment under news/{newsId}/comments. ParentID is empty
// for top-level comments and names the replied-to comment otherwise.
type Comment struct {
	ID          string `json:"id" firestore:"-"`
	UserID      string `json:"user_id" firestore:"userId"`
	UserName    string `json:"user_name" firestore:"userName"`
	CommentText string `json:"comment_text" firestore:"commentText"`
	ParentID    string `json:"parent_id,omitempty" firestore:"parentId,omitempty"`
}

// IsReply reports whether the comment answers another comment
func (c *Comment) IsReply() bool {
	return c.ParentID != ""
}
