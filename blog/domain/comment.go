package domain

import (
	"context"
	"time"
)

// Comment is a reader comment on a published post.
type Comment struct {
	ID        string
	PostID    string
	Author    string
	Content   string
	CreatedAt time.Time
}

type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id string) (*Comment, error)
	ListByPost(ctx context.Context, postID string, page Page) ([]*Comment, int, error)
	Delete(ctx context.Context, id string) error
}

// FavoriteRepository tracks per-user post favorites.
type FavoriteRepository interface {
	// Toggle adds or removes a favorite and reports the resulting state.
	Toggle(ctx context.Context, userID string, postID string) (favorited bool, err error)
	ListPostIDs(ctx context.Context, userID string) ([]string, error)
}
