package application

import (
	"context"
	"fmt"
	"time"

	"github.com/blogcafe/blogcafe/blog/domain"
	"github.com/google/uuid"
)

// CommentService manages reader comments. Comments attach only to posts that
// are publicly visible at the time of writing.
type CommentService struct {
	comments domain.CommentRepository
	posts    domain.PostRepository

	nowFn func() time.Time
}

func NewCommentService(comments domain.CommentRepository, posts domain.PostRepository) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		nowFn:    time.Now,
	}
}

func (s *CommentService) AddComment(ctx context.Context, postID, author, content string) (*domain.Comment, error) {
	now := s.nowFn()

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.Visible(now) {
		return nil, domain.ErrPostNotFound
	}

	comment := &domain.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		Author:    author,
		Content:   content,
		CreatedAt: now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID string, page domain.Page) ([]*domain.Comment, int, error) {
	now := s.nowFn()

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, 0, err
	}
	if !post.Visible(now) {
		return nil, 0, domain.ErrPostNotFound
	}

	return s.comments.ListByPost(ctx, postID, clampPage(page))
}

// DeleteComment removes a comment, for moderation.
func (s *CommentService) DeleteComment(ctx context.Context, id string) error {
	return s.comments.Delete(ctx, id)
}
