package application

import (
	"context"
	"errors"
	"time"

	"github.com/blogcafe/blogcafe/blog/domain"
)

// FavoriteService lets readers bookmark visible posts.
type FavoriteService struct {
	favorites domain.FavoriteRepository
	posts     domain.PostRepository

	nowFn func() time.Time
}

func NewFavoriteService(favorites domain.FavoriteRepository, posts domain.PostRepository) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		posts:     posts,
		nowFn:     time.Now,
	}
}

// Toggle flips the favorite state of a post for a user and reports the new
// state. Non-visible posts cannot be favorited.
func (s *FavoriteService) Toggle(ctx context.Context, userID, postID string) (bool, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	if !post.Visible(s.nowFn()) {
		return false, domain.ErrPostNotFound
	}
	return s.favorites.Toggle(ctx, userID, postID)
}

// List returns the user's favorited posts that are still visible. A post
// unpublished after being favorited silently drops out of the listing.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]*domain.Post, error) {
	now := s.nowFn()

	ids, err := s.favorites.ListPostIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts := make([]*domain.Post, 0, len(ids))
	for _, id := range ids {
		post, err := s.posts.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrPostNotFound) {
				continue
			}
			return nil, err
		}
		if post.Visible(now) {
			posts = append(posts, post)
		}
	}
	return posts, nil
}
