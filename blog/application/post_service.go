package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blogcafe/blogcafe/blog/domain"
	"github.com/google/uuid"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50

	// slugInsertRetries bounds how many times a create or title update
	// re-probes after losing a slug race to a concurrent insert.
	slugInsertRetries = 5

	homeSectionLimit = 6
	topAuthorsLimit  = 5
	readNextLimit    = 5
)

// PostService applies the publish lifecycle on top of the post store. Every
// public read goes through the store's visibility predicate evaluated at the
// service clock's "now".
type PostService struct {
	repo  domain.PostRepository
	slugs *SlugAllocator

	// nowFn supplies the clock; replaced in tests.
	nowFn func() time.Time
}

func NewPostService(repo domain.PostRepository) *PostService {
	return &PostService{
		repo:  repo,
		slugs: NewSlugAllocator(repo),
		nowFn: time.Now,
	}
}

// CreatePostInput carries a create request after external validation has
// parsed it. PublishedAt is required only for scheduled posts.
type CreatePostInput struct {
	Title       string
	Subtitle    string
	ContentHTML string
	Author      string
	Status      domain.Status
	PublishedAt *time.Time
}

// UpdatePostInput carries a partial update. Nil fields are left unchanged.
type UpdatePostInput struct {
	Title       *string
	Subtitle    *string
	ContentHTML *string
	Status      *domain.Status
	PublishedAt *time.Time
}

// PostView is the single-post read model: the post plus its published
// neighbours and related reading.
type PostView struct {
	Post     *domain.Post
	Previous *domain.Post
	Next     *domain.Post
	ReadNext []*domain.Post
}

// HomeView aggregates the landing-page sections.
type HomeView struct {
	Featured   []*domain.Post
	Trending   []*domain.Post
	Recent     []*domain.Post
	TopAuthors []domain.AuthorPostCount
}

// CreatePost settles the publish state for a new post, allocates its slug
// and persists it. A scheduled request with a publish time at or before now
// is stored as published; a scheduled request with no publish time fails
// with domain.ErrScheduleRequired before anything is written.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*domain.Post, error) {
	now := s.nowFn()

	requested := in.Status
	if requested == "" {
		requested = domain.StatusDraft
	}

	status, publishedAt, err := resolvePublishState(requested, in.PublishedAt, now)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		ID:                 uuid.NewString(),
		Title:              in.Title,
		Subtitle:           in.Subtitle,
		Summary:            summarize(in.ContentHTML),
		ContentHTML:        in.ContentHTML,
		Author:             in.Author,
		Status:             status,
		ReadingTimeMinutes: computeReadTimeMinutes(in.ContentHTML),
		PublishedAt:        publishedAt,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	// Slug allocation and insertion are not atomic, so a concurrent create
	// for the same title can steal the probed candidate between the probe
	// and the insert. The unique index rejects the duplicate and the next
	// attempt probes again, landing on the following suffix.
	for attempt := 0; attempt <= slugInsertRetries; attempt++ {
		post.Slug, err = s.slugs.Allocate(ctx, in.Title, post.ID)
		if err != nil {
			return nil, err
		}

		err = s.repo.Create(ctx, post)
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, domain.ErrSlugTaken) {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
	}

	return nil, fmt.Errorf("failed to create post: slug retries exhausted: %w", err)
}

// UpdatePost applies a partial edit. A title change re-derives the slug,
// excluding the post itself from the collision probe. A status change goes
// through the same scheduling rules as create, using the effective publish
// time (the one provided, or the stored one).
func (s *PostService) UpdatePost(ctx context.Context, id string, in UpdatePostInput) (*domain.Post, error) {
	now := s.nowFn()

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	titleChanged := false
	if in.Title != nil && *in.Title != post.Title {
		post.Title = *in.Title
		titleChanged = true
	}
	if in.Subtitle != nil {
		post.Subtitle = *in.Subtitle
	}
	if in.ContentHTML != nil {
		post.ContentHTML = *in.ContentHTML
		post.Summary = summarize(*in.ContentHTML)
		post.ReadingTimeMinutes = computeReadTimeMinutes(*in.ContentHTML)
	}

	if in.Status != nil {
		effectiveAt := post.PublishedAt
		if in.PublishedAt != nil {
			effectiveAt = in.PublishedAt
		}
		status, publishedAt, err := resolvePublishState(*in.Status, effectiveAt, now)
		if err != nil {
			return nil, err
		}
		post.Status = status
		post.PublishedAt = publishedAt
	} else if in.PublishedAt != nil {
		if post.Status == domain.StatusScheduled && !in.PublishedAt.After(now) {
			// Rescheduling into the past collapses the same way a
			// fresh schedule request would.
			post.Status = domain.StatusPublished
		}
		post.PublishedAt = in.PublishedAt
	}

	post.UpdatedAt = now

	if !titleChanged {
		if err := s.repo.Update(ctx, post); err != nil {
			return nil, fmt.Errorf("failed to update post: %w", err)
		}
		return post, nil
	}

	for attempt := 0; attempt <= slugInsertRetries; attempt++ {
		post.Slug, err = s.slugs.Allocate(ctx, post.Title, post.ID)
		if err != nil {
			return nil, err
		}

		err = s.repo.Update(ctx, post)
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, domain.ErrSlugTaken) {
			return nil, fmt.Errorf("failed to update post: %w", err)
		}
	}

	return nil, fmt.Errorf("failed to update post: slug retries exhausted: %w", err)
}

// PublishNow immediately publishes a draft or scheduled post. The stored
// publish time is kept when it is already in the past; otherwise it becomes
// now.
func (s *PostService) PublishNow(ctx context.Context, id string) (*domain.Post, error) {
	now := s.nowFn()

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	publishNow(post, now)
	post.UpdatedAt = now

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to publish post: %w", err)
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *PostService) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug serves the public single-post view. A post that exists but is
// not visible yet reads as not found, so a scheduled post can never leak
// through its slug before its publish time.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*PostView, error) {
	now := s.nowFn()

	post, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !post.Visible(now) {
		return nil, domain.ErrPostNotFound
	}

	if err := s.repo.IncrementViews(ctx, post.ID); err != nil {
		return nil, fmt.Errorf("failed to count view: %w", err)
	}
	post.Views++

	view := &PostView{Post: post}

	if post.PublishedAt != nil {
		view.Previous, view.Next, err = s.repo.Adjacent(ctx, *post.PublishedAt, now)
		if err != nil {
			return nil, fmt.Errorf("failed to load adjacent posts: %w", err)
		}
	}

	view.ReadNext, err = s.repo.ReadNext(ctx, post.ID, now, readNextLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load related posts: %w", err)
	}

	return view, nil
}

// ListPublished returns the public listing plus the total for paging.
func (s *PostService) ListPublished(ctx context.Context, page domain.Page) ([]*domain.Post, int, error) {
	now := s.nowFn()
	page = clampPage(page)

	posts, err := s.repo.ListVisible(ctx, now, page)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountVisible(ctx, now)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Search matches visible posts against a query term.
func (s *PostService) Search(ctx context.Context, q string, page domain.Page) ([]*domain.Post, int, error) {
	return s.repo.SearchVisible(ctx, q, s.nowFn(), clampPage(page))
}

// ListByAuthor returns an author's visible posts for their public profile.
func (s *PostService) ListByAuthor(ctx context.Context, author string, page domain.Page) ([]*domain.Post, int, error) {
	return s.repo.ListVisibleByAuthor(ctx, author, s.nowFn(), clampPage(page))
}

// Home assembles the landing-page sections from visible posts only.
func (s *PostService) Home(ctx context.Context) (*HomeView, error) {
	now := s.nowFn()

	featured, err := s.repo.ListFeatured(ctx, now, homeSectionLimit)
	if err != nil {
		return nil, err
	}
	trending, err := s.repo.ListTrending(ctx, now, homeSectionLimit)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.ListVisible(ctx, now, domain.Page{Limit: homeSectionLimit})
	if err != nil {
		return nil, err
	}
	topAuthors, err := s.repo.TopAuthors(ctx, now, topAuthorsLimit)
	if err != nil {
		return nil, err
	}

	return &HomeView{
		Featured:   featured,
		Trending:   trending,
		Recent:     recent,
		TopAuthors: topAuthors,
	}, nil
}

// ListByStatus is the elevated listing used by moderation views; it bypasses
// the visibility filter entirely. An empty status lists everything.
func (s *PostService) ListByStatus(ctx context.Context, status domain.Status, page domain.Page) ([]*domain.Post, int, error) {
	return s.repo.ListByStatus(ctx, status, clampPage(page))
}

// Dashboard returns the per-status post counts for the moderation overview.
func (s *PostService) Dashboard(ctx context.Context) (map[domain.Status]int, error) {
	return s.repo.CountByStatus(ctx)
}

func (s *PostService) SetFeatured(ctx context.Context, id string, featured bool) error {
	return s.repo.SetFeatured(ctx, id, featured)
}

func clampPage(page domain.Page) domain.Page {
	if page.Limit <= 0 {
		page.Limit = defaultPageLimit
	}
	if page.Limit > maxPageLimit {
		page.Limit = maxPageLimit
	}
	if page.Offset < 0 {
		page.Offset = 0
	}
	return page
}
