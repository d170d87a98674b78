package domain

import (
	"context"
	"time"
)

// Status is the lifecycle state of a post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"

	// StatusAutoGenerated is produced by an external pipeline. It is stored
	// and returned unchanged; the publish lifecycle never creates it.
	StatusAutoGenerated Status = "auto-generated"
)

// Known reports whether s is one of the statuses this system persists.
func (s Status) Known() bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished, StatusAutoGenerated:
		return true
	}
	return false
}

// Post represents a blog post.
// A post is created as a draft, published immediately, or scheduled for a
// future publish time. Scheduled posts are promoted to published by the
// background sweeper once their publish time has passed.
type Post struct {
	ID                 string
	Slug               string
	Title              string
	Subtitle           string
	Summary            string
	ContentHTML        string
	Author             string
	Status             Status
	IsFeatured         bool
	Views              int64
	ReadingTimeMinutes int
	PublishedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Visible reports whether p may be served on public read paths at the given
// instant: published, and past its publish time. A published post with no
// publish time is treated as already visible.
func (p *Post) Visible(now time.Time) bool {
	if p.Status != StatusPublished {
		return false
	}
	return p.PublishedAt == nil || !p.PublishedAt.After(now)
}

// Due reports whether a scheduled post is ready for the sweeper to publish.
// The boundary is inclusive: a post scheduled for exactly now is due.
func (p *Post) Due(now time.Time) bool {
	return p.Status == StatusScheduled && p.PublishedAt != nil && !p.PublishedAt.After(now)
}

// Page carries pagination for list queries. Limit is clamped by callers.
type Page struct {
	Limit  int
	Offset int
}

// AuthorPostCount is one row of the top-author aggregate.
type AuthorPostCount struct {
	Author string
	Posts  int
}

type PostRepository interface {
	// Create inserts a new post. Returns ErrSlugTaken if the slug is
	// already owned by another post.
	Create(ctx context.Context, p *Post) error

	// Update rewrites all mutable fields of an existing post. Returns
	// ErrSlugTaken on a slug collision and ErrPostNotFound if the id does
	// not exist.
	Update(ctx context.Context, p *Post) error

	GetByID(ctx context.Context, id string) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	Delete(ctx context.Context, id string) error

	// SlugExists reports whether a post other than excludeID owns slug.
	SlugExists(ctx context.Context, slug string, excludeID string) (bool, error)

	// IncrementViews bumps the view counter for a post.
	IncrementViews(ctx context.Context, id string) error

	// ListVisible returns publicly visible posts ordered by publish time
	// descending. CountVisible returns the matching total for paging.
	ListVisible(ctx context.Context, now time.Time, page Page) ([]*Post, error)
	CountVisible(ctx context.Context, now time.Time) (int, error)

	// SearchVisible matches title/subtitle/summary against a query term,
	// restricted to visible posts.
	SearchVisible(ctx context.Context, q string, now time.Time, page Page) ([]*Post, int, error)

	ListVisibleByAuthor(ctx context.Context, author string, now time.Time, page Page) ([]*Post, int, error)
	ListFeatured(ctx context.Context, now time.Time, limit int) ([]*Post, error)
	ListTrending(ctx context.Context, now time.Time, limit int) ([]*Post, error)
	TopAuthors(ctx context.Context, now time.Time, limit int) ([]AuthorPostCount, error)

	// Adjacent returns the visible posts published immediately before and
	// after the given publish time. Either may be nil.
	Adjacent(ctx context.Context, publishedAt time.Time, now time.Time) (prev *Post, next *Post, err error)

	// ReadNext returns up to limit visible posts other than excludeID,
	// most viewed first.
	ReadNext(ctx context.Context, excludeID string, now time.Time, limit int) ([]*Post, error)

	// ListByStatus is the elevated (admin) listing; it applies no
	// visibility filter.
	ListByStatus(ctx context.Context, status Status, page Page) ([]*Post, int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)

	// FindDue returns at most limit scheduled posts whose publish time is
	// at or before now.
	FindDue(ctx context.Context, now time.Time, limit int) ([]*Post, error)

	// MarkPublished flips a scheduled post to published, backfilling the
	// publish time with fallback only when unset. It reports false when
	// the post was not in scheduled state, which makes republishing
	// through the sweep path a no-op.
	MarkPublished(ctx context.Context, id string, fallback time.Time) (bool, error)

	SetFeatured(ctx context.Context, id string, featured bool) error
}
