package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/blogcafe/blogcafe/blog/domain"
)

// fakePostRepo is an in-memory domain.PostRepository for service and
// sweeper tests. It enforces slug uniqueness the way the real store's
// unique index does and supports error injection per post id.
type fakePostRepo struct {
	mu    sync.Mutex
	posts map[string]*domain.Post

	// failPublish makes MarkPublished fail for the given post ids.
	failPublish map[string]bool

	// stealSlugs, when non-zero, makes the next N Create calls fail with
	// ErrSlugTaken after registering the attempted slug as taken,
	// simulating a concurrent insert winning the race.
	stealSlugs int
	stolen     map[string]bool
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts:       make(map[string]*domain.Post),
		failPublish: make(map[string]bool),
		stolen:      make(map[string]bool),
	}
}

func (f *fakePostRepo) slugTakenLocked(slug, excludeID string) bool {
	if f.stolen[slug] {
		return true
	}
	for _, p := range f.posts {
		if p.Slug == slug && p.ID != excludeID {
			return true
		}
	}
	return false
}

func (f *fakePostRepo) Create(_ context.Context, p *domain.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stealSlugs > 0 {
		f.stealSlugs--
		f.stolen[p.Slug] = true
		return domain.ErrSlugTaken
	}
	if f.slugTakenLocked(p.Slug, p.ID) {
		return domain.ErrSlugTaken
	}
	clone := *p
	f.posts[p.ID] = &clone
	return nil
}

func (f *fakePostRepo) Update(_ context.Context, p *domain.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[p.ID]; !ok {
		return domain.ErrPostNotFound
	}
	if f.slugTakenLocked(p.Slug, p.ID) {
		return domain.ErrSlugTaken
	}
	clone := *p
	f.posts[p.ID] = &clone
	return nil
}

func (f *fakePostRepo) GetByID(_ context.Context, id string) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakePostRepo) GetBySlug(_ context.Context, slug string) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.Slug == slug {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrPostNotFound
}

func (f *fakePostRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) SlugExists(_ context.Context, slug string, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slugTakenLocked(slug, excludeID), nil
}

func (f *fakePostRepo) IncrementViews(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.posts[id]; ok {
		p.Views++
	}
	return nil
}

func (f *fakePostRepo) visible(now time.Time) []*domain.Post {
	out := make([]*domain.Post, 0)
	for _, p := range f.posts {
		if p.Visible(now) {
			clone := *p
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := time.Time{}, time.Time{}
		if out[i].PublishedAt != nil {
			ti = *out[i].PublishedAt
		}
		if out[j].PublishedAt != nil {
			tj = *out[j].PublishedAt
		}
		return ti.After(tj)
	})
	return out
}

func (f *fakePostRepo) ListVisible(_ context.Context, now time.Time, page domain.Page) ([]*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return paginate(f.visible(now), page), nil
}

func (f *fakePostRepo) CountVisible(_ context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visible(now)), nil
}

func (f *fakePostRepo) SearchVisible(_ context.Context, _ string, now time.Time, page domain.Page) ([]*domain.Post, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.visible(now)
	return paginate(all, page), len(all), nil
}

func (f *fakePostRepo) ListVisibleByAuthor(_ context.Context, author string, now time.Time, page domain.Page) ([]*domain.Post, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]*domain.Post, 0)
	for _, p := range f.visible(now) {
		if p.Author == author {
			matched = append(matched, p)
		}
	}
	return paginate(matched, page), len(matched), nil
}

func (f *fakePostRepo) ListFeatured(_ context.Context, now time.Time, limit int) ([]*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]*domain.Post, 0)
	for _, p := range f.visible(now) {
		if p.IsFeatured && len(matched) < limit {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (f *fakePostRepo) ListTrending(_ context.Context, now time.Time, limit int) ([]*domain.Post, error) {
	return f.ListVisible(context.Background(), now, domain.Page{Limit: limit})
}

func (f *fakePostRepo) TopAuthors(_ context.Context, now time.Time, limit int) ([]domain.AuthorPostCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, p := range f.visible(now) {
		counts[p.Author]++
	}
	out := make([]domain.AuthorPostCount, 0, len(counts))
	for author, n := range counts {
		out = append(out, domain.AuthorPostCount{Author: author, Posts: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Posts > out[j].Posts })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePostRepo) Adjacent(_ context.Context, publishedAt time.Time, now time.Time) (*domain.Post, *domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var prev, next *domain.Post
	for _, p := range f.visible(now) {
		if p.PublishedAt == nil {
			continue
		}
		at := *p.PublishedAt
		if at.Before(publishedAt) && (prev == nil || at.After(*prev.PublishedAt)) {
			prev = p
		}
		if at.After(publishedAt) && (next == nil || at.Before(*next.PublishedAt)) {
			next = p
		}
	}
	return prev, next, nil
}

func (f *fakePostRepo) ReadNext(_ context.Context, excludeID string, now time.Time, limit int) ([]*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Post, 0)
	for _, p := range f.visible(now) {
		if p.ID != excludeID && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePostRepo) ListByStatus(_ context.Context, status domain.Status, page domain.Page) ([]*domain.Post, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]*domain.Post, 0)
	for _, p := range f.posts {
		if status == "" || p.Status == status {
			clone := *p
			matched = append(matched, &clone)
		}
	}
	return paginate(matched, page), len(matched), nil
}

func (f *fakePostRepo) CountByStatus(_ context.Context) (map[domain.Status]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[domain.Status]int)
	for _, p := range f.posts {
		counts[p.Status]++
	}
	return counts, nil
}

func (f *fakePostRepo) FindDue(_ context.Context, now time.Time, limit int) ([]*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	due := make([]*domain.Post, 0)
	for _, p := range f.posts {
		if p.Due(now) {
			clone := *p
			due = append(due, &clone)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].PublishedAt.Before(*due[j].PublishedAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

var errInjectedPublish = errors.New("injected publish failure")

func (f *fakePostRepo) MarkPublished(_ context.Context, id string, fallback time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPublish[id] {
		return false, errInjectedPublish
	}
	p, ok := f.posts[id]
	if !ok {
		return false, domain.ErrPostNotFound
	}
	if p.Status != domain.StatusScheduled {
		return false, nil
	}
	p.Status = domain.StatusPublished
	if p.PublishedAt == nil {
		t := fallback
		p.PublishedAt = &t
	}
	return true, nil
}

func (f *fakePostRepo) SetFeatured(_ context.Context, id string, featured bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return domain.ErrPostNotFound
	}
	p.IsFeatured = featured
	return nil
}

func paginate(posts []*domain.Post, page domain.Page) []*domain.Post {
	if page.Offset >= len(posts) {
		return nil
	}
	posts = posts[page.Offset:]
	if page.Limit > 0 && len(posts) > page.Limit {
		posts = posts[:page.Limit]
	}
	return posts
}

var _ domain.PostRepository = (*fakePostRepo)(nil)
