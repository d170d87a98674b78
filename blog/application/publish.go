package application

import (
	"time"

	"github.com/blogcafe/blogcafe/blog/domain"
)

// resolvePublishState applies the publish lifecycle rules to a requested
// status and publish time, returning the state that may actually be
// persisted.
//
// Scheduling in the past is not a legal persisted state: a request for
// status=scheduled with a publish time at or before now collapses into an
// immediate publish, keeping the caller's publish time. A scheduled request
// with no publish time at all is rejected before anything is persisted.
func resolvePublishState(requested domain.Status, publishedAt *time.Time, now time.Time) (domain.Status, *time.Time, error) {
	if !requested.Known() {
		return "", nil, domain.ErrInvalidStatus
	}

	if requested != domain.StatusScheduled {
		// draft, published and auto-generated persist as given; a
		// published post with no publish time is treated as already
		// visible rather than backfilled.
		return requested, publishedAt, nil
	}

	if publishedAt == nil {
		return "", nil, domain.ErrScheduleRequired
	}
	if !publishedAt.After(now) {
		// Collapse: due on arrival, publish immediately. The provided
		// time is kept, not clobbered with now.
		return domain.StatusPublished, publishedAt, nil
	}
	return domain.StatusScheduled, publishedAt, nil
}

// publishNow transitions a post to published in place. The publish time is
// set to now only when it is unset or still in the future; a publish time
// already in the past is historical fact and stays.
func publishNow(p *domain.Post, now time.Time) {
	p.Status = domain.StatusPublished
	if p.PublishedAt == nil || p.PublishedAt.After(now) {
		t := now
		p.PublishedAt = &t
	}
}
