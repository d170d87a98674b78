package application

import (
	"context"
	"fmt"

	"github.com/blogcafe/blogcafe/blog/domain"
	"github.com/gosimple/slug"
)

// fallbackSlug is used when a title normalizes to nothing (e.g. all
// punctuation).
const fallbackSlug = "post"

// SlugAllocator derives unique URL slugs from post titles.
//
// Candidates are probed against the store in a fixed order: the base slug
// first, then base-1, base-2, ... ascending. The first free candidate wins,
// so allocation is deterministic for a given title and existing-slug set.
// The store's unique index remains the authority; a concurrent insert that
// steals a probed candidate surfaces as domain.ErrSlugTaken and the caller
// re-probes.
type SlugAllocator struct {
	repo domain.PostRepository
}

func NewSlugAllocator(repo domain.PostRepository) *SlugAllocator {
	return &SlugAllocator{repo: repo}
}

// Allocate returns the first free slug for title. When updating an existing
// post, excludeID exempts the post's own slug from the collision check so a
// title edit that re-derives the same slug is not treated as a conflict.
func (a *SlugAllocator) Allocate(ctx context.Context, title string, excludeID string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = fallbackSlug
	}

	candidate := base
	for n := 1; ; n++ {
		exists, err := a.repo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("failed to probe slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
