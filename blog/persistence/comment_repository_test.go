package persistence

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/blogcafe/blogcafe/blog/domain"
)

func seedCommentPost(t *testing.T, repo *SQLitePostRepository, id string) {
	t.Helper()
	mustCreate(t, repo, testPost(id, id, domain.StatusPublished, nil))
}

func TestCommentRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostRepository(db)
	repo := NewCommentRepository(db)
	seedCommentPost(t, posts, "p1")

	created := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	comment := &domain.Comment{
		ID:        "c1",
		PostID:    "p1",
		Author:    "ada",
		Content:   "nice post",
		CreatedAt: created,
	}
	if err := repo.Create(context.Background(), comment); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.PostID != "p1" {
		t.Errorf("PostID = %v, want p1", got.PostID)
	}
	if got.Author != "ada" {
		t.Errorf("Author = %v, want ada", got.Author)
	}
	if got.Content != "nice post" {
		t.Errorf("Content = %v, want nice post", got.Content)
	}
}

func TestCommentRepository_GetNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, domain.ErrCommentNotFound) {
		t.Errorf("GetByID error = %v, want ErrCommentNotFound", err)
	}
}

func TestCommentRepository_ListByPost(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostRepository(db)
	repo := NewCommentRepository(db)
	seedCommentPost(t, posts, "p1")
	seedCommentPost(t, posts, "p2")

	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := repo.Create(context.Background(), &domain.Comment{
			ID:        fmt.Sprintf("c%d", i),
			PostID:    "p1",
			Author:    "ada",
			Content:   "comment",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	err := repo.Create(context.Background(), &domain.Comment{
		ID: "other", PostID: "p2", Author: "bob", Content: "elsewhere", CreatedAt: base,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	comments, total, err := repo.ListByPost(context.Background(), "p1", domain.Page{Limit: 2})
	if err != nil {
		t.Fatalf("ListByPost failed: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	// Newest first, limited to the page size.
	if len(comments) != 2 || comments[0].ID != "c2" || comments[1].ID != "c1" {
		got := make([]string, len(comments))
		for i, c := range comments {
			got[i] = c.ID
		}
		t.Errorf("ListByPost = %v, want [c2 c1]", got)
	}
}

func TestCommentRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostRepository(db)
	repo := NewCommentRepository(db)
	seedCommentPost(t, posts, "p1")

	err := repo.Create(context.Background(), &domain.Comment{
		ID: "c1", PostID: "p1", Author: "ada", Content: "bye", CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.Delete(context.Background(), "c1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repo.Delete(context.Background(), "c1"); !errors.Is(err, domain.ErrCommentNotFound) {
		t.Errorf("second Delete error = %v, want ErrCommentNotFound", err)
	}
}

func TestFavoriteRepository_Toggle(t *testing.T) {
	db := setupTestDB(t)
	posts := NewPostRepository(db)
	repo := NewFavoriteRepository(db)
	seedCommentPost(t, posts, "p1")
	seedCommentPost(t, posts, "p2")

	favorited, err := repo.Toggle(context.Background(), "u1", "p1")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !favorited {
		t.Error("first toggle = false, want true")
	}

	favorited, err = repo.Toggle(context.Background(), "u1", "p2")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !favorited {
		t.Error("toggle on second post = false, want true")
	}

	ids, err := repo.ListPostIDs(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListPostIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ListPostIDs = %v, want 2 entries", ids)
	}

	// Toggling again removes the pair.
	favorited, err = repo.Toggle(context.Background(), "u1", "p1")
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if favorited {
		t.Error("second toggle on same post = true, want false")
	}

	ids, err = repo.ListPostIDs(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListPostIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "p2" {
		t.Errorf("ListPostIDs = %v, want [p2]", ids)
	}

	// Another user's favorites are separate.
	ids, err = repo.ListPostIDs(context.Background(), "u2")
	if err != nil {
		t.Fatalf("ListPostIDs failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ListPostIDs(u2) = %v, want empty", ids)
	}
}
