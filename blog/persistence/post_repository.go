package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blogcafe/blogcafe/blog/domain"
	"github.com/blogcafe/blogcafe/shared/db"
	sqlite3 "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var _ domain.PostRepository = (*SQLitePostRepository)(nil)

// visibleWhere is the one public-visibility predicate, shared by every
// public read query in this repository. It must stay equivalent to
// domain.Post.Visible: published, and publish time unset or at/before the
// bound "now" parameter. Divergence here leaks unpublished content.
const visibleWhere = `status = 'published' AND (published_at IS NULL OR published_at <= ?)`

const postColumns = `id, slug, title, subtitle, summary, content_html, author, status,
	is_featured, views, reading_time_minutes, published_at, created_at, updated_at`

// SQLitePostRepository implements domain.PostRepository on SQLite. Slug
// uniqueness is enforced by the store's unique index, not by application
// locks; a lost insert race surfaces as domain.ErrSlugTaken.
type SQLitePostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new SQLitePostRepository from a standard sql.DB
func NewPostRepository(db *sql.DB) *SQLitePostRepository {
	return &SQLitePostRepository{
		db: db,
	}
}

const insertPostQuery = `
	INSERT INTO posts (id, slug, title, subtitle, summary, content_html, author, status,
		is_featured, views, reading_time_minutes, published_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Create inserts a post within a transaction, so callers composing further
// writes (comments, favorites seeding) can share one commit.
func (r *SQLitePostRepository) Create(ctx context.Context, p *domain.Post) error {
	if p == nil {
		return fmt.Errorf("post cannot be nil")
	}
	if p.ID == "" {
		return fmt.Errorf("post ID cannot be empty")
	}

	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)
		_, err := executor.ExecContext(txCtx, insertPostQuery,
			p.ID,
			p.Slug,
			p.Title,
			p.Subtitle,
			p.Summary,
			p.ContentHTML,
			p.Author,
			string(p.Status),
			p.IsFeatured,
			p.Views,
			p.ReadingTimeMinutes,
			nullableTime(p.PublishedAt),
			p.CreatedAt.UTC(),
			p.UpdatedAt.UTC(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrSlugTaken
			}
			return fmt.Errorf("failed to insert post: %w", err)
		}
		return nil
	})
}

const updatePostQuery = `
	UPDATE posts
	SET slug = ?, title = ?, subtitle = ?, summary = ?, content_html = ?, author = ?,
		status = ?, is_featured = ?, reading_time_minutes = ?, published_at = ?, updated_at = ?
	WHERE id = ?
`

func (r *SQLitePostRepository) Update(ctx context.Context, p *domain.Post) error {
	if p == nil {
		return fmt.Errorf("post cannot be nil")
	}

	executor := db.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, updatePostQuery,
		p.Slug,
		p.Title,
		p.Subtitle,
		p.Summary,
		p.ContentHTML,
		p.Author,
		string(p.Status),
		p.IsFeatured,
		p.ReadingTimeMinutes,
		nullableTime(p.PublishedAt),
		p.UpdatedAt.UTC(),
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSlugTaken
		}
		return fmt.Errorf("failed to update post: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

const getPostByIDQuery = `SELECT ` + postColumns + ` FROM posts WHERE id = ?`

func (r *SQLitePostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	return r.getOne(ctx, getPostByIDQuery, id)
}

const getPostBySlugQuery = `SELECT ` + postColumns + ` FROM posts WHERE slug = ?`

func (r *SQLitePostRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return r.getOne(ctx, getPostBySlugQuery, slug)
}

func (r *SQLitePostRepository) getOne(ctx context.Context, query string, arg any) (*domain.Post, error) {
	var row postRow
	err := r.db.QueryRowContext(ctx, query, arg).Scan(row.fields()...)
	if err == sql.ErrNoRows {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return row.toDomain(), nil
}

func (r *SQLitePostRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

const slugExistsQuery = `SELECT EXISTS(SELECT 1 FROM posts WHERE slug = ? AND id != ?)`

func (r *SQLitePostRepository) SlugExists(ctx context.Context, slug string, excludeID string) (bool, error) {
	executor := db.GetExecutor(ctx, r.db)
	var exists bool
	err := executor.QueryRowContext(ctx, slugExistsQuery, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

func (r *SQLitePostRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE posts SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

const listVisibleQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE ` + visibleWhere + `
	ORDER BY published_at DESC
	LIMIT ? OFFSET ?
`

func (r *SQLitePostRepository) ListVisible(ctx context.Context, now time.Time, page domain.Page) ([]*domain.Post, error) {
	return r.list(ctx, listVisibleQuery, now.UTC(), page.Limit, page.Offset)
}

const countVisibleQuery = `SELECT COUNT(*) FROM posts WHERE ` + visibleWhere

func (r *SQLitePostRepository) CountVisible(ctx context.Context, now time.Time) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, countVisibleQuery, now.UTC()).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count visible posts: %w", err)
	}
	return total, nil
}

const searchVisibleQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE ` + visibleWhere + ` AND (title LIKE ? ESCAPE '\' OR subtitle LIKE ? ESCAPE '\' OR summary LIKE ? ESCAPE '\')
	ORDER BY published_at DESC
	LIMIT ? OFFSET ?
`

const countSearchVisibleQuery = `
	SELECT COUNT(*) FROM posts
	WHERE ` + visibleWhere + ` AND (title LIKE ? ESCAPE '\' OR subtitle LIKE ? ESCAPE '\' OR summary LIKE ? ESCAPE '\')
`

// SearchVisible is a LIKE match over title, subtitle and summary. Full-text
// search proper lives outside this system.
func (r *SQLitePostRepository) SearchVisible(ctx context.Context, q string, now time.Time, page domain.Page) ([]*domain.Post, int, error) {
	pattern := "%" + escapeLike(q) + "%"

	posts, err := r.list(ctx, searchVisibleQuery, now.UTC(), pattern, pattern, pattern, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.QueryRowContext(ctx, countSearchVisibleQuery, now.UTC(), pattern, pattern, pattern).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}
	return posts, total, nil
}

const listVisibleByAuthorQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE ` + visibleWhere + ` AND author = ?
	ORDER BY published_at DESC
	LIMIT ? OFFSET ?
`

const countVisibleByAuthorQuery = `SELECT COUNT(*) FROM posts WHERE ` + visibleWhere + ` AND author = ?`

func (r *SQLitePostRepository) ListVisibleByAuthor(ctx context.Context, author string, now time.Time, page domain.Page) ([]*domain.Post, int, error) {
	posts, err := r.list(ctx, listVisibleByAuthorQuery, now.UTC(), author, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.QueryRowContext(ctx, countVisibleByAuthorQuery, now.UTC(), author).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count author posts: %w", err)
	}
	return posts, total, nil
}

const listFeaturedQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE ` + visibleWhere + ` AND is_featured = 1
	ORDER BY published_at DESC
	LIMIT ?
`

func (r *SQLitePostRepository) ListFeatured(ctx context.Context, now time.Time, limit int) ([]*domain.Post, error) {
	return r.list(ctx, listFeaturedQuery, now.UTC(), limit)
}

const listTrendingQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE ` + visibleWhere + `
	ORDER BY views DESC, published_at DESC
	LIMIT ?
`

func (r *SQLitePostRepository) ListTrending(ctx context.Context, now time.Time, limit int) ([]*domain.Post, error) {
	return r.list(ctx, listTrendingQuery, now.UTC(), limit)
}

const topAuthorsQuery = `
	SELECT author, COUNT(*) AS posts
	FROM posts
	WHERE ` + visibleWhere + `
	GROUP BY author
	ORDER BY posts DESC
	LIMIT ?
`

func (r *SQLitePostRepository) TopAuthors(ctx context.Context, now time.Time, limit int) ([]domain.AuthorPostCount, error) {
	rows, err := r.db.QueryContext(ctx, topAuthorsQuery, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top authors: %w", err)
	}
	defer rows.Close()

	counts := make([]domain.AuthorPostCount, 0)
	for rows.Next() {
		var c domain.AuthorPostCount
		if err := rows.Scan(&c.Author, &c.Posts); err != nil {
			return nil, fmt.Errorf("failed to scan author count: %w", err)
		}
		counts = append(counts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating author counts: %w", err)
	}
	return counts, nil
}

const previousPostQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE ` + visibleWhere + ` AND published_at < ?
	ORDER BY published_at DESC
	LIMIT 1
`

const nextPostQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE ` + visibleWhere + ` AND published_at > ?
	ORDER BY published_at ASC
	LIMIT 1
`

func (r *SQLitePostRepository) Adjacent(ctx context.Context, publishedAt time.Time, now time.Time) (*domain.Post, *domain.Post, error) {
	prev, err := r.getOneOrNil(ctx, previousPostQuery, now.UTC(), publishedAt.UTC())
	if err != nil {
		return nil, nil, err
	}
	next, err := r.getOneOrNil(ctx, nextPostQuery, now.UTC(), publishedAt.UTC())
	if err != nil {
		return nil, nil, err
	}
	return prev, next, nil
}

func (r *SQLitePostRepository) getOneOrNil(ctx context.Context, query string, args ...any) (*domain.Post, error) {
	var row postRow
	err := r.db.QueryRowContext(ctx, query, args...).Scan(row.fields()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get adjacent post: %w", err)
	}
	return row.toDomain(), nil
}

const readNextQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE ` + visibleWhere + ` AND id != ?
	ORDER BY views DESC
	LIMIT ?
`

func (r *SQLitePostRepository) ReadNext(ctx context.Context, excludeID string, now time.Time, limit int) ([]*domain.Post, error) {
	return r.list(ctx, readNextQuery, now.UTC(), excludeID, limit)
}

const listByStatusQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE (? = '' OR status = ?)
	ORDER BY created_at DESC
	LIMIT ? OFFSET ?
`

const countByStatusFilterQuery = `SELECT COUNT(*) FROM posts WHERE (? = '' OR status = ?)`

// ListByStatus is the elevated listing: no visibility filter. An empty
// status matches everything.
func (r *SQLitePostRepository) ListByStatus(ctx context.Context, status domain.Status, page domain.Page) ([]*domain.Post, int, error) {
	posts, err := r.list(ctx, listByStatusQuery, string(status), string(status), page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.QueryRowContext(ctx, countByStatusFilterQuery, string(status), string(status)).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count posts by status: %w", err)
	}
	return posts, total, nil
}

const countByStatusQuery = `SELECT status, COUNT(*) FROM posts GROUP BY status`

func (r *SQLitePostRepository) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, countByStatusQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[domain.Status(status)] = n
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}
	return counts, nil
}

const findDueQuery = `
	SELECT ` + postColumns + `
	FROM posts
	WHERE status = 'scheduled' AND published_at <= ?
	ORDER BY published_at ASC
	LIMIT ?
`

// FindDue returns scheduled posts whose publish time has passed, oldest
// first. The inclusive bound makes a post scheduled for exactly now due.
func (r *SQLitePostRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.Post, error) {
	return r.list(ctx, findDueQuery, now.UTC(), limit)
}

const markPublishedQuery = `
	UPDATE posts
	SET status = 'published',
		published_at = COALESCE(published_at, ?),
		updated_at = ?
	WHERE id = ? AND status = 'scheduled'
`

// MarkPublished is the sweep transition. The status guard in the WHERE
// clause re-checks the precondition at write time, so a post concurrently
// published through the request path is left alone and reported as false.
func (r *SQLitePostRepository) MarkPublished(ctx context.Context, id string, fallback time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, markPublishedQuery, fallback.UTC(), fallback.UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to mark post published: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read publish result: %w", err)
	}
	return affected > 0, nil
}

func (r *SQLitePostRepository) SetFeatured(ctx context.Context, id string, featured bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE posts SET is_featured = ? WHERE id = ?`, featured, id)
	if err != nil {
		return fmt.Errorf("failed to set featured flag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read featured result: %w", err)
	}
	if affected == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *SQLitePostRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0)
	for rows.Next() {
		var row postRow
		if err := rows.Scan(row.fields()...); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, row.toDomain())
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}
	return posts, nil
}

// postRow is a private struct used to scan database rows. It uses
// sql.NullTime for the nullable publish time and converts to domain.Post.
type postRow struct {
	ID                 string
	Slug               string
	Title              string
	Subtitle           string
	Summary            string
	ContentHTML        string
	Author             string
	Status             string
	IsFeatured         bool
	Views              int64
	ReadingTimeMinutes int
	PublishedAt        sql.NullTime
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (pr *postRow) fields() []any {
	return []any{
		&pr.ID,
		&pr.Slug,
		&pr.Title,
		&pr.Subtitle,
		&pr.Summary,
		&pr.ContentHTML,
		&pr.Author,
		&pr.Status,
		&pr.IsFeatured,
		&pr.Views,
		&pr.ReadingTimeMinutes,
		&pr.PublishedAt,
		&pr.CreatedAt,
		&pr.UpdatedAt,
	}
}

func (pr *postRow) toDomain() *domain.Post {
	post := &domain.Post{
		ID:                 pr.ID,
		Slug:               pr.Slug,
		Title:              pr.Title,
		Subtitle:           pr.Subtitle,
		Summary:            pr.Summary,
		ContentHTML:        pr.ContentHTML,
		Author:             pr.Author,
		Status:             domain.Status(pr.Status),
		IsFeatured:         pr.IsFeatured,
		Views:              pr.Views,
		ReadingTimeMinutes: pr.ReadingTimeMinutes,
		CreatedAt:          pr.CreatedAt,
		UpdatedAt:          pr.UpdatedAt,
	}
	if pr.PublishedAt.Valid {
		t := pr.PublishedAt.Time
		post.PublishedAt = &t
	}
	return post
}

// escapeLike neutralizes LIKE wildcards in user-supplied search terms so a
// query for "100%" does not match everything.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// nullableTime maps an optional time to its SQL value, always in UTC so the
// driver's text encoding compares correctly.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// isUniqueViolation reports whether err is the store rejecting a duplicate
// key (here, the slug unique index).
func isUniqueViolation(err error) bool {
	var se *sqlite3.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3lib.SQLITE_CONSTRAINT ||
			code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	// Some driver paths wrap the sqlite error beyond errors.As reach.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
