package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/blogcafe/blogcafe/blog/domain"
)

var _ domain.CommentRepository = (*SQLiteCommentRepository)(nil)

type SQLiteCommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *SQLiteCommentRepository {
	return &SQLiteCommentRepository{
		db: db,
	}
}

const insertCommentQuery = `
	INSERT INTO comments (id, post_id, author, content, created_at)
	VALUES (?, ?, ?, ?, ?)
`

func (r *SQLiteCommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	if c == nil {
		return fmt.Errorf("comment cannot be nil")
	}

	_, err := r.db.ExecContext(ctx, insertCommentQuery,
		c.ID,
		c.PostID,
		c.Author,
		c.Content,
		c.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

const getCommentQuery = `
	SELECT id, post_id, author, content, created_at
	FROM comments
	WHERE id = ?
`

func (r *SQLiteCommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var c domain.Comment
	err := r.db.QueryRowContext(ctx, getCommentQuery, id).Scan(
		&c.ID,
		&c.PostID,
		&c.Author,
		&c.Content,
		&c.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &c, nil
}

const listCommentsQuery = `
	SELECT id, post_id, author, content, created_at
	FROM comments
	WHERE post_id = ?
	ORDER BY created_at DESC
	LIMIT ? OFFSET ?
`

func (r *SQLiteCommentRepository) ListByPost(ctx context.Context, postID string, page domain.Page) ([]*domain.Comment, int, error) {
	rows, err := r.db.QueryContext(ctx, listCommentsQuery, postID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Author, &c.Content, &c.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating comment rows: %w", err)
	}

	var total int
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return comments, total, nil
}

func (r *SQLiteCommentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}
