package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/blogcafe/blogcafe/blog/domain"
	"github.com/blogcafe/blogcafe/shared/db"
)

var _ domain.FavoriteRepository = (*SQLiteFavoriteRepository)(nil)

type SQLiteFavoriteRepository struct {
	db *sql.DB
}

func NewFavoriteRepository(db *sql.DB) *SQLiteFavoriteRepository {
	return &SQLiteFavoriteRepository{
		db: db,
	}
}

// Toggle inserts or deletes the (user, post) pair inside one transaction so
// two rapid toggles cannot leave a duplicate row.
func (r *SQLiteFavoriteRepository) Toggle(ctx context.Context, userID string, postID string) (bool, error) {
	var favorited bool

	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)

		var exists bool
		err := executor.QueryRowContext(txCtx,
			`SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = ? AND post_id = ?)`,
			userID, postID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check favorite: %w", err)
		}

		if exists {
			_, err = executor.ExecContext(txCtx,
				`DELETE FROM favorites WHERE user_id = ? AND post_id = ?`, userID, postID)
			if err != nil {
				return fmt.Errorf("failed to remove favorite: %w", err)
			}
			favorited = false
			return nil
		}

		_, err = executor.ExecContext(txCtx,
			`INSERT INTO favorites (user_id, post_id, created_at) VALUES (?, ?, ?)`,
			userID, postID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to add favorite: %w", err)
		}
		favorited = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return favorited, nil
}

const listFavoritesQuery = `
	SELECT post_id FROM favorites
	WHERE user_id = ?
	ORDER BY created_at DESC
`

func (r *SQLiteFavoriteRepository) ListPostIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listFavoritesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite row: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite rows: %w", err)
	}
	return ids, nil
}
