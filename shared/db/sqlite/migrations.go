package sqlite

import (
	"database/sql"
	"fmt"
)

// migration represents a single database migration
type migration struct {
	version int
	name    string
	up      string
}

// migrations is the ordered list of all database migrations
// Each migration should be idempotent and safe to run multiple times
var migrations = []migration{
	{
		version: 1,
		name:    "create_posts_table",
		up: `
			CREATE TABLE IF NOT EXISTS posts (
				id TEXT PRIMARY KEY,
				slug TEXT NOT NULL,
				title TEXT NOT NULL,
				subtitle TEXT NOT NULL DEFAULT '',
				summary TEXT NOT NULL DEFAULT '',
				content_html TEXT NOT NULL DEFAULT '',
				author TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'draft',
				is_featured INTEGER NOT NULL DEFAULT 0,
				views INTEGER NOT NULL DEFAULT 0,
				reading_time_minutes INTEGER NOT NULL DEFAULT 0,
				published_at TIMESTAMP,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);

			CREATE UNIQUE INDEX IF NOT EXISTS idx_posts_slug
			ON posts(slug);

			CREATE INDEX IF NOT EXISTS idx_posts_published_at
			ON posts(published_at DESC)
			WHERE published_at IS NOT NULL;

			CREATE INDEX IF NOT EXISTS idx_posts_due
			ON posts(status, published_at)
			WHERE status = 'scheduled';
		`,
	},
	{
		version: 2,
		name:    "create_comments_table",
		up: `
			CREATE TABLE IF NOT EXISTS comments (
				id TEXT PRIMARY KEY,
				post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
				author TEXT NOT NULL,
				content TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_comments_post_id
			ON comments(post_id, created_at DESC);
		`,
	},
	{
		version: 3,
		name:    "create_favorites_table",
		up: `
			CREATE TABLE IF NOT EXISTS favorites (
				user_id TEXT NOT NULL,
				post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
				created_at TIMESTAMP NOT NULL,
				PRIMARY KEY (user_id, post_id)
			);
		`,
	},
}

// runMigrations executes all pending migrations
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	currentVersion := 0
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	// Run pending migrations
	for _, m := range migrations {
		if m.version <= currentVersion {
			continue // Already applied
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", m.version, err)
		}

		_, err = tx.Exec(m.up)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d (%s): %w", m.version, m.name, err)
		}

		_, err = tx.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			m.version,
			m.name,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
