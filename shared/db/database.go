package db

import (
	"database/sql"
)

// Database is a connectable store exposing its raw sql.DB handle.
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
}
