package pg

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"bookstore.org/internal/auth"
	"bookstore.org/internal/catalog"
)

// Store implements the catalog and auth persistence interfaces on
// PostgreSQL. It is constructed explicitly and injected; there is no
// shared module-level connection.
type Store struct {
	db *sql.DB
}

var (
	_ catalog.Store = (*Store)(nil)
	_ auth.Store    = (*Store)(nil)
)

// Open connects to PostgreSQL with tuned pool defaults.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing handle; used by tests with sqlmock.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Ping verifies connectivity; backs the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
