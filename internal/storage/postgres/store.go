// Package postgres is the Postgres-backed bookmark and statistics store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"

	"mytrip/internal/domain"
)

// unique_violation
const codeUniqueViolation = "23505"

type Store struct{ db *sqlx.DB }

func New(db *sqlx.DB) *Store { return &Store{db: db} }

// Open connects with the pgx driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return New(db), nil
}

// DB exposes the pool for tuning by the caller.
func (s *Store) DB() *sql.DB { return s.db.DB }

func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return domain.ErrDuplicateBookmark
	}
	return err
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) UserByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u, userByExternalIDSQL, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) AddBookmark(ctx context.Context, userID int64, contentID string) error {
	_, err := s.db.ExecContext(ctx, insertBookmarkSQL, userID, contentID)
	return mapErr(err)
}

func (s *Store) RemoveBookmark(ctx context.Context, userID int64, contentID string) error {
	_, err := s.db.ExecContext(ctx, deleteBookmarkSQL, userID, contentID)
	return err
}

func (s *Store) RemoveBookmarks(ctx context.Context, userID int64, contentIDs []string) error {
	if len(contentIDs) == 0 {
		return nil
	}
	q, args, err := sqlx.In(deleteBookmarksSQL, userID, contentIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(q), args...)
	return err
}

func (s *Store) HasBookmark(ctx context.Context, userID int64, contentID string) (bool, error) {
	var ok bool
	err := s.db.GetContext(ctx, &ok, hasBookmarkSQL, userID, contentID)
	return ok, err
}

func (s *Store) ListBookmarks(ctx context.Context, userID int64) ([]domain.Bookmark, error) {
	var out []domain.Bookmark
	err := s.db.SelectContext(ctx, &out, listBookmarksSQL, userID)
	return out, err
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, countUsersSQL)
	return n, err
}

func (s *Store) CountBookmarks(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, countBookmarksSQL)
	return n, err
}

func (s *Store) BookmarkContentIDs(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.SelectContext(ctx, &out, bookmarkContentIDsSQL)
	return out, err
}

func (s *Store) CreatedSince(ctx context.Context, e domain.Entity, since time.Time) ([]time.Time, error) {
	var q string
	switch e {
	case domain.EntityUsers:
		q = usersCreatedSinceSQL
	case domain.EntityBookmarks:
		q = bookmarksCreatedSinceSQL
	default:
		return nil, fmt.Errorf("unknown entity %q", e)
	}
	var out []time.Time
	err := s.db.SelectContext(ctx, &out, q, since)
	return out, err
}

func (s *Store) RecentUsers(ctx context.Context, limit int) ([]domain.User, error) {
	var out []domain.User
	err := s.db.SelectContext(ctx, &out, recentUsersSQL, limit)
	return out, err
}

func (s *Store) RecentBookmarks(ctx context.Context, limit int) ([]domain.BookmarkActivity, error) {
	var out []domain.BookmarkActivity
	err := s.db.SelectContext(ctx, &out, recentBookmarksSQL, limit)
	return out, err
}
