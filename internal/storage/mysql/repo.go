package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"

	"mytrip/internal/domain"
)

// duplicate entry for a unique key
const errDupEntry = 1062

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func mapErr(err error) error {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		return domain.ErrDuplicateBookmark
	}
	return err
}

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) UserByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, userByExternalIDSQL, externalID).
		Scan(&u.ID, &u.ExternalID, &u.Name, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) AddBookmark(ctx context.Context, userID int64, contentID string) error {
	_, err := r.db.ExecContext(ctx, insertBookmarkSQL, userID, contentID)
	return mapErr(err)
}

func (r *Repo) RemoveBookmark(ctx context.Context, userID int64, contentID string) error {
	_, err := r.db.ExecContext(ctx, deleteBookmarkSQL, userID, contentID)
	return err
}

func (r *Repo) RemoveBookmarks(ctx context.Context, userID int64, contentIDs []string) error {
	if len(contentIDs) == 0 {
		return nil
	}
	args := make([]any, 0, len(contentIDs)+1)
	args = append(args, userID)
	for _, id := range contentIDs {
		args = append(args, id)
	}
	marks := "(" + strings.TrimSuffix(strings.Repeat("?,", len(contentIDs)), ",") + ")"
	_, err := r.db.ExecContext(ctx, deleteBookmarksPrefix+marks, args...)
	return err
}

func (r *Repo) HasBookmark(ctx context.Context, userID int64, contentID string) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, hasBookmarkSQL, userID, contentID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *Repo) ListBookmarks(ctx context.Context, userID int64) ([]domain.Bookmark, error) {
	rows, err := r.db.QueryContext(ctx, listBookmarksSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Bookmark
	for rows.Next() {
		var b domain.Bookmark
		if err := rows.Scan(&b.UserID, &b.ContentID, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, countUsersSQL)
}

func (r *Repo) CountBookmarks(ctx context.Context) (int, error) {
	return r.count(ctx, countBookmarksSQL)
}

func (r *Repo) count(ctx context.Context, q string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, q).Scan(&n)
	return n, err
}

func (r *Repo) BookmarkContentIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, bookmarkContentIDsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *Repo) CreatedSince(ctx context.Context, e domain.Entity, since time.Time) ([]time.Time, error) {
	var q string
	switch e {
	case domain.EntityUsers:
		q = usersCreatedSinceSQL
	case domain.EntityBookmarks:
		q = bookmarksCreatedSinceSQL
	default:
		return nil, fmt.Errorf("unknown entity %q", e)
	}
	rows, err := r.db.QueryContext(ctx, q, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repo) RecentUsers(ctx context.Context, limit int) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, recentUsersSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.ExternalID, &u.Name, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) RecentBookmarks(ctx context.Context, limit int) ([]domain.BookmarkActivity, error) {
	rows, err := r.db.QueryContext(ctx, recentBookmarksSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BookmarkActivity
	for rows.Next() {
		var a domain.BookmarkActivity
		if err := rows.Scan(&a.ContentID, &a.UserName, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
