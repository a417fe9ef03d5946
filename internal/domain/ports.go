package domain

import (
	"context"
	"time"
)

// TourGateway is the provider API. Detail lookups return nil when the
// provider has no record for the id.
type TourGateway interface {
	AreaCodes(ctx context.Context, numOfRows, pageNo int) ([]AreaCode, error)
	AreaBasedList(ctx context.Context, q ListQuery) (TourPage, error)
	SearchKeyword(ctx context.Context, q ListQuery) (TourPage, error)
	DetailCommon(ctx context.Context, contentID string) (*TourDetail, error)
	DetailIntro(ctx context.Context, contentID, contentTypeID string) (*OperatingInfo, error)
	DetailImages(ctx context.Context, contentID string) ([]TourImage, error)
}

// UserStore resolves external identities. A nil user with a nil error means
// the identity is unknown.
type UserStore interface {
	UserByExternalID(ctx context.Context, externalID string) (*User, error)
}

type BookmarkStore interface {
	UserStore

	// Write paths
	AddBookmark(ctx context.Context, userID int64, contentID string) error
	RemoveBookmark(ctx context.Context, userID int64, contentID string) error
	RemoveBookmarks(ctx context.Context, userID int64, contentIDs []string) error

	// Read paths; ListBookmarks is always created_at descending
	HasBookmark(ctx context.Context, userID int64, contentID string) (bool, error)
	ListBookmarks(ctx context.Context, userID int64) ([]Bookmark, error)
}

// StatsStore serves bulk unfiltered reads; grouping happens in the app layer.
type StatsStore interface {
	CountUsers(ctx context.Context) (int, error)
	CountBookmarks(ctx context.Context) (int, error)
	BookmarkContentIDs(ctx context.Context) ([]string, error)
	CreatedSince(ctx context.Context, e Entity, since time.Time) ([]time.Time, error)
	RecentUsers(ctx context.Context, limit int) ([]User, error)
	RecentBookmarks(ctx context.Context, limit int) ([]BookmarkActivity, error)
}

type Store interface {
	BookmarkStore
	StatsStore
	Ping(ctx context.Context) error
	Close() error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
