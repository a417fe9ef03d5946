package domain

import "time"

type User struct {
	ID         int64     `json:"-" db:"id"`
	ExternalID string    `json:"-" db:"clerk_id"`
	Name       string    `json:"name" db:"name"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

type Bookmark struct {
	UserID    int64     `db:"user_id"`
	ContentID string    `db:"content_id"`
	CreatedAt time.Time `db:"created_at"`
}

// BookmarkActivity is a bookmark row joined with its owner's name.
type BookmarkActivity struct {
	ContentID string    `db:"content_id"`
	UserName  string    `db:"user_name"`
	CreatedAt time.Time `db:"created_at"`
}

// BookmarkSort is the ordering hint of the bookmarks page.
type BookmarkSort string

const (
	SortLatest BookmarkSort = "latest"
	SortName   BookmarkSort = "name"
	SortArea   BookmarkSort = "area"
)

// ParseBookmarkSort falls back to SortLatest for anything unrecognised.
func ParseBookmarkSort(s string) BookmarkSort {
	switch BookmarkSort(s) {
	case SortName, SortArea:
		return BookmarkSort(s)
	}
	return SortLatest
}

type BookmarkedTours struct {
	Items      []TourCard   `json:"items"`
	Sort       BookmarkSort `json:"sort"`
	TotalCount int          `json:"totalCount"`
	Failed     []string     `json:"failed,omitempty"`
}

// Entity selects the table a trend is computed over.
type Entity string

const (
	EntityUsers     Entity = "users"
	EntityBookmarks Entity = "bookmarks"
)

// Period is the trend bucket granularity.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type PopularSpot struct {
	ContentID     string `json:"contentId"`
	Title         string `json:"title"`
	BookmarkCount int    `json:"bookmarkCount"`
}

type RecentBookmark struct {
	ContentID string    `json:"contentId"`
	Title     string    `json:"title"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
}

type StatsSummary struct {
	TotalUsers     int     `json:"totalUsers"`
	TotalBookmarks int     `json:"totalBookmarks"`
	AveragePerUser float64 `json:"averageBookmarksPerUser"`
}

type Dashboard struct {
	Summary         StatsSummary     `json:"summary"`
	UserGrowth      []TrendPoint     `json:"userGrowth"`
	BookmarkTrend   []TrendPoint     `json:"bookmarkTrend"`
	PopularSpots    []PopularSpot    `json:"popularSpots"`
	RecentUsers     []User           `json:"recentUsers"`
	RecentBookmarks []RecentBookmark `json:"recentBookmarks"`
	Degraded        []string         `json:"degraded,omitempty"`
}
