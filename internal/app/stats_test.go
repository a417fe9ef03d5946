package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mytrip/internal/app"
	"mytrip/internal/domain"
	"mytrip/internal/normalize"
)

var kstNoon = time.Date(2024, 3, 15, 12, 0, 0, 0, normalize.Seoul)

func newStats(store *fakeStore, gw *fakeGateway) *app.StatsService {
	return app.NewStatsService(store, gw, nil).WithClock(func() time.Time { return kstNoon })
}

func TestPopularSpots_RanksByCount(t *testing.T) {
	store := &fakeStore{contentIDs: []string{"c1", "c1", "c2", "c1", "c3", "c2"}}
	gw := &fakeGateway{details: map[string]*domain.TourDetail{
		"c1": detail("c1", "경복궁", ""),
		"c2": detail("c2", "남산타워", ""),
		"c3": detail("c3", "북촌", ""),
	}}

	got := newStats(store, gw).PopularSpots(context.Background(), 2)
	assert.Equal(t, []domain.PopularSpot{
		{ContentID: "c1", Title: "경복궁", BookmarkCount: 3},
		{ContentID: "c2", Title: "남산타워", BookmarkCount: 2},
	}, got)
	// only the top-N titles are looked up
	assert.Equal(t, 2, gw.detailHits)
}

func TestPopularSpots_TiesKeepFirstSeenOrder(t *testing.T) {
	store := &fakeStore{contentIDs: []string{"b", "a", "a", "b", "c"}}
	gw := &fakeGateway{}

	got := newStats(store, gw).PopularSpots(context.Background(), 10)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].ContentID)
	assert.Equal(t, "a", got[1].ContentID)
	assert.Equal(t, "c", got[2].ContentID)
}

func TestPopularSpots_PlaceholderTitles(t *testing.T) {
	store := &fakeStore{contentIDs: []string{"c1", "c2", "c2"}}
	gw := &fakeGateway{
		detailErrs: map[string]error{"c2": fmt.Errorf("%w: boom", domain.ErrUpstreamUnavailable)},
	}

	got := newStats(store, gw).PopularSpots(context.Background(), 0)
	require.Len(t, got, 2, "a failed title lookup never drops the spot")
	assert.Equal(t, domain.PopularSpot{ContentID: "c2", Title: "관광지 c2", BookmarkCount: 2}, got[0])
	assert.Equal(t, domain.PopularSpot{ContentID: "c1", Title: "관광지 c1", BookmarkCount: 1}, got[1])
}

func TestTrend_Day(t *testing.T) {
	store := &fakeStore{created: map[domain.Entity][]time.Time{
		domain.EntityUsers: {
			time.Date(2024, 3, 14, 15, 30, 0, 0, time.UTC), // 03-15 00:30 KST
			time.Date(2024, 3, 14, 14, 59, 0, 0, time.UTC), // 03-14 23:59 KST
			time.Date(2024, 3, 15, 1, 0, 0, 0, time.UTC),
		},
	}}

	got := newStats(store, &fakeGateway{}).Trend(context.Background(), domain.EntityUsers, domain.PeriodDay)
	assert.Equal(t, []domain.TrendPoint{{Date: "2024-03-14", Count: 1}, {Date: "2024-03-15", Count: 2}}, got)
	assert.True(t, store.since.Equal(kstNoon.Add(-30*24*time.Hour)))
}

func TestTrend_WeekStartsOnMonday(t *testing.T) {
	store := &fakeStore{created: map[domain.Entity][]time.Time{
		domain.EntityBookmarks: {
			time.Date(2024, 3, 17, 10, 0, 0, 0, normalize.Seoul), // Sunday
			time.Date(2024, 3, 13, 10, 0, 0, 0, normalize.Seoul), // Wednesday
			time.Date(2024, 3, 18, 0, 5, 0, 0, normalize.Seoul),  // Monday
			time.Date(2024, 3, 17, 15, 30, 0, 0, time.UTC),       // Monday 00:30 KST
		},
	}}

	got := newStats(store, &fakeGateway{}).Trend(context.Background(), domain.EntityBookmarks, domain.PeriodWeek)
	assert.Equal(t, []domain.TrendPoint{{Date: "2024-03-11", Count: 2}, {Date: "2024-03-18", Count: 2}}, got)
	assert.True(t, store.since.Equal(kstNoon.Add(-84*24*time.Hour)))
}

func TestTrend_MonthIsSparse(t *testing.T) {
	store := &fakeStore{created: map[domain.Entity][]time.Time{
		domain.EntityUsers: {
			time.Date(2024, 3, 2, 0, 0, 0, 0, normalize.Seoul),
			time.Date(2024, 1, 31, 23, 0, 0, 0, normalize.Seoul),
			time.Date(2024, 1, 5, 0, 0, 0, 0, normalize.Seoul),
		},
	}}

	got := newStats(store, &fakeGateway{}).Trend(context.Background(), domain.EntityUsers, domain.PeriodMonth)
	assert.Equal(t, []domain.TrendPoint{{Date: "2024-01", Count: 2}, {Date: "2024-03", Count: 1}}, got)
	assert.True(t, store.since.Equal(kstNoon.Add(-360*24*time.Hour)))
}

func TestRecentBookmarks_OrderAndUnknownUser(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{recent: []domain.BookmarkActivity{
		{ContentID: "c1", UserName: "민수", CreatedAt: base.Add(time.Hour)},
		{ContentID: "c2", UserName: "", CreatedAt: base.Add(3 * time.Hour)},
		{ContentID: "c3", UserName: "지영", CreatedAt: base.Add(2 * time.Hour)},
	}}
	gw := &fakeGateway{details: map[string]*domain.TourDetail{"c1": detail("c1", "경복궁", "")}}

	got := newStats(store, gw).RecentBookmarks(context.Background(), 5)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c2", "c3", "c1"}, []string{got[0].ContentID, got[1].ContentID, got[2].ContentID})
	assert.Equal(t, "알 수 없음", got[0].UserName)
	assert.Equal(t, "관광지 c2", got[0].Title)
	assert.Equal(t, "경복궁", got[2].Title)
}

func TestPopularSpots_OrderIgnoresLookupCompletion(t *testing.T) {
	store := &fakeStore{contentIDs: []string{"c1", "c1", "c1", "c2", "c2", "c3"}}
	gw := &fakeGateway{
		details: map[string]*domain.TourDetail{
			"c1": detail("c1", "경복궁", ""),
			"c2": detail("c2", "남산타워", ""),
			"c3": detail("c3", "북촌", ""),
		},
		// the top-ranked title arrives last
		detailDelays: map[string]time.Duration{"c1": 60 * time.Millisecond, "c2": 20 * time.Millisecond},
	}

	got := newStats(store, gw).PopularSpots(context.Background(), 3)
	assert.Equal(t, []domain.PopularSpot{
		{ContentID: "c1", Title: "경복궁", BookmarkCount: 3},
		{ContentID: "c2", Title: "남산타워", BookmarkCount: 2},
		{ContentID: "c3", Title: "북촌", BookmarkCount: 1},
	}, got)
}

func TestRecentBookmarks_OrderIgnoresLookupCompletion(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{recent: []domain.BookmarkActivity{
		{ContentID: "c1", UserName: "민수", CreatedAt: base.Add(3 * time.Hour)},
		{ContentID: "c2", UserName: "지영", CreatedAt: base.Add(2 * time.Hour)},
		{ContentID: "c3", UserName: "가영", CreatedAt: base.Add(time.Hour)},
	}}
	gw := &fakeGateway{
		details: map[string]*domain.TourDetail{
			"c1": detail("c1", "경복궁", ""),
			"c2": detail("c2", "남산타워", ""),
			"c3": detail("c3", "북촌", ""),
		},
		detailDelays: map[string]time.Duration{"c1": 60 * time.Millisecond, "c2": 20 * time.Millisecond},
	}

	got := newStats(store, gw).RecentBookmarks(context.Background(), 3)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c1", "c2", "c3"}, []string{got[0].ContentID, got[1].ContentID, got[2].ContentID})
	assert.Equal(t, []string{"경복궁", "남산타워", "북촌"}, []string{got[0].Title, got[1].Title, got[2].Title})
	assert.Equal(t, []string{"민수", "지영", "가영"}, []string{got[0].UserName, got[1].UserName, got[2].UserName})
}

func TestSummary_Average(t *testing.T) {
	s := newStats(&fakeStore{userCount: 3, bmCount: 10}, &fakeGateway{})
	sum := s.Summary(context.Background())
	assert.Equal(t, domain.StatsSummary{TotalUsers: 3, TotalBookmarks: 10, AveragePerUser: 3.33}, sum)

	s = newStats(&fakeStore{userCount: 0, bmCount: 4}, &fakeGateway{})
	assert.Zero(t, s.AverageBookmarksPerUser(context.Background()))
}

func TestStoreFailuresDegradeToEmpty(t *testing.T) {
	store := &fakeStore{statsErr: errors.New("connection refused"), userCount: 7}
	s := newStats(store, &fakeGateway{})
	ctx := context.Background()

	assert.Zero(t, s.TotalUsers(ctx))
	assert.Zero(t, s.TotalBookmarks(ctx))
	assert.Zero(t, s.AverageBookmarksPerUser(ctx))
	assert.Empty(t, s.PopularSpots(ctx, 5))
	assert.NotNil(t, s.PopularSpots(ctx, 5))
	assert.Empty(t, s.Trend(ctx, domain.EntityUsers, domain.PeriodDay))
	assert.Empty(t, s.RecentUsers(ctx, 5))
	assert.Empty(t, s.RecentBookmarks(ctx, 5))

	d := s.Dashboard(ctx)
	assert.Equal(t, []string{"bookmarkTrend", "popularSpots", "recentBookmarks", "recentUsers", "summary", "userGrowth"}, d.Degraded)
	assert.NotNil(t, d.PopularSpots)
	assert.NotNil(t, d.RecentUsers)
}

func TestDashboard_AllSections(t *testing.T) {
	store := &fakeStore{
		userCount:   2,
		bmCount:     3,
		contentIDs:  []string{"c1", "c1", "c2"},
		recentUsers: []domain.User{{Name: "민수"}},
		recent:      []domain.BookmarkActivity{{ContentID: "c1", UserName: "민수", CreatedAt: kstNoon}},
		created: map[domain.Entity][]time.Time{
			domain.EntityUsers:     {kstNoon},
			domain.EntityBookmarks: {kstNoon, kstNoon.Add(-24 * time.Hour)},
		},
	}
	gw := &fakeGateway{details: map[string]*domain.TourDetail{"c1": detail("c1", "경복궁", "")}}

	d := newStats(store, gw).Dashboard(context.Background())
	assert.Empty(t, d.Degraded)
	assert.Equal(t, 1.5, d.Summary.AveragePerUser)
	assert.Len(t, d.UserGrowth, 1)
	assert.Len(t, d.BookmarkTrend, 2)
	require.Len(t, d.PopularSpots, 2)
	assert.Equal(t, "경복궁", d.PopularSpots[0].Title)
	assert.Len(t, d.RecentUsers, 1)
	assert.Len(t, d.RecentBookmarks, 1)
}
