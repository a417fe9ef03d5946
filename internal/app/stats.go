package app

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"mytrip/internal/adapters/observability"
	"mytrip/internal/domain"
	"mytrip/internal/normalize"
)

const (
	DefaultStatsLimit = 10
	unknownUserName   = "알 수 없음"
)

// StatsService backs the statistics page. Every public read degrades to an
// empty result when the store fails; the failure is logged and counted.
type StatsService struct {
	store domain.StatsStore
	gw    domain.TourGateway
	zone  *time.Location
	now   func() time.Time
}

// NewStatsService buckets trends in zone (the fixed +9h zone when nil).
func NewStatsService(store domain.StatsStore, gw domain.TourGateway, zone *time.Location) *StatsService {
	if zone == nil {
		zone = normalize.Seoul
	}
	return &StatsService{store: store, gw: gw, zone: zone, now: time.Now}
}

// WithClock replaces the time source used for trend windows.
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

func (s *StatsService) degrade(op string, err error) {
	log.Warn().Str("op", op).Err(err).Msg("statistics degraded to empty result")
	observability.ObserveDegraded(op)
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultStatsLimit
	}
	return limit
}

// ---- public reads ----

func (s *StatsService) TotalUsers(ctx context.Context) int {
	n, err := s.store.CountUsers(ctx)
	if err != nil {
		s.degrade("total_users", err)
		return 0
	}
	return n
}

func (s *StatsService) TotalBookmarks(ctx context.Context) int {
	n, err := s.store.CountBookmarks(ctx)
	if err != nil {
		s.degrade("total_bookmarks", err)
		return 0
	}
	return n
}

// AverageBookmarksPerUser is rounded to two decimals; 0 when there are no users.
func (s *StatsService) AverageBookmarksPerUser(ctx context.Context) float64 {
	return s.Summary(ctx).AveragePerUser
}

func (s *StatsService) Summary(ctx context.Context) domain.StatsSummary {
	sum, err := s.summary(ctx)
	if err != nil {
		s.degrade("summary", err)
	}
	return sum
}

func (s *StatsService) Trend(ctx context.Context, e domain.Entity, p domain.Period) []domain.TrendPoint {
	out, err := s.trend(ctx, e, p)
	if err != nil {
		s.degrade("trend_"+string(e), err)
		return []domain.TrendPoint{}
	}
	return out
}

func (s *StatsService) PopularSpots(ctx context.Context, limit int) []domain.PopularSpot {
	out, err := s.popular(ctx, limitOrDefault(limit))
	if err != nil {
		s.degrade("popular", err)
		return []domain.PopularSpot{}
	}
	return out
}

func (s *StatsService) RecentUsers(ctx context.Context, limit int) []domain.User {
	out, err := s.store.RecentUsers(ctx, limitOrDefault(limit))
	if err != nil {
		s.degrade("recent_users", err)
		return []domain.User{}
	}
	if out == nil {
		out = []domain.User{}
	}
	return out
}

func (s *StatsService) RecentBookmarks(ctx context.Context, limit int) []domain.RecentBookmark {
	out, err := s.recentBookmarks(ctx, limitOrDefault(limit))
	if err != nil {
		s.degrade("recent_bookmarks", err)
		return []domain.RecentBookmark{}
	}
	return out
}

// Dashboard loads every section concurrently. Failed sections are empty and
// named in Degraded.
func (s *StatsService) Dashboard(ctx context.Context) domain.Dashboard {
	var (
		d  domain.Dashboard
		mu sync.Mutex
	)
	fail := func(section string, err error) {
		s.degrade(section, err)
		mu.Lock()
		d.Degraded = append(d.Degraded, section)
		mu.Unlock()
	}

	all(ctx,
		func(ctx context.Context) {
			sum, err := s.summary(ctx)
			d.Summary = sum
			if err != nil {
				fail("summary", err)
			}
		},
		func(ctx context.Context) {
			out, err := s.trend(ctx, domain.EntityUsers, domain.PeriodDay)
			d.UserGrowth = out
			if err != nil {
				fail("userGrowth", err)
			}
		},
		func(ctx context.Context) {
			out, err := s.trend(ctx, domain.EntityBookmarks, domain.PeriodDay)
			d.BookmarkTrend = out
			if err != nil {
				fail("bookmarkTrend", err)
			}
		},
		func(ctx context.Context) {
			out, err := s.popular(ctx, DefaultStatsLimit)
			d.PopularSpots = out
			if err != nil {
				fail("popularSpots", err)
			}
		},
		func(ctx context.Context) {
			out, err := s.store.RecentUsers(ctx, DefaultStatsLimit)
			d.RecentUsers = out
			if err != nil {
				fail("recentUsers", err)
			}
		},
		func(ctx context.Context) {
			out, err := s.recentBookmarks(ctx, DefaultStatsLimit)
			d.RecentBookmarks = out
			if err != nil {
				fail("recentBookmarks", err)
			}
		},
	)

	if d.UserGrowth == nil {
		d.UserGrowth = []domain.TrendPoint{}
	}
	if d.BookmarkTrend == nil {
		d.BookmarkTrend = []domain.TrendPoint{}
	}
	if d.PopularSpots == nil {
		d.PopularSpots = []domain.PopularSpot{}
	}
	if d.RecentUsers == nil {
		d.RecentUsers = []domain.User{}
	}
	if d.RecentBookmarks == nil {
		d.RecentBookmarks = []domain.RecentBookmark{}
	}
	sort.Strings(d.Degraded)
	return d
}

// ---- internals; each returns the error so callers decide how to degrade ----

func (s *StatsService) summary(ctx context.Context) (domain.StatsSummary, error) {
	var (
		sum        domain.StatsSummary
		uErr, bErr error
	)
	all(ctx,
		func(ctx context.Context) { sum.TotalUsers, uErr = s.store.CountUsers(ctx) },
		func(ctx context.Context) { sum.TotalBookmarks, bErr = s.store.CountBookmarks(ctx) },
	)
	if uErr != nil {
		return domain.StatsSummary{TotalBookmarks: sum.TotalBookmarks}, uErr
	}
	if bErr != nil {
		return domain.StatsSummary{TotalUsers: sum.TotalUsers}, bErr
	}
	if sum.TotalUsers > 0 {
		avg := float64(sum.TotalBookmarks) / float64(sum.TotalUsers)
		sum.AveragePerUser = math.Round(avg*100) / 100
	}
	return sum, nil
}

func (s *StatsService) trend(ctx context.Context, e domain.Entity, p domain.Period) ([]domain.TrendPoint, error) {
	since := s.now().Add(-trendWindow(p))
	ts, err := s.store.CreatedSince(ctx, e, since)
	if err != nil {
		return []domain.TrendPoint{}, err
	}
	return bucketize(ts, p, s.zone), nil
}

func (s *StatsService) popular(ctx context.Context, limit int) ([]domain.PopularSpot, error) {
	ids, err := s.store.BookmarkContentIDs(ctx)
	if err != nil {
		return []domain.PopularSpot{}, err
	}
	ranked := rankByCount(ids, limit)
	top := make([]string, len(ranked))
	for i, r := range ranked {
		top[i] = r.ContentID
	}
	for i, title := range resolveTitles(ctx, s.gw, top) {
		ranked[i].Title = title
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].BookmarkCount > ranked[j].BookmarkCount })
	if ranked == nil {
		ranked = []domain.PopularSpot{}
	}
	return ranked, nil
}

func (s *StatsService) recentBookmarks(ctx context.Context, limit int) ([]domain.RecentBookmark, error) {
	rows, err := s.store.RecentBookmarks(ctx, limit)
	if err != nil {
		return []domain.RecentBookmark{}, err
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ContentID
	}
	titles := resolveTitles(ctx, s.gw, ids)

	out := make([]domain.RecentBookmark, len(rows))
	for i, r := range rows {
		name := r.UserName
		if name == "" {
			name = unknownUserName
		}
		out[i] = domain.RecentBookmark{ContentID: r.ContentID, Title: titles[i], UserName: name, CreatedAt: r.CreatedAt}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
