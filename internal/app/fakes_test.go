package app_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"mytrip/internal/domain"
)

// ---- fakes ----

type fakeGateway struct {
	mu sync.Mutex

	page      domain.TourPage
	pageErr   error
	lastQuery domain.ListQuery
	searched  bool
	pages     map[string]domain.TourPage // by area, for the sitemap
	pageErrs  map[string]error

	details      map[string]*domain.TourDetail
	detailErrs   map[string]error
	detailDelays map[string]time.Duration
	detailHits   int

	intro     *domain.OperatingInfo
	introErr  error
	images    []domain.TourImage
	imagesErr error

	areas     []domain.AreaCode
	areaCalls int
}

func (g *fakeGateway) AreaCodes(ctx context.Context, numOfRows, pageNo int) ([]domain.AreaCode, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.areaCalls++
	out := make([]domain.AreaCode, len(g.areas))
	copy(out, g.areas)
	return out, nil
}

func (g *fakeGateway) AreaBasedList(ctx context.Context, q domain.ListQuery) (domain.TourPage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastQuery = q
	if err, ok := g.pageErrs[q.AreaCode]; ok {
		return domain.TourPage{}, err
	}
	if p, ok := g.pages[q.AreaCode]; ok {
		return p, nil
	}
	return g.page, g.pageErr
}

func (g *fakeGateway) SearchKeyword(ctx context.Context, q domain.ListQuery) (domain.TourPage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastQuery = q
	g.searched = true
	return g.page, g.pageErr
}

func (g *fakeGateway) DetailCommon(ctx context.Context, contentID string) (*domain.TourDetail, error) {
	g.mu.Lock()
	g.detailHits++
	err, d, delay := g.detailErrs[contentID], g.details[contentID], g.detailDelays[contentID]
	g.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (g *fakeGateway) DetailIntro(ctx context.Context, contentID, contentTypeID string) (*domain.OperatingInfo, error) {
	return g.intro, g.introErr
}

func (g *fakeGateway) DetailImages(ctx context.Context, contentID string) ([]domain.TourImage, error) {
	return g.images, g.imagesErr
}

func detail(id, title, addr string) *domain.TourDetail {
	return &domain.TourDetail{TourListItem: domain.TourListItem{ContentID: id, ContentTypeID: "12", Title: title, Addr1: addr}}
}

type fakeStore struct {
	mu sync.Mutex

	users     map[string]*domain.User // by external id
	bookmarks []domain.Bookmark
	bmCalls   int

	contentIDs  []string
	created     map[domain.Entity][]time.Time
	since       time.Time
	recentUsers []domain.User
	recent      []domain.BookmarkActivity
	userCount   int
	bmCount     int
	statsErr    error
}

func (s *fakeStore) UserByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[externalID], nil
}

func (s *fakeStore) AddBookmark(ctx context.Context, userID int64, contentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bmCalls++
	for _, b := range s.bookmarks {
		if b.UserID == userID && b.ContentID == contentID {
			return domain.ErrDuplicateBookmark
		}
	}
	s.bookmarks = append(s.bookmarks, domain.Bookmark{UserID: userID, ContentID: contentID, CreatedAt: time.Now()})
	return nil
}

func (s *fakeStore) RemoveBookmark(ctx context.Context, userID int64, contentID string) error {
	return s.RemoveBookmarks(ctx, userID, []string{contentID})
}

func (s *fakeStore) RemoveBookmarks(ctx context.Context, userID int64, contentIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bmCalls++
	drop := map[string]bool{}
	for _, id := range contentIDs {
		drop[id] = true
	}
	kept := s.bookmarks[:0]
	for _, b := range s.bookmarks {
		if b.UserID == userID && drop[b.ContentID] {
			continue
		}
		kept = append(kept, b)
	}
	s.bookmarks = kept
	return nil
}

func (s *fakeStore) HasBookmark(ctx context.Context, userID int64, contentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bmCalls++
	for _, b := range s.bookmarks {
		if b.UserID == userID && b.ContentID == contentID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) ListBookmarks(ctx context.Context, userID int64) ([]domain.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bmCalls++
	var out []domain.Bookmark
	for _, b := range s.bookmarks {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeStore) CountUsers(ctx context.Context) (int, error) { return s.userCount, s.statsErr }

func (s *fakeStore) CountBookmarks(ctx context.Context) (int, error) { return s.bmCount, s.statsErr }

func (s *fakeStore) BookmarkContentIDs(ctx context.Context) ([]string, error) {
	return s.contentIDs, s.statsErr
}

func (s *fakeStore) CreatedSince(ctx context.Context, e domain.Entity, since time.Time) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.since = since
	return s.created[e], s.statsErr
}

func (s *fakeStore) RecentUsers(ctx context.Context, limit int) ([]domain.User, error) {
	return s.recentUsers, s.statsErr
}

func (s *fakeStore) RecentBookmarks(ctx context.Context, limit int) ([]domain.BookmarkActivity, error) {
	return s.recent, s.statsErr
}

// fakeCache round-trips values through JSON like the Redis adapter does.
type fakeCache struct {
	store  map[string][]byte
	getErr error
	setErr error
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.setErr != nil {
		return c.setErr
	}
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}
