package httpserver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpserver "mytrip/internal/adapters/http_server"
	"mytrip/internal/app"
	"mytrip/internal/domain"
)

// ---- fakes ----

type stubGateway struct {
	page    domain.TourPage
	pageErr error
	details map[string]*domain.TourDetail

	mu         sync.Mutex
	listAreas  []string
	listedRows []int
}

func (g *stubGateway) AreaCodes(ctx context.Context, numOfRows, pageNo int) ([]domain.AreaCode, error) {
	return []domain.AreaCode{{Code: "1", Name: "서울", Sequence: 1}}, nil
}
func (g *stubGateway) AreaBasedList(ctx context.Context, q domain.ListQuery) (domain.TourPage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listAreas = append(g.listAreas, q.AreaCode)
	g.listedRows = append(g.listedRows, q.NumOfRows)
	return g.page, g.pageErr
}
func (g *stubGateway) SearchKeyword(ctx context.Context, q domain.ListQuery) (domain.TourPage, error) {
	return g.page, g.pageErr
}
func (g *stubGateway) DetailCommon(ctx context.Context, contentID string) (*domain.TourDetail, error) {
	return g.details[contentID], nil
}
func (g *stubGateway) DetailIntro(ctx context.Context, contentID, contentTypeID string) (*domain.OperatingInfo, error) {
	return nil, nil
}
func (g *stubGateway) DetailImages(ctx context.Context, contentID string) ([]domain.TourImage, error) {
	return nil, nil
}

type memStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
	marks map[int64][]string
}

func (s *memStore) UserByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return s.users[externalID], nil
}
func (s *memStore) AddBookmark(ctx context.Context, userID int64, contentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.marks[userID] {
		if id == contentID {
			return domain.ErrDuplicateBookmark
		}
	}
	s.marks[userID] = append([]string{contentID}, s.marks[userID]...)
	return nil
}
func (s *memStore) RemoveBookmark(ctx context.Context, userID int64, contentID string) error {
	return s.RemoveBookmarks(ctx, userID, []string{contentID})
}
func (s *memStore) RemoveBookmarks(ctx context.Context, userID int64, contentIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []string
	for _, id := range s.marks[userID] {
		drop := false
		for _, d := range contentIDs {
			drop = drop || d == id
		}
		if !drop {
			kept = append(kept, id)
		}
	}
	s.marks[userID] = kept
	return nil
}
func (s *memStore) HasBookmark(ctx context.Context, userID int64, contentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.marks[userID] {
		if id == contentID {
			return true, nil
		}
	}
	return false, nil
}
func (s *memStore) ListBookmarks(ctx context.Context, userID int64) ([]domain.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Bookmark
	for _, id := range s.marks[userID] {
		out = append(out, domain.Bookmark{UserID: userID, ContentID: id})
	}
	return out, nil
}
func (s *memStore) CountUsers(ctx context.Context) (int, error)     { return len(s.users), nil }
func (s *memStore) CountBookmarks(ctx context.Context) (int, error) { return 0, nil }
func (s *memStore) BookmarkContentIDs(ctx context.Context) ([]string, error) {
	return nil, nil
}
func (s *memStore) CreatedSince(ctx context.Context, e domain.Entity, since time.Time) ([]time.Time, error) {
	return []time.Time{time.Now()}, nil
}
func (s *memStore) RecentUsers(ctx context.Context, limit int) ([]domain.User, error) {
	return nil, nil
}
func (s *memStore) RecentBookmarks(ctx context.Context, limit int) ([]domain.BookmarkActivity, error) {
	return nil, nil
}

// ---- harness ----

type harness struct {
	srv  http.Handler
	gw   *stubGateway
	keys keyPair
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, func(*httpserver.Handlers) {})
}

func newHarnessWith(t *testing.T, tweak func(h *httpserver.Handlers)) *harness {
	t.Helper()
	keys := newKeyPair(t)
	v, err := httpserver.NewVerifier(keys.pem, "")
	require.NoError(t, err)

	gw := &stubGateway{
		page: domain.TourPage{TotalCount: 1, Items: []domain.TourListItem{
			{ContentID: "126508", ContentTypeID: "12", Title: "경복궁", Addr1: "서울 종로구", MapX: "126.97", MapY: "37.57"},
		}},
		details: map[string]*domain.TourDetail{
			"126508": {TourListItem: domain.TourListItem{ContentID: "126508", ContentTypeID: "12", Title: "경복궁"}},
		},
	}
	store := &memStore{
		users: map[string]*domain.User{"user_abc": {ID: 1, ExternalID: "user_abc", Name: "민수"}},
		marks: map[int64][]string{},
	}

	hs := &httpserver.Handlers{
		Tours:     app.NewTourService(gw, nil, time.Hour),
		Bookmarks: app.NewBookmarkService(store, gw),
		Stats:     app.NewStatsService(store, gw, nil),
		Sitemap:   app.NewSitemapService(gw, "https://mytrip.example"),
	}
	tweak(hs)
	s := httpserver.New(httpserver.Options{Verifier: v})
	s.MountHandlers(hs)
	return &harness{srv: s.Mux(), gw: gw, keys: keys}
}

func (h *harness) do(t *testing.T, method, path, body, sub string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if sub != "" {
		req.Header.Set("Authorization", "Bearer "+h.keys.sign(t, validClaims(sub)))
	}
	rr := httptest.NewRecorder()
	h.srv.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

// ---- tests ----

func TestHealthz(t *testing.T) {
	rr := newHarness(t).do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestTours_ListAndETag(t *testing.T) {
	h := newHarness(t)
	rr := h.do(t, http.MethodGet, "/v1/tours?area=1&size=10", "", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var page domain.CardPage
	decode(t, rr, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "경복궁", page.Items[0].Title)
	require.NotNil(t, page.Items[0].Coords)
	assert.Equal(t, 1, page.TotalPages)

	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)
	req := httptest.NewRequest(http.MethodGet, "/v1/tours?area=1&size=10", nil)
	req.Header.Set("If-None-Match", etag)
	rr2 := httptest.NewRecorder()
	h.srv.ServeHTTP(rr2, req)
	assert.Equal(t, http.StatusNotModified, rr2.Code)
}

func TestTours_Validation(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{
		"/v1/tours?size=500",
		"/v1/tours?page=0",
		"/v1/tours?page=abc",
		"/v1/tours?type=99",
		"/v1/tours?sort=random",
		"/v1/tours/abc",
	} {
		rr := h.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, path)
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"), path)
	}
}

func TestTours_ErrorMapping(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodGet, "/v1/tours/999", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	h.gw.pageErr = &domain.RejectedError{Code: "22", Message: "LIMITED_NUMBER_OF_SERVICE_REQUESTS_EXCEEDS_ERROR"}
	rr = h.do(t, http.MethodGet, "/v1/tours", "", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	var p map[string]any
	decode(t, rr, &p)
	assert.EqualValues(t, 502, p["status"])
}

func TestTours_DetailAndGeoJSON(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodGet, "/v1/tours/126508", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var v map[string]any
	decode(t, rr, &v)
	assert.Equal(t, "관광지", v["contentTypeName"])

	rr = h.do(t, http.MethodGet, "/v1/tours/geojson?area=1", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/geo+json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `"FeatureCollection"`)

	rr = h.do(t, http.MethodGet, "/v1/areas", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "서울")
}

func TestBookmarks_Anonymous(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodPost, "/v1/bookmarks/126508", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = h.do(t, http.MethodGet, "/v1/bookmarks", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// unknown identity is treated as signed out
	rr = h.do(t, http.MethodPost, "/v1/bookmarks/126508", "", "user_nobody")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = h.do(t, http.MethodGet, "/v1/bookmarks/126508", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var st map[string]any
	decode(t, rr, &st)
	assert.Equal(t, false, st["bookmarked"])
}

func TestBookmarks_Lifecycle(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodPost, "/v1/bookmarks/126508", "", "user_abc")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = h.do(t, http.MethodPost, "/v1/bookmarks/126508", "", "user_abc")
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = h.do(t, http.MethodGet, "/v1/bookmarks/126508", "", "user_abc")
	var st map[string]any
	decode(t, rr, &st)
	assert.Equal(t, true, st["bookmarked"])

	rr = h.do(t, http.MethodGet, "/v1/bookmarks?sort=name", "", "user_abc")
	require.Equal(t, http.StatusOK, rr.Code)
	var list domain.BookmarkedTours
	decode(t, rr, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, domain.SortName, list.Sort)

	rr = h.do(t, http.MethodGet, "/v1/bookmarks/ids", "", "user_abc")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"126508"`)

	rr = h.do(t, http.MethodDelete, "/v1/bookmarks/126508", "", "user_abc")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = h.do(t, http.MethodDelete, "/v1/bookmarks/126508", "", "user_abc")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = h.do(t, http.MethodDelete, "/v1/bookmarks", `{"contentIds":[]}`, "user_abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(t, http.MethodDelete, "/v1/bookmarks", `{"contentIds":["x y"]}`, "user_abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(t, http.MethodDelete, "/v1/bookmarks", `{"contentIds":["126508","1"]}`, "user_abc")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestStats_RequireIdentity(t *testing.T) {
	h := newHarness(t)

	paths := []string{
		"/v1/stats",
		"/v1/stats/summary",
		"/v1/stats/trend?entity=users",
		"/v1/stats/popular",
		"/v1/stats/recent-users",
		"/v1/stats/recent-bookmarks?limit=5",
	}
	for _, path := range paths {
		rr := h.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
		assert.NotContains(t, rr.Body.String(), "민수", path)
	}
	for _, path := range paths {
		rr := h.do(t, http.MethodGet, path, "", "user_abc")
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestStats(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodGet, "/v1/stats", "", "user_abc")
	require.Equal(t, http.StatusOK, rr.Code)
	var d domain.Dashboard
	decode(t, rr, &d)
	assert.Equal(t, 1, d.Summary.TotalUsers)

	rr = h.do(t, http.MethodGet, "/v1/stats/trend?entity=posts", "", "user_abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(t, http.MethodGet, "/v1/stats/trend?entity=users&period=week", "", "user_abc")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"period":"week"`)

	rr = h.do(t, http.MethodGet, "/v1/stats/popular?limit=0", "", "user_abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSitemapAndRobots(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodGet, "/sitemap.xml", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/xml")
	assert.Contains(t, rr.Body.String(), "<loc>https://mytrip.example/places/126508</loc>")

	rr = h.do(t, http.MethodGet, "/robots.txt", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Disallow: /api/")
}

func TestSitemap_UsesConfiguredAreas(t *testing.T) {
	h := newHarnessWith(t, func(hs *httpserver.Handlers) {
		hs.SitemapAreas = []string{"6", "31"}
		hs.SitemapPerArea = 40
		hs.SitemapWorkers = 2
	})

	rr := h.do(t, http.MethodGet, "/sitemap.xml", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	h.gw.mu.Lock()
	defer h.gw.mu.Unlock()
	assert.ElementsMatch(t, []string{"6", "31"}, h.gw.listAreas)
	assert.Equal(t, []int{40, 40}, h.gw.listedRows)
	// the same place from two areas is listed once
	assert.Equal(t, 1, strings.Count(rr.Body.String(), "/places/126508</loc>"))
}

func TestSitemap_DefaultsToCapitalArea(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, http.MethodGet, "/sitemap.xml", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	h.gw.mu.Lock()
	defer h.gw.mu.Unlock()
	assert.Equal(t, []string{"1"}, h.gw.listAreas)
	assert.Equal(t, []int{100}, h.gw.listedRows)
}
