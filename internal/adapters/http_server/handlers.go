package httpserver

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"mytrip/internal/app"
	"mytrip/internal/domain"
)

// sitemap.xml defaults: 100 places from the capital area.
const (
	defaultSitemapArea    = "1"
	defaultSitemapPerArea = 100
)

type Handlers struct {
	Tours     *app.TourService
	Bookmarks *app.BookmarkService
	Stats     *app.StatsService
	Sitemap   *app.SitemapService
	Validate  *validator.Validate

	// SITEMAP_AREAS, SITEMAP_PER_AREA and SITEMAP_WORKERS, shared with cmd/sitemap
	SitemapAreas   []string
	SitemapPerArea int
	SitemapWorkers int
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	if h.Validate == nil {
		h.Validate = validator.New(validator.WithRequiredStructEnabled())
	}
	if len(h.SitemapAreas) == 0 {
		h.SitemapAreas = []string{defaultSitemapArea}
	}
	if h.SitemapPerArea <= 0 {
		h.SitemapPerArea = defaultSitemapPerArea
	}
	if h.SitemapWorkers <= 0 {
		h.SitemapWorkers = 1
	}
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/robots.txt", h.robots)
	s.mux.Get("/sitemap.xml", h.sitemap)

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/areas", h.listAreas)
		r.Get("/content-types", h.listContentTypes)

		r.Get("/tours", h.listTours)
		r.Get("/tours/geojson", h.toursGeoJSON)
		r.Get("/tours/{contentId}", h.getTour)

		r.Get("/bookmarks", h.listBookmarks)
		r.Delete("/bookmarks", h.removeBookmarks)
		r.Get("/bookmarks/ids", h.listBookmarkIDs)
		r.Get("/bookmarks/{contentId}", h.bookmarkStatus)
		r.Post("/bookmarks/{contentId}", h.addBookmark)
		r.Delete("/bookmarks/{contentId}", h.removeBookmark)

		r.Route("/stats", func(r chi.Router) {
			r.Use(RequireIdentity)
			r.Get("/", h.dashboard)
			r.Get("/summary", h.statsSummary)
			r.Get("/trend", h.statsTrend)
			r.Get("/popular", h.popularSpots)
			r.Get("/recent-users", h.recentUsers)
			r.Get("/recent-bookmarks", h.recentBookmarks)
		})
	})
}

// ---- response helpers ----

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeProblem(w, http.StatusBadRequest, "Invalid request", verrs.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
	case errors.Is(err, domain.ErrDuplicateBookmark):
		writeProblem(w, http.StatusConflict, "Conflict", "already bookmarked")
	case errors.Is(err, domain.ErrNothingToRemove):
		writeProblem(w, http.StatusBadRequest, "Invalid request", "no content ids to remove")
	case errors.Is(err, domain.ErrUpstreamRejected),
		errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, domain.ErrMalformedResponse):
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal response failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write response body failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached answers 304 when the client already holds this representation.
func writeCached(w http.ResponseWriter, r *http.Request, contentType string, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write cached body")
	}
}

// ---- request parsing ----

type toursRequest struct {
	Area    string `validate:"omitempty,numeric,max=3"`
	Type    string `validate:"omitempty,oneof=12 14 15 25 28 32 38 39"`
	Keyword string `validate:"max=100"`
	Page    int    `validate:"gte=1,lte=10000"`
	Size    int    `validate:"gte=1,lte=100"`
	Sort    string `validate:"omitempty,oneof=latest name"`
}

type trendRequest struct {
	Entity string `validate:"required,oneof=users bookmarks"`
	Period string `validate:"required,oneof=day week month"`
}

type limitRequest struct {
	Limit int `validate:"gte=1,lte=100"`
}

type removeManyRequest struct {
	ContentIDs []string `json:"contentIds" validate:"dive,required,numeric,max=20"`
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}

func (h *Handlers) parseTours(w http.ResponseWriter, r *http.Request) (app.TourQuery, bool) {
	q := r.URL.Query()
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error())
		return app.TourQuery{}, false
	}
	size, err := queryInt(r, "size", app.DefaultPageSize)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error())
		return app.TourQuery{}, false
	}
	req := toursRequest{
		Area:    q.Get("area"),
		Type:    q.Get("type"),
		Keyword: q.Get("keyword"),
		Page:    page,
		Size:    size,
		Sort:    q.Get("sort"),
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, r, err)
		return app.TourQuery{}, false
	}
	return app.TourQuery{
		Area:        req.Area,
		ContentType: req.Type,
		Keyword:     req.Keyword,
		Page:        req.Page,
		Size:        req.Size,
		Sort:        app.TourSort(req.Sort),
	}, true
}

func (h *Handlers) parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := queryInt(r, "limit", app.DefaultStatsLimit)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error())
		return 0, false
	}
	if err := h.Validate.Struct(limitRequest{Limit: n}); err != nil {
		writeError(w, r, err)
		return 0, false
	}
	return n, true
}

func (h *Handlers) contentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "contentId")
	if err := h.Validate.Var(id, "required,numeric,max=20"); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "contentId must be numeric")
		return "", false
	}
	return id, true
}

// ---- tours ----

func (h *Handlers) listAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.Tours.Areas(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, "application/json", areas)
}

func (h *Handlers) listContentTypes(w http.ResponseWriter, r *http.Request) {
	writeCached(w, r, "application/json", h.Tours.ContentTypes())
}

func (h *Handlers) listTours(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseTours(w, r)
	if !ok {
		return
	}
	page, err := h.Tours.List(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, "application/json", page)
}

func (h *Handlers) toursGeoJSON(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseTours(w, r)
	if !ok {
		return
	}
	fc, err := h.Tours.GeoJSON(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, "application/geo+json", fc)
}

func (h *Handlers) getTour(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}
	view, err := h.Tours.Detail(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, "application/json", view)
}

// ---- bookmarks ----

func (h *Handlers) listBookmarks(w http.ResponseWriter, r *http.Request) {
	sortBy := domain.ParseBookmarkSort(r.URL.Query().Get("sort"))
	out, err := h.Bookmarks.ListDetailed(r.Context(), ExternalID(r.Context()), sortBy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) listBookmarkIDs(w http.ResponseWriter, r *http.Request) {
	sortBy := domain.ParseBookmarkSort(r.URL.Query().Get("sort"))
	ids, err := h.Bookmarks.List(r.Context(), ExternalID(r.Context()), sortBy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contentIds": ids, "sort": sortBy})
}

// bookmarkStatus answers false for signed-out callers instead of 401.
func (h *Handlers) bookmarkStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}
	marked, err := h.Bookmarks.IsBookmarked(r.Context(), ExternalID(r.Context()), id)
	if err != nil && !errors.Is(err, domain.ErrUnauthenticated) {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contentId": id, "bookmarked": marked})
}

func (h *Handlers) addBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}
	if err := h.Bookmarks.Add(r.Context(), ExternalID(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"contentId": id, "bookmarked": true})
}

func (h *Handlers) removeBookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contentID(w, r)
	if !ok {
		return
	}
	if err := h.Bookmarks.Remove(r.Context(), ExternalID(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) removeBookmarks(w http.ResponseWriter, r *http.Request) {
	var req removeManyRequest
	b, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || (len(bytes.TrimSpace(b)) > 0 && json.Unmarshal(b, &req) != nil) {
		writeProblem(w, http.StatusBadRequest, "Invalid request", "body must be {\"contentIds\": [...]}")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Bookmarks.RemoveMany(r.Context(), ExternalID(r.Context()), req.ContentIDs); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- stats ----

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Stats.Dashboard(r.Context()))
}

func (h *Handlers) statsSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Stats.Summary(r.Context()))
}

func (h *Handlers) statsTrend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := trendRequest{Entity: q.Get("entity"), Period: q.Get("period")}
	if req.Period == "" {
		req.Period = string(domain.PeriodDay)
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}
	points := h.Stats.Trend(r.Context(), domain.Entity(req.Entity), domain.Period(req.Period))
	writeJSON(w, http.StatusOK, map[string]any{"entity": req.Entity, "period": req.Period, "points": points})
}

func (h *Handlers) popularSpots(w http.ResponseWriter, r *http.Request) {
	n, ok := h.parseLimit(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Stats.PopularSpots(r.Context(), n))
}

func (h *Handlers) recentUsers(w http.ResponseWriter, r *http.Request) {
	n, ok := h.parseLimit(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Stats.RecentUsers(r.Context(), n))
}

func (h *Handlers) recentBookmarks(w http.ResponseWriter, r *http.Request) {
	n, ok := h.parseLimit(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Stats.RecentBookmarks(r.Context(), n))
}

// ---- sitemap & robots ----

func (h *Handlers) sitemap(w http.ResponseWriter, r *http.Request) {
	set := h.Sitemap.Build(r.Context(), h.SitemapAreas, h.SitemapPerArea, h.SitemapWorkers)
	var buf bytes.Buffer
	if err := app.WriteSitemap(&buf, set); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handlers) robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, h.Sitemap.Robots())
}
