package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"mytrip/internal/domain"
	"mytrip/internal/normalize"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	areasCacheKey = "tour:areas:v1"
	areaPageSize  = 50
)

// TourSort orders a listing page. The provider order is kept when empty.
type TourSort string

const (
	TourSortLatest TourSort = "latest"
	TourSortName   TourSort = "name"
)

type TourQuery struct {
	Area        string
	ContentType string
	Keyword     string
	Page        int
	Size        int
	Sort        TourSort
}

func (q TourQuery) normalized() TourQuery {
	q.Keyword = strings.TrimSpace(q.Keyword)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 {
		q.Size = DefaultPageSize
	}
	if q.Size > MaxPageSize {
		q.Size = MaxPageSize
	}
	return q
}

type TourService struct {
	gw      domain.TourGateway
	cache   domain.Cache
	areaTTL time.Duration
}

func NewTourService(gw domain.TourGateway, cache domain.Cache, areaTTL time.Duration) *TourService {
	return &TourService{gw: gw, cache: cache, areaTTL: areaTTL}
}

// List returns one page of cards. A keyword switches to keyword search.
func (s *TourService) List(ctx context.Context, q TourQuery) (domain.CardPage, error) {
	q = q.normalized()
	lq := domain.ListQuery{
		AreaCode:      q.Area,
		ContentTypeID: q.ContentType,
		Keyword:       q.Keyword,
		PageNo:        q.Page,
		NumOfRows:     q.Size,
	}

	var (
		page domain.TourPage
		err  error
	)
	if q.Keyword != "" {
		page, err = s.gw.SearchKeyword(ctx, lq)
	} else {
		page, err = s.gw.AreaBasedList(ctx, lq)
	}
	if err != nil {
		return domain.CardPage{}, err
	}

	cards := make([]domain.TourCard, 0, len(page.Items))
	for _, it := range page.Items {
		cards = append(cards, toCard(it))
	}
	switch q.Sort {
	case TourSortLatest:
		sortByModified(cards)
	case TourSortName:
		sortByTitle(cards)
	}

	return domain.CardPage{
		Items:      cards,
		TotalCount: page.TotalCount,
		PageNo:     q.Page,
		NumOfRows:  q.Size,
		TotalPages: (page.TotalCount + q.Size - 1) / q.Size,
		Bounds:     boundsOf(cards),
	}, nil
}

// GeoJSON renders the located cards of a page as point features.
func (s *TourService) GeoJSON(ctx context.Context, q TourQuery) (*geojson.FeatureCollection, error) {
	page, err := s.List(ctx, q)
	if err != nil {
		return nil, err
	}
	fc := geojson.NewFeatureCollection()
	for _, c := range page.Items {
		if c.Coords == nil {
			continue
		}
		f := geojson.NewFeature(orb.Point{c.Coords.Lng, c.Coords.Lat})
		f.ID = c.ContentID
		f.Properties["contentId"] = c.ContentID
		f.Properties["contentTypeId"] = c.ContentTypeID
		f.Properties["contentTypeName"] = c.ContentTypeName
		f.Properties["title"] = c.Title
		f.Properties["address"] = c.Address
		if c.Thumbnail != "" {
			f.Properties["thumbnail"] = c.Thumbnail
		}
		fc.Append(f)
	}
	if b := page.Bounds; b != nil {
		fc.BBox = geojson.NewBBox(orb.Bound{
			Min: orb.Point{b.MinLng, b.MinLat},
			Max: orb.Point{b.MaxLng, b.MaxLat},
		})
	}
	return fc, nil
}

// Detail loads the place page. The common detail is required; operating
// info and images are fetched concurrently and each may fail on its own.
func (s *TourService) Detail(ctx context.Context, contentID string) (domain.TourDetailView, error) {
	d, err := s.gw.DetailCommon(ctx, contentID)
	if err != nil {
		return domain.TourDetailView{}, err
	}
	if d == nil {
		return domain.TourDetailView{}, fmt.Errorf("%w: tour %s", domain.ErrNotFound, contentID)
	}

	view := domain.TourDetailView{
		TourCard: toCard(d.TourListItem),
		Overview: normalize.SanitizeRichText(d.Overview),
		Zipcode:  d.Zipcode,
		Images:   []domain.TourImage{},
	}
	if u, ok := normalize.ExtractLinkTarget(d.Homepage); ok {
		view.Homepage = u
	}

	var (
		info    *domain.OperatingInfo
		imgs    []domain.TourImage
		infoErr error
		imgsErr error
	)
	all(ctx,
		func(ctx context.Context) { info, infoErr = s.gw.DetailIntro(ctx, contentID, d.ContentTypeID) },
		func(ctx context.Context) { imgs, imgsErr = s.gw.DetailImages(ctx, contentID) },
	)

	if infoErr != nil {
		log.Warn().Str("content_id", contentID).Err(infoErr).Msg("operating info unavailable")
		view.InfoFailed = true
	} else if info != nil {
		view.Info = sanitizeInfo(info)
	}
	if imgsErr != nil {
		log.Warn().Str("content_id", contentID).Err(imgsErr).Msg("images unavailable")
		view.ImgsFailed = true
	} else if len(imgs) > 0 {
		view.Images = imgs
	}
	return view, nil
}

func sanitizeInfo(in *domain.OperatingInfo) *domain.OperatingInfo {
	out := &domain.OperatingInfo{ContentID: in.ContentID, ContentTypeID: in.ContentTypeID}
	for k, v := range in.Known {
		out.Set(string(k), normalize.SanitizeRichText(v))
	}
	for k, v := range in.Extra {
		out.Set(k, normalize.SanitizeRichText(v))
	}
	return out
}

// Areas returns the top-level area codes, served from the cache when possible.
func (s *TourService) Areas(ctx context.Context) ([]domain.AreaCode, error) {
	var out []domain.AreaCode
	if s.cache != nil {
		ok, err := s.cache.Get(ctx, areasCacheKey, &out)
		if err != nil {
			log.Warn().Err(err).Str("key", areasCacheKey).Msg("area cache read failed; asking the provider")
		}
		if ok && err == nil {
			return out, nil
		}
		out = nil
	}
	out, err := s.gw.AreaCodes(ctx, areaPageSize, 1)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	if s.cache != nil && len(out) > 0 {
		if err := s.cache.Set(ctx, areasCacheKey, out, int(s.areaTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", areasCacheKey).Msg("area cache write failed")
		}
	}
	return out, nil
}

func (s *TourService) ContentTypes() []domain.ContentType {
	return domain.ContentTypes()
}
