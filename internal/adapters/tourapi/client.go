// Package tourapi is the gateway to the KorService2 open data API.
package tourapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"mytrip/internal/adapters/observability"
	"mytrip/internal/domain"
)

const (
	DefaultBaseURL = "https://apis.data.go.kr/B551011/KorService2"

	// freshness hint for any HTTP cache between us and the provider
	cacheHint = "max-age=3600"

	maxBodyBytes = 8 << 20
)

type Options struct {
	BaseURL    string
	ServiceKey string
	MobileOS   string
	MobileApp  string
	RPS        int
	Timeout    time.Duration
	Breaker    bool
	HTTPClient *http.Client
}

// Client holds only immutable configuration plus the limiter and breaker,
// both of which are safe for concurrent use.
type Client struct {
	base   string
	hc     *http.Client
	common url.Values
	rl     *rate.Limiter
	cb     *gobreaker.CircuitBreaker[[]byte]
}

func New(o Options) (*Client, error) {
	if o.ServiceKey == "" {
		return nil, fmt.Errorf("tour API service key is required")
	}
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.MobileOS == "" {
		o.MobileOS = "ETC"
	}
	if o.MobileApp == "" {
		o.MobileApp = "MyTrip"
	}
	if o.RPS <= 0 {
		o.RPS = 10
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}

	key := o.ServiceKey
	// data.go.kr hands out keys in an already percent-encoded form as well;
	// decode those so url.Values does not encode them twice
	if strings.Contains(key, "%") {
		if dec, err := url.QueryUnescape(key); err == nil {
			key = dec
		}
	}
	common := url.Values{}
	common.Set("serviceKey", key)
	common.Set("MobileOS", o.MobileOS)
	common.Set("MobileApp", o.MobileApp)
	common.Set("_type", "json")

	c := &Client{
		base:   strings.TrimRight(o.BaseURL, "/"),
		hc:     hc,
		common: common,
		rl:     rate.NewLimiter(rate.Limit(o.RPS), o.RPS),
	}
	if o.Breaker {
		c.cb = newBreaker("tourapi")
	}
	return c, nil
}

// ---- Public API ----

func (c *Client) AreaCodes(ctx context.Context, numOfRows, pageNo int) ([]domain.AreaCode, error) {
	p := url.Values{}
	p.Set("numOfRows", strconv.Itoa(numOfRows))
	p.Set("pageNo", strconv.Itoa(pageNo))
	items, _, err := c.call(ctx, "/areaCode2", p)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AreaCode, 0, len(items))
	for _, m := range items {
		out = append(out, mapAreaCode(m))
	}
	return out, nil
}

func (c *Client) AreaBasedList(ctx context.Context, q domain.ListQuery) (domain.TourPage, error) {
	p := pageParams(q)
	return c.list(ctx, "/areaBasedList2", p, q)
}

// SearchKeyword sends the keyword through the query encoder, so non-ASCII
// keywords always reach the provider percent-encoded.
func (c *Client) SearchKeyword(ctx context.Context, q domain.ListQuery) (domain.TourPage, error) {
	if strings.TrimSpace(q.Keyword) == "" {
		return domain.TourPage{}, fmt.Errorf("keyword is required")
	}
	p := pageParams(q)
	p.Set("keyword", strings.TrimSpace(q.Keyword))
	return c.list(ctx, "/searchKeyword2", p, q)
}

func (c *Client) DetailCommon(ctx context.Context, contentID string) (*domain.TourDetail, error) {
	p := url.Values{}
	p.Set("contentId", contentID)
	for _, k := range []string{"defaultYN", "overviewYN", "addrinfoYN", "homepageYN", "mapinfoYN"} {
		p.Set(k, "Y")
	}
	items, _, err := c.call(ctx, "/detailCommon2", p)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	d := mapDetail(items[0])
	return &d, nil
}

func (c *Client) DetailIntro(ctx context.Context, contentID, contentTypeID string) (*domain.OperatingInfo, error) {
	p := url.Values{}
	p.Set("contentId", contentID)
	p.Set("contentTypeId", contentTypeID)
	items, _, err := c.call(ctx, "/detailIntro2", p)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return mapOperatingInfo(items[0]), nil
}

func (c *Client) DetailImages(ctx context.Context, contentID string) ([]domain.TourImage, error) {
	p := url.Values{}
	p.Set("contentId", contentID)
	p.Set("imageYN", "Y")
	items, _, err := c.call(ctx, "/detailImage2", p)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TourImage, 0, len(items))
	for _, m := range items {
		out = append(out, mapImage(m))
	}
	return out, nil
}

// ---- Internals ----

func pageParams(q domain.ListQuery) url.Values {
	p := url.Values{}
	if q.AreaCode != "" {
		p.Set("areaCode", q.AreaCode)
	}
	if q.ContentTypeID != "" {
		p.Set("contentTypeId", q.ContentTypeID)
	}
	p.Set("numOfRows", strconv.Itoa(q.NumOfRows))
	p.Set("pageNo", strconv.Itoa(q.PageNo))
	return p
}

func (c *Client) list(ctx context.Context, endpoint string, p url.Values, q domain.ListQuery) (domain.TourPage, error) {
	items, meta, err := c.call(ctx, endpoint, p)
	if err != nil {
		return domain.TourPage{}, err
	}
	page := domain.TourPage{
		Items:      make([]domain.TourListItem, 0, len(items)),
		TotalCount: len(items),
		PageNo:     q.PageNo,
		NumOfRows:  q.NumOfRows,
	}
	for _, m := range items {
		page.Items = append(page.Items, mapListItem(m))
	}
	if meta.TotalCount != nil {
		page.TotalCount = *meta.TotalCount
	}
	if meta.PageNo != nil {
		page.PageNo = *meta.PageNo
	}
	if meta.NumOfRows != nil {
		page.NumOfRows = *meta.NumOfRows
	}
	return page, nil
}

// call performs one rate-limited request and validates the envelope. It never retries.
func (c *Client) call(ctx context.Context, endpoint string, params url.Values) ([]map[string]any, pageMeta, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, pageMeta{}, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}

	q := url.Values{}
	for k, v := range c.common {
		q[k] = v
	}
	for k, v := range params {
		q[k] = v
	}
	u := c.base + endpoint + "?" + q.Encode()

	log.Debug().Str("endpoint", endpoint).Msg("tour api call")

	var (
		body []byte
		err  error
	)
	if c.cb != nil {
		body, err = c.cb.Execute(func() ([]byte, error) { return c.fetch(ctx, endpoint, u) })
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
		}
	} else {
		body, err = c.fetch(ctx, endpoint, u)
	}
	if err != nil {
		log.Warn().Str("endpoint", endpoint).Str("kind", observability.LabelErr(err)).Err(err).Msg("tour api call failed")
		return nil, pageMeta{}, err
	}

	items, meta, err := decodeEnvelope(body)
	if err != nil {
		log.Warn().Str("endpoint", endpoint).Str("kind", observability.LabelErr(err)).Err(err).Msg("tour api response rejected")
		return nil, pageMeta{}, err
	}
	return items, meta, nil
}

// fetch issues the GET and returns the raw body of a 2xx response.
func (c *Client) fetch(ctx context.Context, endpoint, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", cacheHint)
	req.Header.Set("User-Agent", "mytrip/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("tourapi", endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("tourapi", endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrUpstreamUnavailable,
			resp.StatusCode, strings.TrimSpace(string(b)))
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrUpstreamUnavailable, err)
	}
	return b, nil
}
