package app

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"mytrip/internal/domain"
	"mytrip/internal/normalize"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type SitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type URLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

type SitemapService struct {
	gw      domain.TourGateway
	siteURL string
	now     func() time.Time
}

func NewSitemapService(gw domain.TourGateway, siteURL string) *SitemapService {
	return &SitemapService{gw: gw, siteURL: strings.TrimRight(siteURL, "/"), now: time.Now}
}

// Build lists the static pages plus up to perArea places from each area.
// Areas are fetched by at most workers goroutines; a failed area only loses
// its own entries.
func (s *SitemapService) Build(ctx context.Context, areas []string, perArea, workers int) URLSet {
	now := s.now().In(normalize.Seoul).Format(time.RFC3339)
	set := URLSet{Xmlns: sitemapNS, URLs: []SitemapURL{
		{Loc: s.siteURL + "/", LastMod: now, ChangeFreq: "daily", Priority: "1.0"},
		{Loc: s.siteURL + "/bookmarks", LastMod: now, ChangeFreq: "daily", Priority: "0.8"},
	}}
	if workers < 1 {
		workers = 1
	}

	perSlot := make([][]domain.TourListItem, len(areas))
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	for i, area := range areas {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("sitemap build interrupted")
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			page, err := s.gw.AreaBasedList(ctx, domain.ListQuery{AreaCode: area, PageNo: 1, NumOfRows: perArea})
			if err != nil {
				log.Warn().Str("area", area).Err(err).Msg("sitemap area skipped")
				return
			}
			perSlot[i] = page.Items
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, items := range perSlot {
		for _, it := range items {
			if it.ContentID == "" || seen[it.ContentID] {
				continue
			}
			seen[it.ContentID] = true
			lastmod := now
			if t, ok := normalize.ParseProviderTime(it.ModifiedTime); ok {
				lastmod = t.Format(time.RFC3339)
			}
			set.URLs = append(set.URLs, SitemapURL{
				Loc:        fmt.Sprintf("%s/places/%s", s.siteURL, it.ContentID),
				LastMod:    lastmod,
				ChangeFreq: "weekly",
				Priority:   "0.7",
			})
		}
	}
	return set
}

func WriteSitemap(w io.Writer, set URLSet) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Robots renders robots.txt for the site.
func (s *SitemapService) Robots() string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	for _, p := range []string{"/api/", "/auth-test/", "/map-test/", "/storage-test/"} {
		b.WriteString("Disallow: " + p + "\n")
	}
	b.WriteString("\nSitemap: " + s.siteURL + "/sitemap.xml\n")
	return b.String()
}
