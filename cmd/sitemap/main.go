package main

import (
	"bufio"
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"mytrip/internal/adapters/observability"
	"mytrip/internal/adapters/tourapi"
	"mytrip/internal/app"
	"mytrip/internal/shared"
)

// sitemap writes sitemap.xml and robots.txt for a static deployment.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Strs("areas", cfg.SitemapAreas).
		Int("per_area", cfg.SitemapPerArea).
		Int("workers", cfg.SitemapWorkers).
		Str("out", cfg.SitemapOut).
		Msg("sitemap build starting")

	gw, err := tourapi.New(tourapi.Options{
		BaseURL:    cfg.TourBase,
		ServiceKey: cfg.TourKey,
		MobileOS:   cfg.TourMobileOS,
		MobileApp:  cfg.TourMobileApp,
		RPS:        cfg.TourRPS,
		Timeout:    cfg.TourTimeout,
		Breaker:    cfg.TourBreaker,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tour API client")
	}

	svc := app.NewSitemapService(gw, cfg.SiteURL)
	set := svc.Build(ctx, cfg.SitemapAreas, cfg.SitemapPerArea, cfg.SitemapWorkers)

	if err := writeFile(cfg.SitemapOut, func(w *bufio.Writer) error { return app.WriteSitemap(w, set) }); err != nil {
		log.Fatal().Err(err).Msg("write sitemap failed")
	}
	robots := filepath.Join(filepath.Dir(cfg.SitemapOut), "robots.txt")
	if err := writeFile(robots, func(w *bufio.Writer) error {
		_, err := w.WriteString(svc.Robots())
		return err
	}); err != nil {
		log.Fatal().Err(err).Msg("write robots.txt failed")
	}

	log.Info().Int("urls", len(set.URLs)).Msg("sitemap build completed")
}

func writeFile(path string, fill func(w *bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := fill(w); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
