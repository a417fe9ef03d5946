package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "mytrip/internal/adapters/http_server"
	"mytrip/internal/adapters/observability"
	redisad "mytrip/internal/adapters/redis"
	"mytrip/internal/adapters/tourapi"
	"mytrip/internal/app"
	"mytrip/internal/shared"
	"mytrip/internal/storage"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, observability.MetricsHandler(reg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open store failed")
	}
	defer store.Close()

	// deps
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable; area codes will be fetched on every request")
	}

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

	verifier, err := server.NewVerifier(cfg.AuthPublicKey, cfg.AuthIssuer)
	if err != nil {
		log.Fatal().Err(err).Msg("auth verifier")
	}

	// http
	srv := server.New(server.Options{
		RateLimitPerMin: cfg.RateLimitPerMin,
		CORSOrigins:     cfg.CORSOrigins,
		Verifier:        verifier,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Tours:     app.NewTourService(gw, cache, cfg.AreaCacheTTL),
		Bookmarks: app.NewBookmarkService(store, gw),
		Stats:     app.NewStatsService(store, gw, cfg.StatsZone),
		Sitemap:   app.NewSitemapService(gw, cfg.SiteURL),

		SitemapAreas:   cfg.SitemapAreas,
		SitemapPerArea: cfg.SitemapPerArea,
		SitemapWorkers: cfg.SitemapWorkers,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
