// Package storage selects the bookmark store backend.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"mytrip/internal/domain"
	"mytrip/internal/shared"
	mysqlrepo "mytrip/internal/storage/mysql"
	"mytrip/internal/storage/postgres"
)

// Open connects the backend named by cfg.DBDriver and applies the pool limits.
func Open(ctx context.Context, cfg shared.Config) (domain.Store, error) {
	var (
		db    *sql.DB
		store domain.Store
	)
	switch cfg.DBDriver {
	case "", "mysql":
		var err error
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("sql.Open: %w", err)
		}
		store = mysqlrepo.New(db)
	case "postgres":
		pg, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		db, store = pg.DB(), pg
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("database connection ok")
	return store, nil
}
