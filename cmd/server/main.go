package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/interviewace/api/internal/auth"
	"github.com/interviewace/api/internal/bookmark"
	"github.com/interviewace/api/internal/config"
	"github.com/interviewace/api/internal/database"
	"github.com/interviewace/api/internal/handler/health"
	"github.com/interviewace/api/internal/interview"
	"github.com/interviewace/api/internal/migrations"
	"github.com/interviewace/api/internal/server"
	"github.com/interviewace/api/internal/session"
	"github.com/interviewace/api/internal/store"
	"github.com/interviewace/api/internal/voice"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(ctx, db, logger); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Auth ---
	passwords, err := auth.NewPasswords(cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("configuring passwords: %w", err)
	}
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	st := store.NewSQLiteStore(db)
	demoHash, err := passwords.Hash(cfg.DemoPassword)
	if err != nil {
		return fmt.Errorf("hashing demo password: %w", err)
	}
	if err := st.SeedDemo(ctx, logger, demoHash); err != nil {
		return fmt.Errorf("seeding demo data: %w", err)
	}

	checks := map[string]health.Checker{"sqlite": dbChecker{db}}

	// --- Bookmarks: Redis when configured, SQLite otherwise ---
	var kv bookmark.KV = bookmark.NewSQLiteKV(db)
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		kv = bookmark.NewRedisKV(rdb, "interviewace:")
		checks["redis"] = redisChecker{rdb}
		logger.Info("connected to redis", "bookmarks", "redis")
	}

	// --- Sessions ---
	mode, err := interview.ParseShuffleMode(cfg.ShuffleMode)
	if err != nil {
		return err
	}
	catalog := interview.DefaultCatalog()
	selector := interview.NewSelector(catalog,
		interview.WithCategoryFilter(cfg.ApplyCategoryFilter),
		interview.WithShuffle(mode),
	)
	sessions := session.NewManager(selector, session.WallClock{}, logger)
	reaper := session.NewReaper(sessions, cfg.SessionTTL, cfg.ReapInterval, logger)
	logger.Info("question catalog loaded", "questions", len(catalog), "shuffle", mode, "category_filter", cfg.ApplyCategoryFilter)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Store:       st,
		Sessions:    sessions,
		Catalog:     catalog,
		Bookmarks:   kv,
		Passwords:   passwords,
		Tokens:      tokens,
		Voice:       voice.NewElevenLabs(cfg.VoiceURL),
		SPADir:      cfg.SPADir,
		CORSOrigins: cfg.CORSOrigins,
	}, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		return reaper.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		err := srv.Shutdown(context.Background())
		sessions.Close()
		return err
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }

// redisChecker adapts *redis.Client to health.Checker.
type redisChecker struct{ client *redis.Client }

func (r redisChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }
