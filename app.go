package blotter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nasermirzaei89/blotter/contents"
	"github.com/nasermirzaei89/blotter/db/sqlite3"
	"github.com/nasermirzaei89/blotter/server"
	"github.com/nasermirzaei89/blotter/web"
	"github.com/nasermirzaei89/env"
)

const (
	defaultNameFilterMinCapacity       = 10_000
	defaultNameFilterFalsePositiveRate = 0.01
)

type App struct {
	server  *server.Server
	handler *web.Handler
	db      *sql.DB
}

func NewApp(ctx context.Context) (*App, error) {
	db, err := sqlite3.NewDB(ctx, env.GetString("DB_DSN", "file:blotter.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	err = sqlite3.MigrateUp(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	authorRepo := sqlite3.NewAuthorRepository(db)
	postRepo := sqlite3.NewPostRepository(db)

	contentsSvc := contents.NewService(authorRepo, postRepo)

	err = contentsSvc.LoadNameFilter(ctx, getNameFilterMinCapacityFromEnv(), getNameFilterFalsePositiveRateFromEnv())
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to load author name filter: %w", err)
	}

	app := &App{
		server:  newServer(),
		handler: web.NewHandler(contentsSvc),
		db:      db,
	}

	return app, nil
}

func (app *App) Run(ctx context.Context) error {
	// Handle SIGINT (CTRL+C) and SIGTERM gracefully.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		if app.db != nil {
			err := app.db.Close()
			if err != nil {
				slog.ErrorContext(ctx, "failed to close database", "error", err)
			}
		}
	}()

	err := app.server.Run(ctx, app.handler)
	if err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}

	return nil
}

func newServer() *server.Server {
	server := &server.Server{
		Port: env.GetString("PORT", server.DefaultPort),
		Host: env.GetString("HOST", ""),
		TLS: server.ServerTLS{
			Enabled: env.GetBool("TLS_ENABLED", false),
			Mode:    env.GetString("TLS_MODE", server.DefaultTLSMode),
			AutoCert: &server.ServerTLSAutoCert{
				CacheDir: env.GetString("TLS_AUTOCERT_CACHE_DIR", "./cert-cache"),
				Domains:  env.GetStringSlice("TLS_AUTOCERT_DOMAINS", []string{}),
				Email:    env.GetString("TLS_AUTOCERT_EMAIL", ""),
			},
			CertFile: env.GetString("TLS_CERT_FILE", ""),
			KeyFile:  env.GetString("TLS_KEY_FILE", ""),
		},
	}

	return server
}

func GetLogLevelFromEnv() slog.Level {
	levelStr := env.GetString("LOG_LEVEL", "info")
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("unknown log level, defaulting to info", "level", levelStr)

		return slog.LevelInfo
	}
}

func getNameFilterMinCapacityFromEnv() uint {
	return env.GetUint("NAME_FILTER_MIN_CAPACITY", defaultNameFilterMinCapacity)
}

func getNameFilterFalsePositiveRateFromEnv() float64 {
	rate := env.GetFloat64("NAME_FILTER_FALSE_POSITIVE_RATE", defaultNameFilterFalsePositiveRate)
	if rate <= 0 || rate >= 1 {
		slog.Warn("name filter false positive rate out of range, using default", "rate", rate)

		return defaultNameFilterFalsePositiveRate
	}

	return rate
}
