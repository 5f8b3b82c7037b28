package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/bookmarks/internal/adapter/repository/database"
	"github.com/vadimbarashkov/bookmarks/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/bookmarks/internal/config"
	"github.com/vadimbarashkov/bookmarks/internal/usecase"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/bookmarks/internal/adapter/delivery/http"
	sqldb "github.com/vadimbarashkov/bookmarks/pkg/database"
)

const serviceName = "bookmarks"

// NewLogger returns the service logger: JSON in prod, concise text elsewhere.
func NewLogger(cfg *config.Config, w io.Writer) *httplog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	return httplog.NewLogger(serviceName, httplog.Options{
		JSON:     cfg.Env == config.EnvProd,
		Concise:  cfg.Env != config.EnvProd,
		LogLevel: level,
		Writer:   w,
		Tags: map[string]string{
			"env": cfg.Env,
		},
	})
}

// newUseCase wires the use case to the bookmark store selected by cfg and
// returns a func that releases the store. SQL stores are migrated before use.
func newUseCase(ctx context.Context, cfg *config.Config) (*usecase.BookmarkUseCase, func() error, error) {
	const op = "app.newUseCase"

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return usecase.NewBookmarkUseCase(memory.NewBookmarkRepository()), func() error { return nil }, nil
	case config.DriverPostgres, config.DriverSQLite:
	default:
		return nil, nil, fmt.Errorf("%s: unsupported storage driver %q", op, cfg.Storage.Driver)
	}

	dsn := cfg.DatabaseDSN()

	if err := sqldb.RunMigrations(cfg.Storage.Driver, dsn); err != nil {
		return nil, nil, fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	opts := []sqldb.Option{
		sqldb.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		sqldb.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		sqldb.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		sqldb.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	}
	if cfg.Storage.Driver == config.DriverSQLite {
		// SQLite allows a single writer at a time.
		opts = []sqldb.Option{sqldb.WithMaxOpenConns(1)}
	}

	db, err := sqldb.New(ctx, cfg.Storage.Driver, dsn, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	return usecase.NewBookmarkUseCase(database.NewBookmarkRepository(db)), db.Close, nil
}

func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: invalid config: %w", op, err)
	}

	logger := NewLogger(cfg, os.Stdout)

	uc, closeStore, err := newUseCase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer closeStore()

	if cfg.APIToken == "" {
		logger.Warn("api token is not set, every protected request will be rejected")
	}

	router := delivery.NewRouter(logger, uc, delivery.RouterOptions{
		APIToken:       cfg.APIToken,
		SwaggerEnabled: cfg.HTTPServer.SwaggerEnabled,
	})

	ln, err := net.Listen("tcp", cfg.HTTPServer.Addr())
	if err != nil {
		return fmt.Errorf("%s: failed to listen: %w", op, err)
	}

	server := &http.Server{
		Handler:        router,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	logger.Info("starting server",
		slog.String("addr", ln.Addr().String()),
		slog.String("storage", cfg.Storage.Driver),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ServeTLS(ln, cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.Serve(ln)
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
