// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/preedep/MQUsageViewer/adapters/auth"
	"github.com/preedep/MQUsageViewer/adapters/cache"
	"github.com/preedep/MQUsageViewer/adapters/clock"
	"github.com/preedep/MQUsageViewer/adapters/hasher"
	"github.com/preedep/MQUsageViewer/adapters/http/api"
	"github.com/preedep/MQUsageViewer/adapters/metrics"
	"github.com/preedep/MQUsageViewer/adapters/sqlite"
	"github.com/preedep/MQUsageViewer/app"
	"github.com/preedep/MQUsageViewer/config"
	"github.com/preedep/MQUsageViewer/ports"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	DB         *sqlite.DB
	Cache      *cache.Redis // nil when no redis address is configured
	Metrics    *metrics.Collector
	HTTPServer *http.Server
}

// New wires the application from configuration. The signing secret and
// credential pair are read exactly once here and never mutated afterwards.
func New(cfg *config.Config) (*App, error) {
	logger := setupLogger(cfg.Logging)

	db, err := sqlite.Open(cfg.Database.DSN, cfg.Database.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	var referenceCache *cache.Redis
	if cfg.Redis.Addr != "" {
		referenceCache = cache.New(cfg.Redis.Addr)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := referenceCache.Ping(pingCtx); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).
				Msg("reference cache unreachable, reads will fall through to the store")
		} else {
			logger.Info().Str("addr", cfg.Redis.Addr).Msg("reference cache enabled")
		}
		cancel()
	} else {
		logger.Info().Msg("no redis address configured, reference cache disabled")
	}

	// The configured password is peppered with the salt and hashed once at
	// startup; the plaintext is not retained.
	h := hasher.NewBcrypt(0)
	passwordHash, err := h.Hash(cfg.Auth.Password + cfg.Auth.Salt)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("hash configured password: %w", err)
	}

	tokens := auth.NewTokenService(auth.Config{
		Secret:       cfg.Auth.Secret,
		Username:     cfg.Auth.Username,
		PasswordHash: passwordHash,
		Salt:         cfg.Auth.Salt,
		Hasher:       h,
		Clock:        clock.Real{},
	})

	m := metrics.New()
	store := sqlite.NewUsageStore(db)

	handler := api.NewHandler(api.Deps{
		Tokens:    tokens,
		Reference: app.NewReferenceService(store, cacheOrNil(referenceCache), m, logger),
		Search:    app.NewSearchService(store, m, logger),
		Metrics:   m,
		Logger:    logger,
	})

	router := handler.Router()
	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &App{
		Logger:     logger,
		Config:     cfg,
		DB:         db,
		Cache:      referenceCache,
		Metrics:    m,
		HTTPServer: server,
	}, nil
}

// Run starts the HTTP server and blocks until a shutdown signal arrives.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("starting MQ usage viewer")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("http server shutdown")
	}

	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("close cache client")
		}
	}

	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// cacheOrNil keeps the typed-nil pointer out of the ports.Cache interface.
func cacheOrNil(c *cache.Redis) ports.Cache {
	if c == nil {
		return nil
	}
	return c
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
