package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lexiduel/lexiduel/internal/config"
	"github.com/lexiduel/lexiduel/internal/db/repository"
	"github.com/lexiduel/lexiduel/internal/duel"
	"github.com/lexiduel/lexiduel/internal/identity"
	"github.com/lexiduel/lexiduel/internal/logging"
	"github.com/lexiduel/lexiduel/internal/server"
	"github.com/lexiduel/lexiduel/internal/wordlist"
	ws "github.com/lexiduel/lexiduel/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps config, logger, Postgres, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	duelRepo := repository.NewDuelRepository(pool)
	themeRepo := repository.NewThemeRepository(pool)

	resolver := identity.NewResolver([]byte(cfg.Security.TokenSecret), cfg.Security.TokenTTL, cfg.Security.TokenIssuer)

	wordCache := wordlist.NewRedisCache(redisClient, cfg.Duel.WordCacheTTL)
	wordSvc := wordlist.NewService(themeRepo, wordCache, logger)

	liveStore := duel.NewStateStore(redisClient, logger)
	duelSvc := duel.NewService(duelRepo, liveStore, wordSvc, logger)

	wsHub := ws.NewHub(logger)
	duelWSHandler := duel.NewHandler(duelSvc, wsHub, logger)
	duelHandlers := duel.NewHTTPHandlers(duelSvc, resolver, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, duelHandlers, duelWSHandler.WebSocketHandler(resolver))

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
