package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lexiduel/lexiduel/internal/config"
	"github.com/lexiduel/lexiduel/internal/duel"
	"github.com/lexiduel/lexiduel/internal/logging"
)

// NewHTTPServer wires base routes (health, metrics) plus the duel surface.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redis *redis.Client, duelHandlers *duel.HTTPHandlers, duelWSHandler http.HandlerFunc) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, pool, redis); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	// Duel lifecycle endpoints
	if duelHandlers != nil {
		mux.HandleFunc("POST /v1/duels", duelHandlers.CreateDuel)
		mux.HandleFunc("GET /v1/duels", duelHandlers.ListDuels)
		mux.HandleFunc("GET /v1/duels/{id}", duelHandlers.GetDuel)
		mux.HandleFunc("POST /v1/duels/{id}/accept", duelHandlers.AcceptDuel)
		mux.HandleFunc("POST /v1/duels/{id}/reject", duelHandlers.RejectDuel)
		mux.HandleFunc("POST /v1/duels/{id}/stop", duelHandlers.StopDuel)
	}

	// WebSocket endpoint
	if duelWSHandler != nil {
		mux.HandleFunc("/ws/duels", duelWSHandler)
	} else {
		mux.HandleFunc("/ws/duels", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "WebSocket handler not yet integrated", http.StatusNotImplemented)
		})
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redis *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redis.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}
