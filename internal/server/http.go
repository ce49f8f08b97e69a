package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/movie-trivia/internal/challenge"
	"github.com/gokatarajesh/movie-trivia/internal/config"
	"github.com/gokatarajesh/movie-trivia/internal/logging"
	httperrors "github.com/gokatarajesh/movie-trivia/pkg/http/errors"
)

// PingFunc checks that backing stores are reachable.
type PingFunc func(ctx context.Context) error

// NewHTTPServer wires base routes (health, metrics) and the challenge API.
// challengeHandler can be nil while the API is being brought up.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redis *redis.Client, challengeHandler *challenge.HTTPHandler) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewRouter(cfg, logger, pingDependencies(pool, redis), challengeHandler),
	}
}

// NewRouter builds the middleware-wrapped handler tree.
func NewRouter(cfg *config.App, logger zerolog.Logger, ping PingFunc, challengeHandler *challenge.HTTPHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				reqLogger := logging.FromContext(r.Context(), logger)
				reqLogger.Error().Err(err).Msg("dependency ping failed")
				httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, "dependencies unavailable")
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if challengeHandler != nil {
		challengeHandler.Register(mux)
	}

	var h http.Handler = mux
	h = withRateLimit(cfg.RateLimit)(h)
	h = withCORS(cfg.CORS)(h)
	h = withMetrics(mux)(h)
	h = withAccessLog(logger)(h)
	h = withRequestID(logger)(h)
	return h
}

func pingDependencies(pool *pgxpool.Pool, redis *redis.Client) PingFunc {
	return func(ctx context.Context) error {
		var errs []error
		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if redis != nil {
			if err := redis.Ping(ctx).Err(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
