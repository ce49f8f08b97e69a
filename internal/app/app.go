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

	"github.com/gokatarajesh/movie-trivia/internal/challenge"
	"github.com/gokatarajesh/movie-trivia/internal/config"
	"github.com/gokatarajesh/movie-trivia/internal/db/repository"
	"github.com/gokatarajesh/movie-trivia/internal/logging"
	"github.com/gokatarajesh/movie-trivia/internal/movie"
	"github.com/gokatarajesh/movie-trivia/internal/movie/tmdb"
	"github.com/gokatarajesh/movie-trivia/internal/question"
	"github.com/gokatarajesh/movie-trivia/internal/server"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	prewarm   *challenge.PrewarmWorker
	bgCancels []context.CancelFunc
}

// New bootstraps logger, Postgres, Redis, the movie provider and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Msg("starting application bootstrap")

	granularity, err := challenge.ParseGranularity(cfg.Challenge.Granularity)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Challenge.Location()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	tmdbClient := tmdb.NewClient(cfg.TMDB.APIKey, nil, tmdb.Options{
		BaseURL:           cfg.TMDB.BaseURL,
		Language:          cfg.TMDB.Language,
		Timeout:           cfg.TMDB.Timeout,
		PopularPages:      cfg.TMDB.PopularPages,
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
		Burst:             cfg.TMDB.Burst,
		BreakerTimeout:    cfg.TMDB.BreakerTimeout,
	}, logger)
	provider := movie.NewCachedProvider(tmdbClient, movie.NewCache(redisClient, cfg.TMDB.FactsCacheTTL), logger)

	challengeRepo := repository.NewChallengeRepository(pool)
	challengeSvc := challenge.NewService(
		challengeRepo,
		provider,
		question.NewSynthesizer(question.Options{}, logger),
		question.NewSelector(0),
		challenge.NewRedisLocker(redisClient, logger),
		challenge.ServiceOptions{
			Granularity:   granularity,
			Location:      loc,
			PosterBaseURL: cfg.TMDB.ImageBaseURL,
			LockTTL:       cfg.Challenge.LockTTL,
			LockWait:      cfg.Challenge.LockWait,
		},
		logger,
	)
	challengeHandler := challenge.NewHTTPHandler(challengeSvc, logger)

	var prewarm *challenge.PrewarmWorker
	if interval := cfg.Challenge.PrewarmInterval; interval > 0 {
		prewarm = challenge.NewPrewarmWorker(challengeSvc, interval, cfg.Challenge.PrewarmTimeout, logger)
	}

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, challengeHandler)

	return &Application{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		redis:     redisClient,
		http:      apiServer,
		prewarm:   prewarm,
		bgCancels: make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

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

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.prewarm != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.prewarm.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("challenge prewarm worker stopped")
			}
		}()
	}
}
