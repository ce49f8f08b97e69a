package challenge

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/movie-trivia/internal/catalog"
)

type todayResolver interface {
	Today(ctx context.Context, req TodayRequest) (*DailyChallenge, error)
}

// PrewarmWorker periodically resolves the current challenge so the first
// player of a period does not pay for the provider round trips.
type PrewarmWorker struct {
	svc      todayResolver
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger
}

func NewPrewarmWorker(svc todayResolver, interval, timeout time.Duration, logger zerolog.Logger) *PrewarmWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &PrewarmWorker{
		svc:      svc,
		interval: interval,
		timeout:  timeout,
		logger:   logger.With().Str("component", "challenge_prewarm_worker").Logger(),
	}
}

// Run blocks until context cancellation.
func (w *PrewarmWorker) Run(ctx context.Context) error {
	if w.svc == nil {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// run immediately
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *PrewarmWorker) tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	resp, err := w.svc.Today(ctx, TodayRequest{Lang: catalog.Base})
	if err != nil {
		w.logger.Warn().Err(err).Msg("prewarm failed")
		return
	}
	w.logger.Debug().
		Str("challenge_id", resp.ID).
		Int("movie_id", resp.MovieID).
		Str("type", string(resp.QuestionType)).
		Msg("challenge prewarmed")
}
