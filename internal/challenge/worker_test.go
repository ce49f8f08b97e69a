package challenge

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResolver struct {
	calls atomic.Int32
	err   error
}

func (r *countingResolver) Today(_ context.Context, req TodayRequest) (*DailyChallenge, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return &DailyChallenge{ID: "2025-06-01", Lang: req.Lang}, nil
}

func TestPrewarmWorkerRunsImmediatelyAndOnTick(t *testing.T) {
	resolver := &countingResolver{}
	w := NewPrewarmWorker(resolver, 10*time.Millisecond, time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return resolver.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestPrewarmWorkerSurvivesFailures(t *testing.T) {
	resolver := &countingResolver{err: errors.New("provider down")}
	w := NewPrewarmWorker(resolver, 10*time.Millisecond, time.Second, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := w.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, resolver.calls.Load(), int32(2))
}

func TestPrewarmWorkerWithoutService(t *testing.T) {
	w := NewPrewarmWorker(nil, 0, 0, zerolog.Nop())
	assert.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 15*time.Minute, w.interval)
}
