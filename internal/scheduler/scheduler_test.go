package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-history/internal/dashboard"
	"github.com/i474232898/weather-history/internal/weather"
)

type noopFetcher struct{}

func (noopFetcher) FetchHistory(context.Context, float64, float64, int) (weather.WeatherResponse, error) {
	return weather.WeatherResponse{}, nil
}

type stubSweeper struct {
	mu      sync.Mutex
	pending []*dashboard.Controller
	sweeps  int
}

func (s *stubSweeper) Sweep() []*dashboard.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweeps++
	out := s.pending
	s.pending = nil
	return out
}

func (s *stubSweeper) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweeps
}

func TestSweepOnceClosesEvicted(t *testing.T) {
	c, err := dashboard.New(noopFetcher{}, nil, dashboard.Config{}, nil)
	require.NoError(t, err)

	sweeper := &stubSweeper{pending: []*dashboard.Controller{c}}
	s := New(sweeper, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.Equal(t, 1, s.SweepOnce())
	require.ErrorIs(t, c.Activate(), dashboard.ErrClosed)
	require.Zero(t, s.SweepOnce())
}

func TestStartRunsJob(t *testing.T) {
	sweeper := &stubSweeper{}
	s := New(sweeper, 20*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool { return sweeper.count() >= 2 }, 2*time.Second, 10*time.Millisecond)
}
