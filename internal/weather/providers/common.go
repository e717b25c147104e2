package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-history/internal/weather"
)

// BreakerConfig controls when the circuit breaker trips and how long it stays open.
type BreakerConfig struct {
	// ConsecutiveFailures trips the breaker. Zero means 5.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open. Zero means 30s.
	OpenTimeout time.Duration
}

func newCircuitBreaker(name string, cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker {
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}
	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// countsAsSuccess keeps client-side mistakes and cancellations from
// tripping the breaker; only transport failures and 5xx do.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var reqErr *weather.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode < http.StatusInternalServerError
	}
	return false
}

// doRequest executes exactly one attempt through the circuit breaker and
// classifies the outcome. parent is the caller's context; req carries the
// per-call timeout context derived from it.
func doRequest(
	parent context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	req *http.Request,
) (*http.Response, error) {
	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, classifyTransportError(parent, execErr)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
			resp.Body.Close()
			return nil, weather.NewRequestError(resp.StatusCode)
		}

		return resp, nil
	})

	if err != nil {
		// If circuit is open, fail fast without touching the network.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &weather.RequestError{StatusCode: http.StatusServiceUnavailable, Message: weather.MsgUnavailable}
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

func classifyTransportError(parent context.Context, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("history request canceled: %w", parent.Err())
	}
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return &weather.NetworkError{Timeout: true, Message: weather.MsgTimeout, Err: err}
	}
	return &weather.NetworkError{Message: weather.MsgNoConnectivity, Err: err}
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
