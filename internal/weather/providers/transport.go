package providers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestedWithHeader marks outbound calls as coming from this service.
const RequestedWithHeader = "weather-history"

// LoggingTransport logs every outbound request and its terminal response
// or error. It never changes the outcome of a call.
type LoggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

// NewLoggingTransport wraps next. A nil next uses http.DefaultTransport.
func NewLoggingTransport(next http.RoundTripper, logger *slog.Logger) *LoggingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingTransport{next: next, logger: logger}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := ulid.Make().String()
	started := time.Now()

	out := req.Clone(req.Context())
	out.Header.Set("X-Requested-With", RequestedWithHeader)
	out.Header.Set("X-Request-Id", id)

	t.logger.Info("weather api request",
		"request_id", id,
		"method", out.Method,
		"url", out.URL.String(),
		"timestamp", started.UTC().Format(time.RFC3339Nano))

	resp, err := t.next.RoundTrip(out)
	if err != nil {
		t.logger.Error("weather api error",
			"request_id", id,
			"status", 0,
			"url", out.URL.String(),
			"err", err,
			"elapsed", time.Since(started),
			"timestamp", time.Now().UTC().Format(time.RFC3339Nano))
		return nil, err
	}

	level := slog.LevelInfo
	msg := "weather api response"
	if resp.StatusCode >= 400 {
		level = slog.LevelError
		msg = "weather api error"
	}
	t.logger.Log(req.Context(), level, msg,
		"request_id", id,
		"status", resp.StatusCode,
		"status_text", http.StatusText(resp.StatusCode),
		"url", out.URL.String(),
		"elapsed", time.Since(started),
		"timestamp", time.Now().UTC().Format(time.RFC3339Nano))

	return resp, nil
}
