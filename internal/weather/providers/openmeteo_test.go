package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-history/internal/weather"
)

const archiveBody = `{
	"latitude": 52.52,
	"longitude": 13.419998,
	"generationtime_ms": 0.123,
	"utc_offset_seconds": 3600,
	"timezone": "Europe/Berlin",
	"timezone_abbreviation": "GMT+1",
	"elevation": 38.0,
	"daily_units": {"time": "iso8601", "temperature_2m_max": "°C", "temperature_2m_min": "°C"},
	"daily": {
		"time": ["2024-03-08", "2024-03-09", "2024-03-10"],
		"temperature_2m_max": [9.5, 11.2, null],
		"temperature_2m_min": [1.0, 2.5, null]
	}
}`

var fixedNow = time.Date(2024, time.March, 10, 15, 4, 5, 0, time.Local)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestArchive(t *testing.T, srv *httptest.Server, timeout time.Duration) *OpenMeteoArchive {
	t.Helper()
	return NewOpenMeteoArchive(ArchiveConfig{
		BaseURL: srv.URL + "/v1/archive",
		Timeout: timeout,
		Client:  srv.Client(),
		Now:     func() time.Time { return fixedNow },
		Logger:  discardLogger(),
	})
}

func TestDateRange(t *testing.T) {
	for _, days := range weather.Ranges {
		start, end := DateRange(fixedNow, int(days))
		require.Equal(t, "2024-03-10", end)

		s, err := time.Parse(dateLayout, start)
		require.NoError(t, err)
		e, err := time.Parse(dateLayout, end)
		require.NoError(t, err)
		require.Equal(t, int(days), int(e.Sub(s).Hours()/24), "days=%d", days)
	}

	start, _ := DateRange(fixedNow, 30)
	require.Equal(t, "2024-02-09", start)
}

func TestFetchHistoryQuery(t *testing.T) {
	var got url.Values
	var header http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/archive", r.URL.Path)
		got = r.URL.Query()
		header = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, archiveBody)
	}))
	defer srv.Close()

	archive := newTestArchive(t, srv, time.Second)
	for _, days := range weather.Ranges {
		resp, err := archive.FetchHistory(context.Background(), 52.52, 13.41, int(days))
		require.NoError(t, err)

		wantStart, wantEnd := DateRange(fixedNow, int(days))
		require.Equal(t, "52.52", got.Get("latitude"))
		require.Equal(t, "13.41", got.Get("longitude"))
		require.Equal(t, wantStart, got.Get("start_date"))
		require.Equal(t, wantEnd, got.Get("end_date"))
		require.Equal(t, "temperature_2m_max,temperature_2m_min", got.Get("daily"))
		require.Equal(t, "auto", got.Get("timezone"))

		require.Equal(t, "Europe/Berlin", resp.Timezone)
		require.Equal(t, "°C", resp.DailyUnits.MaxTemp)
		require.Len(t, resp.Daily.Dates, 3)
		require.NoError(t, resp.Validate())
		require.Equal(t, 11.2, *resp.Daily.MaxTemps[1])
		require.Nil(t, resp.Daily.MaxTemps[2])
	}

	require.Equal(t, RequestedWithHeader, header.Get("X-Requested-With"))
	require.NotEmpty(t, header.Get("X-Request-Id"))
}

func TestFetchHistoryStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   string
	}{
		{http.StatusBadRequest, weather.MsgInvalidCoords},
		{http.StatusTooManyRequests, weather.MsgRateLimited},
		{http.StatusInternalServerError, weather.MsgUnavailable},
		{http.StatusNotFound, "Server error: 404 - Not Found"},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":true,"reason":"nope"}`, tc.status)
			}))
			defer srv.Close()

			_, err := newTestArchive(t, srv, time.Second).FetchHistory(context.Background(), 1, 2, 7)
			var reqErr *weather.RequestError
			require.ErrorAs(t, err, &reqErr)
			require.Equal(t, tc.status, reqErr.Status())
			require.Equal(t, tc.want, weather.UserMessage(err))
		})
	}
}

func TestFetchHistoryNoConnectivity(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	archive := NewOpenMeteoArchive(ArchiveConfig{BaseURL: base, Timeout: time.Second, Logger: discardLogger()})
	_, err := archive.FetchHistory(context.Background(), 1, 2, 7)

	var netErr *weather.NetworkError
	require.ErrorAs(t, err, &netErr)
	require.False(t, netErr.Timeout)
	require.Equal(t, 0, netErr.Status())
	require.Contains(t, weather.UserMessage(err), "internet connection")
}

func TestFetchHistoryTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := newTestArchive(t, srv, 20*time.Millisecond).FetchHistory(context.Background(), 1, 2, 7)

	var netErr *weather.NetworkError
	require.ErrorAs(t, err, &netErr)
	require.True(t, netErr.Timeout)
	require.Equal(t, weather.MsgTimeout, weather.UserMessage(err))
}

func TestFetchHistoryCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, archiveBody)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestArchive(t, srv, time.Second).FetchHistory(ctx, 1, 2, 7)
	require.ErrorIs(t, err, context.Canceled)

	var netErr *weather.NetworkError
	require.False(t, errors.As(err, &netErr))
}

func TestFetchHistoryBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>")
	}))
	defer srv.Close()

	_, err := newTestArchive(t, srv, time.Second).FetchHistory(context.Background(), 1, 2, 7)
	require.Equal(t, weather.MsgBadResponse, weather.UserMessage(err))
}

func TestFetchHistoryRejectsNonPositiveDays(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	_, err := newTestArchive(t, srv, time.Second).FetchHistory(context.Background(), 1, 2, 0)
	require.ErrorIs(t, err, weather.ErrInvalidRange)
	require.Zero(t, hits.Load())
}

func TestFetchHistoryNoRetryAndBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	archive := NewOpenMeteoArchive(ArchiveConfig{
		BaseURL: srv.URL,
		Timeout: time.Second,
		Client:  srv.Client(),
		Breaker: BreakerConfig{ConsecutiveFailures: 2, OpenTimeout: time.Minute},
		Logger:  discardLogger(),
	})

	for i := 0; i < 2; i++ {
		_, err := archive.FetchHistory(context.Background(), 1, 2, 7)
		require.Error(t, err)
		require.EqualValues(t, i+1, hits.Load(), "one attempt per call")
	}

	_, err := archive.FetchHistory(context.Background(), 1, 2, 7)
	var reqErr *weather.RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, http.StatusServiceUnavailable, reqErr.StatusCode)
	require.Equal(t, weather.MsgUnavailable, reqErr.Message)
	require.EqualValues(t, 2, hits.Load(), "open breaker must not reach the server")
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	archive := NewOpenMeteoArchive(ArchiveConfig{
		BaseURL: srv.URL,
		Client:  srv.Client(),
		Breaker: BreakerConfig{ConsecutiveFailures: 1},
		Logger:  discardLogger(),
	})

	for i := 0; i < 3; i++ {
		_, err := archive.FetchHistory(context.Background(), 999, 2, 7)
		require.Equal(t, weather.MsgInvalidCoords, weather.UserMessage(err))
	}
	require.EqualValues(t, 3, hits.Load())
}

func TestFetchHistoryTimeoutCoversSlowBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"latitude": 52.52,`)
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	// No client-level timeout: the per-call deadline alone must bound the body read.
	archive := NewOpenMeteoArchive(ArchiveConfig{
		BaseURL: srv.URL + "/v1/archive",
		Timeout: 50 * time.Millisecond,
		Client:  &http.Client{},
		Now:     func() time.Time { return fixedNow },
		Logger:  discardLogger(),
	})

	began := time.Now()
	_, err := archive.FetchHistory(context.Background(), 1, 2, 7)
	require.Less(t, time.Since(began), time.Second)

	var netErr *weather.NetworkError
	require.ErrorAs(t, err, &netErr)
	require.True(t, netErr.Timeout)
}

func TestFetchHistoryLogsProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, archiveBody)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	archive := NewOpenMeteoArchive(ArchiveConfig{
		BaseURL: srv.URL + "/v1/archive",
		Timeout: time.Second,
		Client:  srv.Client(),
		Now:     func() time.Time { return fixedNow },
		Logger:  slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})

	_, err := archive.FetchHistory(context.Background(), 52.52, 13.41, 7)
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"msg":"archive history decoded"`)
	require.Contains(t, buf.String(), `"provider":"openmeteo-archive"`)
	require.Contains(t, buf.String(), `"days_returned":3`)
}
