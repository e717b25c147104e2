package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-history/internal/weather"
)

// DefaultArchiveURL is the Open-Meteo historical weather endpoint.
const DefaultArchiveURL = "https://archive-api.open-meteo.com/v1/archive"

const (
	archiveName    = "openmeteo-archive"
	dailyVariables = "temperature_2m_max,temperature_2m_min"
	dateLayout     = "2006-01-02"
)

// ArchiveConfig configures an OpenMeteoArchive.
type ArchiveConfig struct {
	BaseURL string
	Timeout time.Duration
	// Client is wrapped with request logging. Nil uses a fresh client.
	Client  *http.Client
	Breaker BreakerConfig
	Now     func() time.Time
	Logger  *slog.Logger
}

// OpenMeteoArchive implements weather.HistoryFetcher for the Open-Meteo archive.
type OpenMeteoArchive struct {
	name    string
	baseURL string
	timeout time.Duration
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
	logger  *slog.Logger
}

var _ weather.HistoryFetcher = (*OpenMeteoArchive)(nil)

func NewOpenMeteoArchive(cfg ArchiveConfig) *OpenMeteoArchive {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultArchiveURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	var client http.Client
	if cfg.Client != nil {
		client = *cfg.Client
	}
	client.Transport = NewLoggingTransport(client.Transport, logger)

	return &OpenMeteoArchive{
		name:    archiveName,
		baseURL: baseURL,
		timeout: timeout,
		client:  &client,
		circuit: newCircuitBreaker(archiveName, cfg.Breaker, logger),
		now:     now,
		logger:  logger,
	}
}

// DateRange returns the inclusive start and end dates for a window of days
// ending on the calendar day of now.
func DateRange(now time.Time, days int) (start, end string) {
	return now.AddDate(0, 0, -days).Format(dateLayout), now.Format(dateLayout)
}

// FetchHistory requests daily max/min temperatures for the last days days.
// A single attempt is made; failures are returned as weather.NetworkError
// or weather.RequestError. Cancellation of ctx is returned as is.
func (p *OpenMeteoArchive) FetchHistory(ctx context.Context, latitude, longitude float64, days int) (weather.WeatherResponse, error) {
	if days <= 0 {
		return weather.WeatherResponse{}, weather.ErrInvalidRange
	}

	start, end := DateRange(p.now(), days)

	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	values.Set("start_date", start)
	values.Set("end_date", end)
	values.Set("daily", dailyVariables)
	values.Set("timezone", "auto")

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, u, nil)
	if err != nil {
		return weather.WeatherResponse{}, fmt.Errorf("build archive request: %w", err)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return weather.WeatherResponse{}, err
	}
	defer resp.Body.Close()

	var payload weather.WeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		if ctx.Err() != nil {
			return weather.WeatherResponse{}, fmt.Errorf("history request canceled: %w", ctx.Err())
		}
		if callCtx.Err() != nil {
			return weather.WeatherResponse{}, &weather.NetworkError{Timeout: true, Message: weather.MsgTimeout, Err: err}
		}
		return weather.WeatherResponse{}, &weather.NetworkError{Message: weather.MsgBadResponse, Err: err}
	}

	p.logger.Debug("archive history decoded",
		"provider", p.name,
		"latitude", latitude, "longitude", longitude,
		"start_date", start, "end_date", end,
		"days_returned", len(payload.Daily.Dates))

	return payload, nil
}
