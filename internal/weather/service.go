package weather

import (
	"context"
	"log/slog"
)

// HistoryResult bundles everything a caller needs to show one window.
type HistoryResult struct {
	Location Location        `json:"location"`
	Days     RangeDays       `json:"days"`
	Response WeatherResponse `json:"response"`
	Chart    ChartSeries     `json:"chart"`
	Summary  Summary         `json:"summary"`
}

// Service fetches history and shapes it for presentation.
type Service struct {
	fetcher HistoryFetcher
	logger  *slog.Logger
}

// NewService creates a new Service.
func NewService(fetcher HistoryFetcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher: fetcher,
		logger:  logger,
	}
}

// History fetches days of history for loc and transforms it.
func (s *Service) History(ctx context.Context, loc Location, days RangeDays) (HistoryResult, error) {
	if days <= 0 {
		return HistoryResult{}, ErrInvalidRange
	}

	s.logger.Debug("history requested", "location", loc.Name, "days", int(days))

	resp, err := s.fetcher.FetchHistory(ctx, loc.Latitude, loc.Longitude, int(days))
	if err != nil {
		s.logger.Warn("history fetch failed", "location", loc.Name, "days", int(days), "err", err)
		return HistoryResult{}, err
	}
	if err := resp.Validate(); err != nil {
		s.logger.Warn("history response malformed", "location", loc.Name, "err", err)
		return HistoryResult{}, &NetworkError{Message: MsgBadResponse, Err: err}
	}

	return HistoryResult{
		Location: loc,
		Days:     days,
		Response: resp,
		Chart:    ToChartSeries(resp),
		Summary:  Summarize(resp),
	}, nil
}
