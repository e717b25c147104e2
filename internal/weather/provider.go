package weather

import "context"

// HistoryFetcher abstracts a source of daily temperature history
// (e.g. the Open-Meteo archive).
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, latitude, longitude float64, days int) (WeatherResponse, error)
}
