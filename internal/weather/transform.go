package weather

import (
	"fmt"
	"time"
)

// ChartSeries is the chart-ready view of a WeatherResponse.
type ChartSeries struct {
	Labels []string `json:"labels"`
	Series []Series `json:"datasets"`
}

// Series is one plotted line.
type Series struct {
	Name   string      `json:"label"`
	Values []*float64  `json:"data"`
	Style  SeriesStyle `json:"style"`
}

// SeriesStyle is the fixed per-series styling.
type SeriesStyle struct {
	BorderColor     string  `json:"borderColor"`
	BackgroundColor string  `json:"backgroundColor"`
	Tension         float64 `json:"tension"`
}

var (
	maxStyle = SeriesStyle{BorderColor: "#ef4444", BackgroundColor: "rgba(239, 68, 68, 0.1)", Tension: 0.4}
	minStyle = SeriesStyle{BorderColor: "#3b82f6", BackgroundColor: "rgba(59, 130, 246, 0.1)", Tension: 0.4}
)

const (
	dateLayout  = "2006-01-02"
	labelLayout = "Jan 02"
)

// ToChartSeries maps a response to labels plus max/min series.
// Empty input yields an empty chart.
func ToChartSeries(resp WeatherResponse) ChartSeries {
	labels := make([]string, len(resp.Daily.Dates))
	for i, d := range resp.Daily.Dates {
		labels[i] = FormatLabel(d)
	}

	return ChartSeries{
		Labels: labels,
		Series: []Series{
			{
				Name:   fmt.Sprintf("Max Temperature (%s)", resp.DailyUnits.MaxTemp),
				Values: cloneValues(resp.Daily.MaxTemps),
				Style:  maxStyle,
			},
			{
				Name:   fmt.Sprintf("Min Temperature (%s)", resp.DailyUnits.MinTemp),
				Values: cloneValues(resp.Daily.MinTemps),
				Style:  minStyle,
			},
		},
	}
}

// FormatLabel turns 2024-01-05 into "Jan 05". Anything else is returned as is.
func FormatLabel(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(labelLayout)
}

func cloneValues(in []*float64) []*float64 {
	out := make([]*float64, len(in))
	for i, v := range in {
		if v != nil {
			c := *v
			out[i] = &c
		}
	}
	return out
}
