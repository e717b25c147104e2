package weather

import (
	"fmt"
	"slices"
)

// Location represents a named place we can request history for.
type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Name      string  `json:"name" yaml:"name"`
}

// Locations is the fixed catalog offered to dashboards.
var Locations = []Location{
	{Latitude: 52.52, Longitude: 13.41, Name: "Berlin, DE"},
	{Latitude: 40.7128, Longitude: -74.0060, Name: "New York, NY"},
	{Latitude: 34.0522, Longitude: -118.2437, Name: "Los Angeles, CA"},
	{Latitude: 51.5074, Longitude: -0.1278, Name: "London, UK"},
	{Latitude: 48.8566, Longitude: 2.3522, Name: "Paris, France"},
	{Latitude: 35.6762, Longitude: 139.6503, Name: "Tokyo, Japan"},
	{Latitude: -33.8688, Longitude: 151.2093, Name: "Sydney, Australia"},
	{Latitude: 55.7558, Longitude: 37.6176, Name: "Moscow, Russia"},
	{Latitude: 39.9042, Longitude: 116.4074, Name: "Beijing, China"},
}

// LookupLocation finds a catalog location by its display name.
func LookupLocation(name string) (Location, bool) {
	for _, l := range Locations {
		if l.Name == name {
			return l, true
		}
	}
	return Location{}, false
}

// RangeDays is how many days of history a dashboard asks for.
type RangeDays int

// Ranges lists the supported history windows, shortest first.
var Ranges = []RangeDays{7, 14, 30, 60, 90}

// DefaultRange is selected when nothing else is configured.
const DefaultRange RangeDays = 14

// Valid reports whether r is one of the supported windows.
func (r RangeDays) Valid() bool {
	return slices.Contains(Ranges, r)
}

// WeatherResponse mirrors the archive API payload.
type WeatherResponse struct {
	Latitude             float64    `json:"latitude"`
	Longitude            float64    `json:"longitude"`
	GenerationTimeMs     float64    `json:"generationtime_ms"`
	UTCOffsetSeconds     int        `json:"utc_offset_seconds"`
	Timezone             string     `json:"timezone"`
	TimezoneAbbreviation string     `json:"timezone_abbreviation"`
	Elevation            float64    `json:"elevation"`
	DailyUnits           DailyUnits `json:"daily_units"`
	Daily                Daily      `json:"daily"`
}

// DailyUnits carries the unit labels the upstream reports per variable.
type DailyUnits struct {
	Time    string `json:"time"`
	MaxTemp string `json:"temperature_2m_max"`
	MinTemp string `json:"temperature_2m_min"`
}

// Daily holds parallel per-day arrays. A nil temperature means the
// upstream had no value for that day.
type Daily struct {
	Dates    []string   `json:"time"`
	MaxTemps []*float64 `json:"temperature_2m_max"`
	MinTemps []*float64 `json:"temperature_2m_min"`
}

// Validate checks that the daily arrays line up.
func (r WeatherResponse) Validate() error {
	n := len(r.Daily.Dates)
	if len(r.Daily.MaxTemps) != n || len(r.Daily.MinTemps) != n {
		return fmt.Errorf("%w: %d dates, %d max, %d min",
			ErrMismatchedSeries, n, len(r.Daily.MaxTemps), len(r.Daily.MinTemps))
	}
	return nil
}
