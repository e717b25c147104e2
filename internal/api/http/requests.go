package httpapi

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-history/internal/weather"
)

// historyQuery holds query parameters for the stateless history endpoints.
type historyQuery struct {
	Location weather.Location
	Lat      float64           `validate:"gte=-90,lte=90"`
	Lon      float64           `validate:"gte=-180,lte=180"`
	Days     weather.RangeDays `validate:"oneof=7 14 30 60 90"`
}

// bind reads either a catalog location name or a coordinate pair, plus days.
func (h *historyQuery) bind(c *fiber.Ctx, defaultDays weather.RangeDays) error {
	h.Days = defaultDays
	if s := c.Query("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("days must be an integer")
		}
		h.Days = weather.RangeDays(n)
	}

	if name := c.Query("location"); name != "" {
		loc, ok := weather.LookupLocation(name)
		if !ok {
			return errors.New("unknown location")
		}
		h.Location = loc
		h.Lat, h.Lon = loc.Latitude, loc.Longitude
		return nil
	}

	latStr, lonStr := c.Query("latitude"), c.Query("longitude")
	if latStr == "" || lonStr == "" {
		return errors.New("location or latitude and longitude query parameters are required")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return errors.New("latitude must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return errors.New("longitude must be a number")
	}

	h.Lat, h.Lon = lat, lon
	h.Location = weather.Location{
		Latitude:  lat,
		Longitude: lon,
		Name:      strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64),
	}
	return nil
}

// selectionRequest is the body of dashboard create and selection calls.
type selectionRequest struct {
	Location string `json:"location"`
	Days     int    `json:"days" validate:"omitempty,oneof=7 14 30 60 90"`
}
