package weather

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidRange is returned when a history window is not a positive day count.
	ErrInvalidRange = errors.New("days must be a positive integer")
	// ErrMismatchedSeries is returned when daily arrays differ in length.
	ErrMismatchedSeries = errors.New("daily series lengths differ")
)

// User-facing messages.
const (
	MsgNoConnectivity = "Unable to connect to weather service. Please check your internet connection."
	MsgTimeout        = "Weather service did not respond in time. Please try again."
	MsgBadResponse    = "Error: unreadable response from weather service."
	MsgInvalidCoords  = "Invalid location coordinates provided."
	MsgRateLimited    = "Too many requests. Please try again later."
	MsgUnavailable    = "Weather service is temporarily unavailable."
	MsgGeneric        = "An error occurred while fetching weather data."
)

// NetworkError is a failure that never produced an HTTP status: no
// connectivity, a timeout or an unreadable body.
type NetworkError struct {
	Timeout bool
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Status is always 0; there was no HTTP response.
func (e *NetworkError) Status() int {
	return 0
}

// RequestError is a non-2xx response from the upstream service.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Status returns the upstream HTTP status.
func (e *RequestError) Status() int {
	return e.StatusCode
}

// NewRequestError builds a RequestError with the message for status.
func NewRequestError(status int) *RequestError {
	return &RequestError{StatusCode: status, Message: MessageForStatus(status)}
}

// RenderError is returned when a chart cannot be drawn.
type RenderError struct {
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	if e.Err != nil {
		return "render chart: " + e.Reason + ": " + e.Err.Error()
	}
	return "render chart: " + e.Reason
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// MessageForStatus maps an HTTP status to the message shown to users.
// Status 0 means the request never got a response.
func MessageForStatus(status int) string {
	switch status {
	case 0:
		return MsgNoConnectivity
	case http.StatusBadRequest:
		return MsgInvalidCoords
	case http.StatusTooManyRequests:
		return MsgRateLimited
	case http.StatusInternalServerError:
		return MsgUnavailable
	default:
		return fmt.Sprintf("Server error: %d - %s", status, http.StatusText(status))
	}
}

// UserMessage converts any fetch error into a single human-readable string.
func UserMessage(err error) string {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Message
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	if errors.Is(err, ErrInvalidRange) {
		return "Error: " + ErrInvalidRange.Error() + "."
	}
	return MsgGeneric
}
