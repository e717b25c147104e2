// Package dashboard owns the per-dashboard fetch lifecycle: selection,
// loading, error state and the single live chart.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/i474232898/weather-history/internal/chart"
	"github.com/i474232898/weather-history/internal/weather"
)

var (
	// ErrClosed is returned by operations on a torn-down dashboard.
	ErrClosed = errors.New("dashboard closed")
	// ErrNoChart is returned when no chart is currently drawn.
	ErrNoChart = errors.New("no chart drawn")
)

// State is the fetch lifecycle state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Renderer draws chart series. Returned charts are owned by the caller.
type Renderer interface {
	Render(series weather.ChartSeries) (*chart.Chart, error)
}

// Config selects the catalog and initial selection of a dashboard.
type Config struct {
	Locations       []weather.Location
	Ranges          []weather.RangeDays
	DefaultLocation weather.Location
	DefaultDays     weather.RangeDays
}

// Snapshot is a read-only view of a dashboard.
type Snapshot struct {
	State    State                `json:"state"`
	Loading  bool                 `json:"isLoading"`
	Error    string               `json:"error,omitempty"`
	Location weather.Location     `json:"location"`
	Days     weather.RangeDays    `json:"days"`
	Series   *weather.ChartSeries `json:"series,omitempty"`
	HasChart bool                 `json:"hasChart"`
}

// Controller drives one dashboard. Every selection change starts a new
// fetch task and cancels the previous one; only the newest task's result
// is ever applied, and nothing is applied after Close.
type Controller struct {
	fetcher   weather.HistoryFetcher
	renderer  Renderer
	logger    *slog.Logger
	locations *Selector[weather.Location]
	ranges    *Selector[weather.RangeDays]

	mu     sync.Mutex
	state  State
	errMsg string
	series *weather.ChartSeries
	chart  *chart.Chart
	cancel context.CancelFunc
	seq    uint64
	closed bool

	tasks sync.WaitGroup
}

// New builds an idle controller. renderer may be nil for headless use.
func New(fetcher weather.HistoryFetcher, renderer Renderer, cfg Config, logger *slog.Logger) (*Controller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Locations) == 0 {
		cfg.Locations = weather.Locations
	}
	if len(cfg.Ranges) == 0 {
		cfg.Ranges = weather.Ranges
	}

	locations := NewSelector(cfg.Locations, func(a, b weather.Location) bool { return a == b })
	ranges := NewSelector(cfg.Ranges, func(a, b weather.RangeDays) bool { return a == b })

	if cfg.DefaultLocation != (weather.Location{}) {
		if err := locations.Select(cfg.DefaultLocation); err != nil {
			return nil, fmt.Errorf("default location %q: %w", cfg.DefaultLocation.Name, err)
		}
	}
	if cfg.DefaultDays != 0 {
		if err := ranges.Select(cfg.DefaultDays); err != nil {
			return nil, fmt.Errorf("default range %d: %w", cfg.DefaultDays, err)
		}
	}

	return &Controller{
		fetcher:   fetcher,
		renderer:  renderer,
		logger:    logger,
		locations: locations,
		ranges:    ranges,
	}, nil
}

// Activate starts the first fetch. Calling it again is a no-op.
func (c *Controller) Activate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.state == StateIdle {
		c.loadLocked()
	}
	return nil
}

// SelectLocation switches to the catalog location called name and reloads.
func (c *Controller) SelectLocation(name string) error {
	return c.Update(name, 0)
}

// SelectRange switches the history window and reloads.
func (c *Controller) SelectRange(days weather.RangeDays) error {
	return c.Update("", days)
}

// Update applies a location and/or range change as one selection event.
// Empty name or zero days leave that part unchanged. A rejected update
// changes nothing.
func (c *Controller) Update(name string, days weather.RangeDays) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	loc, _ := c.locations.Selected()
	if name != "" {
		found, err := c.locations.Find(func(l weather.Location) bool { return l.Name == name })
		if err != nil {
			return fmt.Errorf("location %q: %w", name, err)
		}
		loc = found
	}
	rng, _ := c.ranges.Selected()
	if days != 0 {
		found, err := c.ranges.Find(func(r weather.RangeDays) bool { return r == days })
		if err != nil {
			return fmt.Errorf("range %d: %w", days, err)
		}
		rng = found
	}

	// Both values come from the option lists, so selecting them cannot fail.
	_ = c.locations.Select(loc)
	_ = c.ranges.Select(rng)

	c.loadLocked()
	return nil
}

// Retry repeats the fetch for the current selection.
func (c *Controller) Retry() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.loadLocked()
	return nil
}

// Close cancels any in-flight fetch and releases the chart. Results that
// arrive afterwards are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.destroyChartLocked()
	c.logger.Debug("dashboard closed", "seq", c.seq)
}

// Wait blocks until every fetch task started so far has returned.
func (c *Controller) Wait() {
	c.tasks.Wait()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	loc, _ := c.locations.Selected()
	days, _ := c.ranges.Selected()
	return Snapshot{
		State:    c.state,
		Loading:  c.state == StateLoading,
		Error:    c.errMsg,
		Location: loc,
		Days:     days,
		Series:   c.series,
		HasChart: c.chart != nil,
	}
}

// Options returns the catalog offered by this dashboard.
func (c *Controller) Options() ([]weather.Location, []weather.RangeDays) {
	return c.locations.Options(), c.ranges.Options()
}

// ChartPNG returns the current chart image.
func (c *Controller) ChartPNG() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chart == nil {
		return nil, ErrNoChart
	}
	return c.chart.PNG()
}

// Hover forwards a cursor position to the current chart's tooltip.
func (c *Controller) Hover(x, y float64) (chart.Tooltip, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chart == nil {
		return chart.Tooltip{}, ErrNoChart
	}
	return c.chart.Hover(x, y)
}

// Leave hides the current chart's tooltip, as when the cursor exits it.
func (c *Controller) Leave() (chart.Tooltip, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chart == nil {
		return chart.Tooltip{}, ErrNoChart
	}
	c.chart.Leave()
	tip, _ := c.chart.Tooltip()
	return tip, nil
}

// loadLocked supersedes the current task with a fetch for the current
// selection. Caller holds mu.
func (c *Controller) loadLocked() {
	if c.cancel != nil {
		c.cancel()
	}

	c.seq++
	seq := c.seq
	loc, _ := c.locations.Selected()
	days, _ := c.ranges.Selected()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = StateLoading
	c.errMsg = ""

	c.logger.Debug("dashboard loading", "seq", seq, "location", loc.Name, "days", int(days))

	c.tasks.Add(1)
	go c.run(ctx, seq, loc, days)
}

func (c *Controller) run(ctx context.Context, seq uint64, loc weather.Location, days weather.RangeDays) {
	defer c.tasks.Done()

	resp, err := c.fetcher.FetchHistory(ctx, loc.Latitude, loc.Longitude, int(days))
	if err == nil {
		if verr := resp.Validate(); verr != nil {
			err = &weather.NetworkError{Message: weather.MsgBadResponse, Err: verr}
		}
	}
	c.apply(seq, resp, err)
}

func (c *Controller) apply(seq uint64, resp weather.WeatherResponse, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || seq != c.seq {
		c.logger.Debug("discarding stale result", "seq", seq, "current", c.seq, "closed", c.closed)
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if err != nil {
		c.state = StateFailed
		c.errMsg = weather.UserMessage(err)
		c.series = nil
		c.destroyChartLocked()
		c.logger.Warn("dashboard fetch failed", "seq", seq, "err", err)
		return
	}

	series := weather.ToChartSeries(resp)
	c.series = &series
	c.state = StateLoaded
	c.drawLocked()
}

// drawLocked replaces the current chart. A chart that cannot be drawn is
// logged and the dashboard stays loaded without one.
func (c *Controller) drawLocked() {
	c.destroyChartLocked()
	if c.renderer == nil || c.series == nil {
		return
	}

	ch, err := c.renderer.Render(*c.series)
	if err != nil {
		c.logger.Warn("chart not drawn", "err", err)
		return
	}
	c.chart = ch
}

func (c *Controller) destroyChartLocked() {
	if c.chart != nil {
		c.chart.Destroy()
		c.chart = nil
	}
}
