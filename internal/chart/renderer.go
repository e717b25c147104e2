package chart

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/i474232898/weather-history/internal/weather"
)

var (
	ErrNoCanvas       = errors.New("canvas unavailable")
	ErrNothingToDraw  = errors.New("series contain no values")
	ErrChartDestroyed = errors.New("chart destroyed")
)

const (
	maxTicks = 12

	// Room go-chart reserves around the plot for axis ticks and names.
	axisGutterX = 40.0
	axisGutterY = 48.0
	padding     = 20
)

// Canvas is the drawing surface. A zero size means there is nothing to
// draw on. Offsets locate the canvas inside its container and only affect
// tooltip placement.
type Canvas struct {
	Width      int
	Height     int
	OffsetLeft float64
	OffsetTop  float64
}

// Renderer turns chart series into PNG charts.
type Renderer struct {
	canvas Canvas
	opts   Options
	live   atomic.Int64
}

func NewRenderer(canvas Canvas, opts Options) *Renderer {
	return &Renderer{canvas: canvas, opts: opts}
}

// Options returns the display options this renderer draws with.
func (r *Renderer) Options() Options {
	return r.opts
}

// Live reports how many charts have been rendered and not yet destroyed.
func (r *Renderer) Live() int {
	return int(r.live.Load())
}

// Render draws series and returns a live chart. Every returned chart must
// eventually be destroyed.
func (r *Renderer) Render(series weather.ChartSeries) (*Chart, error) {
	if r.canvas.Width <= 0 || r.canvas.Height <= 0 {
		return nil, &weather.RenderError{Reason: "no drawing surface", Err: ErrNoCanvas}
	}

	n := len(series.Labels)
	lo, hi, ok := valueBounds(series)
	if n == 0 || !ok {
		return nil, &weather.RenderError{Reason: "empty chart", Err: ErrNothingToDraw}
	}
	lo, hi = niceBounds(lo, hi)

	var lines []gochart.Series
	for _, s := range series.Series {
		lines = append(lines, segments(s, r.opts)...)
	}

	xMax := float64(n - 1)
	if xMax < 1 {
		xMax = 1
	}

	c := gochart.Chart{
		Width:  r.canvas.Width,
		Height: r.canvas.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: padding, Left: padding, Right: padding, Bottom: padding},
		},
		XAxis: gochart.XAxis{
			Name:  r.opts.Scales.X.Title,
			Range: &gochart.ContinuousRange{Min: 0, Max: xMax},
			Ticks: ticks(series.Labels),
		},
		YAxis: gochart.YAxis{
			Name:  r.opts.Scales.Y.Title,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: lines,
	}

	var buf bytes.Buffer
	if err := c.Render(gochart.PNG, &buf); err != nil {
		return nil, &weather.RenderError{Reason: "draw", Err: err}
	}

	r.live.Add(1)
	return &Chart{
		owner:  r,
		png:    buf.Bytes(),
		labels: append([]string(nil), series.Labels...),
		series: series.Series,
		layout: layout{
			left:   float64(padding),
			top:    float64(padding),
			right:  float64(r.canvas.Width-padding) - axisGutterY,
			bottom: float64(r.canvas.Height-padding) - axisGutterX,
			yMin:   lo,
			yMax:   hi,
		},
		offsetLeft: r.canvas.OffsetLeft,
		offsetTop:  r.canvas.OffsetTop,
		padding:    r.opts.Tooltip.Padding,
	}, nil
}

// Chart is one rendered chart plus its tooltip overlay.
type Chart struct {
	owner *Renderer

	mu         sync.Mutex
	png        []byte
	labels     []string
	series     []weather.Series
	layout     layout
	offsetLeft float64
	offsetTop  float64
	padding    int
	tooltip    *Tooltip
	destroyed  bool
}

// PNG returns the encoded image.
func (c *Chart) PNG() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return nil, ErrChartDestroyed
	}
	return c.png, nil
}

// Destroy releases the chart and removes its tooltip. Safe to call twice.
func (c *Chart) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.tooltip = nil
	c.png = nil
	c.owner.live.Add(-1)
}

func (c *Chart) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// segments splits a series at missing values so gaps are not bridged.
func segments(s weather.Series, opts Options) []gochart.Series {
	style := gochart.Style{
		StrokeColor: hexColor(s.Style.BorderColor),
		StrokeWidth: opts.LineWidth,
		DotColor:    hexColor(s.Style.BorderColor),
		DotWidth:    opts.Point.Radius,
	}

	var (
		out    []gochart.Series
		xs, ys []float64
	)
	flush := func() {
		if len(xs) > 0 {
			out = append(out, gochart.ContinuousSeries{Name: s.Name, Style: style, XValues: xs, YValues: ys})
		}
		xs, ys = nil, nil
	}
	for i, v := range s.Values {
		if v == nil {
			flush()
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, *v)
	}
	flush()
	return out
}

func ticks(labels []string) []gochart.Tick {
	step := int(math.Ceil(float64(len(labels)) / maxTicks))
	if step < 1 {
		step = 1
	}
	out := make([]gochart.Tick, 0, maxTicks+1)
	for i := 0; i < len(labels); i += step {
		out = append(out, gochart.Tick{Value: float64(i), Label: labels[i]})
	}
	return out
}

func valueBounds(series weather.ChartSeries) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series.Series {
		for _, v := range s.Values {
			if v == nil {
				continue
			}
			lo = math.Min(lo, *v)
			hi = math.Max(hi, *v)
			ok = true
		}
	}
	return lo, hi, ok
}

// niceBounds widens [lo, hi] to whole degrees with at least one degree of headroom.
func niceBounds(lo, hi float64) (float64, float64) {
	return math.Floor(lo) - 1, math.Ceil(hi) + 1
}

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}
