package chart

import (
	"math"
	"strconv"
)

// caretGap is the vertical distance between the hovered point and the overlay.
const caretGap = 10

// Tooltip is the positioned overlay for the hovered index.
type Tooltip struct {
	Visible bool         `json:"visible"`
	Opacity float64      `json:"opacity"`
	Index   int          `json:"index"`
	Title   []string     `json:"title,omitempty"`
	Rows    []TooltipRow `json:"rows,omitempty"`
	CaretX  float64      `json:"caretX"`
	CaretY  float64      `json:"caretY"`
	Left    float64      `json:"left"`
	Top     float64      `json:"top"`
	Padding int          `json:"padding"`
}

// TooltipRow is one "<series>: <value>" line with its colour swatch.
type TooltipRow struct {
	Text            string `json:"text"`
	BorderColor     string `json:"borderColor"`
	BackgroundColor string `json:"backgroundColor"`
}

type layout struct {
	left, top, right, bottom float64
	yMin, yMax               float64
}

func (l layout) contains(x, y float64) bool {
	return x >= l.left && x <= l.right && y >= l.top && y <= l.bottom
}

func (l layout) xAt(i, n int) float64 {
	if n <= 1 {
		return l.left
	}
	return l.left + (l.right-l.left)*float64(i)/float64(n-1)
}

func (l layout) yAt(v float64) float64 {
	return l.bottom - (v-l.yMin)/(l.yMax-l.yMin)*(l.bottom-l.top)
}

func (l layout) indexAt(x float64, n int) int {
	if n <= 1 {
		return 0
	}
	i := int(math.Round((x - l.left) / (l.right - l.left) * float64(n-1)))
	return max(0, min(n-1, i))
}

// Hover updates the overlay for a cursor at canvas coordinates (x, y).
// All series are matched by index; the caret sits on the matched point
// closest to the cursor. Outside the plot area the overlay is hidden.
func (c *Chart) Hover(x, y float64) (Tooltip, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return Tooltip{}, ErrChartDestroyed
	}

	n := len(c.labels)
	if n == 0 || !c.layout.contains(x, y) {
		return c.hide(), nil
	}

	i := c.layout.indexAt(x, n)
	caretX := c.layout.xAt(i, n)

	var (
		rows   []TooltipRow
		caretY float64
		best   = math.Inf(1)
	)
	for _, s := range c.series {
		if i >= len(s.Values) || s.Values[i] == nil {
			continue
		}
		v := *s.Values[i]
		rows = append(rows, TooltipRow{
			Text:            s.Name + ": " + strconv.FormatFloat(v, 'f', -1, 64),
			BorderColor:     s.Style.BorderColor,
			BackgroundColor: s.Style.BackgroundColor,
		})
		py := c.layout.yAt(v)
		if d := math.Abs(py - y); d < best {
			best = d
			caretY = py
		}
	}
	if len(rows) == 0 {
		return c.hide(), nil
	}

	t := Tooltip{
		Visible: true,
		Opacity: 1,
		Index:   i,
		Title:   []string{c.labels[i]},
		Rows:    rows,
		CaretX:  caretX,
		CaretY:  caretY,
		Left:    c.offsetLeft + caretX,
		Top:     c.offsetTop + caretY + caretGap,
		Padding: c.padding,
	}
	c.tooltip = &t
	return t, nil
}

// Leave hides the overlay, as when the cursor exits the canvas.
func (c *Chart) Leave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.destroyed {
		c.hide()
	}
}

// Tooltip returns the current overlay, if one has been created.
func (c *Chart) Tooltip() (Tooltip, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tooltip == nil {
		return Tooltip{}, false
	}
	return *c.tooltip, true
}

// hide keeps the overlay element but makes it transparent. Caller holds mu.
func (c *Chart) hide() Tooltip {
	if c.tooltip == nil {
		c.tooltip = &Tooltip{Padding: c.padding}
	}
	c.tooltip.Visible = false
	c.tooltip.Opacity = 0
	return *c.tooltip
}
