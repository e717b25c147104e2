package chart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHoverPositionsOverlay(t *testing.T) {
	r := NewRenderer(testCanvas, DefaultOptions())
	c, err := r.Render(sampleSeries())
	require.NoError(t, err)
	defer c.Destroy()

	n := len(c.labels)
	x := c.layout.xAt(2, n) + 3
	yMax := c.layout.yAt(12)

	tip, err := c.Hover(x, yMax+1)
	require.NoError(t, err)
	require.True(t, tip.Visible)
	require.Equal(t, 1.0, tip.Opacity)
	require.Equal(t, 2, tip.Index)
	require.Equal(t, []string{"Mar 03"}, tip.Title)
	require.Len(t, tip.Rows, 2)
	require.Equal(t, "Max Temperature (°C): 12", tip.Rows[0].Text)
	require.Equal(t, "Min Temperature (°C): 3", tip.Rows[1].Text)
	require.Equal(t, "#ef4444", tip.Rows[0].BorderColor)

	// Caret snaps to the max point, the one nearest the cursor.
	require.InDelta(t, c.layout.xAt(2, n), tip.CaretX, 1e-9)
	require.InDelta(t, yMax, tip.CaretY, 1e-9)
	require.InDelta(t, testCanvas.OffsetLeft+tip.CaretX, tip.Left, 1e-9)
	require.InDelta(t, testCanvas.OffsetTop+tip.CaretY+caretGap, tip.Top, 1e-9)
	require.Equal(t, 8, tip.Padding)

	// Near the min line the caret follows it instead.
	yMin := c.layout.yAt(3)
	tip, err = c.Hover(x, yMin)
	require.NoError(t, err)
	require.InDelta(t, yMin, tip.CaretY, 1e-9)
}

func TestHoverHidesOutsidePlot(t *testing.T) {
	r := NewRenderer(testCanvas, DefaultOptions())
	c, err := r.Render(sampleSeries())
	require.NoError(t, err)
	defer c.Destroy()

	_, err = c.Hover(c.layout.xAt(0, len(c.labels)), c.layout.top+1)
	require.NoError(t, err)

	tip, err := c.Hover(-5, -5)
	require.NoError(t, err)
	require.False(t, tip.Visible)
	require.Zero(t, tip.Opacity)

	cur, ok := c.Tooltip()
	require.True(t, ok)
	require.False(t, cur.Visible)
}

func TestHoverSkipsMissingValues(t *testing.T) {
	s := sampleSeries()
	s.Series[0].Values[1] = nil
	s.Series[1].Values[1] = nil

	r := NewRenderer(testCanvas, DefaultOptions())
	c, err := r.Render(s)
	require.NoError(t, err)
	defer c.Destroy()

	tip, err := c.Hover(c.layout.xAt(1, len(c.labels)), c.layout.top+10)
	require.NoError(t, err)
	require.False(t, tip.Visible)
}

func TestDestroyRemovesTooltip(t *testing.T) {
	r := NewRenderer(testCanvas, DefaultOptions())
	c, err := r.Render(sampleSeries())
	require.NoError(t, err)

	_, err = c.Hover(c.layout.xAt(1, len(c.labels)), c.layout.top+5)
	require.NoError(t, err)
	_, ok := c.Tooltip()
	require.True(t, ok)

	c.Destroy()
	_, ok = c.Tooltip()
	require.False(t, ok)

	_, err = c.Hover(100, 100)
	require.ErrorIs(t, err, ErrChartDestroyed)
}

func TestLeaveHidesOverlay(t *testing.T) {
	r := NewRenderer(testCanvas, DefaultOptions())
	c, err := r.Render(sampleSeries())
	require.NoError(t, err)
	defer c.Destroy()

	tip, err := c.Hover(c.layout.xAt(0, len(c.labels)), c.layout.top+5)
	require.NoError(t, err)
	require.True(t, tip.Visible)

	c.Leave()
	tip, ok := c.Tooltip()
	require.True(t, ok)
	require.False(t, tip.Visible)
	require.Zero(t, tip.Opacity)
	require.Equal(t, 8, tip.Padding)

	c.Destroy()
	c.Leave()
	_, ok = c.Tooltip()
	require.False(t, ok)
}
