// Package chart draws temperature series and models the hover tooltip.
package chart

// Options are the display options shared by every renderer. They are also
// served to browser clients so a canvas chart looks the same as the PNG.
type Options struct {
	Responsive          bool               `json:"responsive"`
	MaintainAspectRatio bool               `json:"maintainAspectRatio"`
	Interaction         InteractionOptions `json:"interaction"`
	Legend              LegendOptions      `json:"legend"`
	Tooltip             TooltipOptions     `json:"tooltip"`
	Scales              ScaleOptions       `json:"scales"`
	Point               PointOptions       `json:"point"`
	LineWidth           float64            `json:"lineWidth"`
}

type InteractionOptions struct {
	Intersect bool   `json:"intersect"`
	Mode      string `json:"mode"`
}

type LegendOptions struct {
	Display bool `json:"display"`
}

// TooltipOptions: Enabled is false because the overlay is positioned
// externally from Chart.Hover.
type TooltipOptions struct {
	Enabled       bool   `json:"enabled"`
	External      bool   `json:"external"`
	Position      string `json:"position"`
	Padding       int    `json:"padding"`
	BodyFontSize  int    `json:"bodyFontSize"`
	TitleFontSize int    `json:"titleFontSize"`
}

type ScaleOptions struct {
	X AxisOptions `json:"x"`
	Y AxisOptions `json:"y"`
}

type AxisOptions struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	TitleColor string `json:"titleColor"`
	GridColor  string `json:"gridColor"`
}

type PointOptions struct {
	Radius      float64 `json:"radius"`
	HoverRadius float64 `json:"hoverRadius"`
}

// DefaultOptions returns the dashboard's fixed display options.
func DefaultOptions() Options {
	return Options{
		Responsive:          true,
		MaintainAspectRatio: false,
		Interaction:         InteractionOptions{Intersect: false, Mode: "index"},
		Legend:              LegendOptions{Display: false},
		Tooltip: TooltipOptions{
			Enabled:       false,
			External:      true,
			Position:      "nearest",
			Padding:       8,
			BodyFontSize:  12,
			TitleFontSize: 13,
		},
		Scales: ScaleOptions{
			X: AxisOptions{Type: "category", Title: "Date", TitleColor: "#6b7280", GridColor: "rgba(0, 0, 0, 0.1)"},
			Y: AxisOptions{Type: "linear", Title: "Temperature", TitleColor: "#6b7280", GridColor: "rgba(0, 0, 0, 0.1)"},
		},
		Point:     PointOptions{Radius: 3, HoverRadius: 5},
		LineWidth: 2,
	}
}
