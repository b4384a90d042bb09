package traffic

import (
	"fmt"
	"math"
	"sort"
)

// Scale maps a traffic-impact ratio to a display colour.
type Scale interface {
	// ColorAt returns the "#RRGGBB" colour for ratio.
	ColorAt(ratio float64) string

	// NoDataColor is used when no ratio can be computed.
	NoDataColor() string

	// Legend describes the scale for rendering a map key.
	Legend() []LegendEntry
}

// ColorStop anchors a colour at a ratio.
type ColorStop struct {
	Ratio float64 `json:"ratio"`
	Color RGB     `json:"color"`
}

// LegendEntry is one row of the map key.
type LegendEntry struct {
	Ratio float64 `json:"ratio"`
	Color string  `json:"color"`
	Level Level   `json:"level"`
}

// Gradient is a piecewise-linear colour scale over ascending stops.
type Gradient struct {
	stops  []ColorStop
	noData RGB
}

var (
	defaultStops = []ColorStop{
		{Ratio: 1.00, Color: MustParseHex("#2ECC71")},
		{Ratio: 1.25, Color: MustParseHex("#F1C40F")},
		{Ratio: 1.50, Color: MustParseHex("#E67E22")},
		{Ratio: 2.00, Color: MustParseHex("#E74C3C")},
	}
	defaultNoData = MustParseHex("#9E9E9E")
)

// DefaultGradient returns the green → yellow → orange → red scale.
func DefaultGradient() *Gradient {
	g, _ := NewGradient(defaultStops, defaultNoData)
	return g
}

// NewGradient validates and copies the stops. At least two stops with strictly
// increasing, finite ratios are required.
func NewGradient(stops []ColorStop, noData RGB) (*Gradient, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("gradient needs at least 2 stops, got %d", len(stops))
	}
	sorted := make([]ColorStop, len(stops))
	copy(sorted, stops)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Ratio < sorted[j].Ratio })

	for i, s := range sorted {
		if math.IsNaN(s.Ratio) || math.IsInf(s.Ratio, 0) {
			return nil, fmt.Errorf("gradient stop %d has non-finite ratio", i)
		}
		if i > 0 && s.Ratio == sorted[i-1].Ratio {
			return nil, fmt.Errorf("duplicate gradient stop at ratio %g", s.Ratio)
		}
	}
	return &Gradient{stops: sorted, noData: noData}, nil
}

// Stops returns a copy of the gradient stops.
func (g *Gradient) Stops() []ColorStop {
	out := make([]ColorStop, len(g.stops))
	copy(out, g.stops)
	return out
}

// RGBAt interpolates the colour for ratio. Values outside the stop range clamp to the
// end colours; NaN and ±Inf yield the no-data colour.
func (g *Gradient) RGBAt(ratio float64) RGB {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return g.noData
	}
	first, last := g.stops[0], g.stops[len(g.stops)-1]
	if ratio <= first.Ratio {
		return first.Color
	}
	if ratio >= last.Ratio {
		return last.Color
	}

	// First stop strictly above ratio; its predecessor is at or below.
	i := sort.Search(len(g.stops), func(i int) bool { return g.stops[i].Ratio > ratio })
	lo, hi := g.stops[i-1], g.stops[i]
	t := (ratio - lo.Ratio) / (hi.Ratio - lo.Ratio)
	return Mix(lo.Color, hi.Color, t)
}

// ColorAt implements Scale.
func (g *Gradient) ColorAt(ratio float64) string {
	return g.RGBAt(ratio).Hex()
}

// NoDataColor implements Scale.
func (g *Gradient) NoDataColor() string {
	return g.noData.Hex()
}

// Legend implements Scale.
func (g *Gradient) Legend() []LegendEntry {
	entries := make([]LegendEntry, len(g.stops))
	for i, s := range g.stops {
		entries[i] = LegendEntry{Ratio: s.Ratio, Color: s.Color.Hex(), Level: LevelFor(s.Ratio)}
	}
	return entries
}
