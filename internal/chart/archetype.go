// Package chart decides how a variable should be drawn and builds a
// renderer-neutral Figure for it. Figures are drawn in the terminal by the
// tui package and exported to HTML, PNG, JPEG or SVG here.
package chart

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedShape is reported for variables no chart type can draw.
var ErrUnsupportedShape = errors.New("unsupported variable shape")

// Archetype is the chart type chosen for a variable.
type Archetype int

const (
	Unsupported Archetype = iota
	TimeSeries
	Profile
	GeoMap
	Heatmap
	Animated
	Line
)

var archetypeNames = [...]string{
	Unsupported: "unsupported",
	TimeSeries:  "timeseries",
	Profile:     "profile",
	GeoMap:      "geomap",
	Heatmap:     "heatmap",
	Animated:    "animated",
	Line:        "line",
}

func (a Archetype) String() string {
	if a < 0 || int(a) >= len(archetypeNames) {
		return fmt.Sprintf("archetype(%d)", int(a))
	}
	return archetypeNames[a]
}

// Archetypes lists the drawable chart types in picker order.
func Archetypes() []Archetype {
	return []Archetype{TimeSeries, Profile, GeoMap, Heatmap, Animated, Line}
}

// ParseArchetype accepts the names returned by String, case-insensitively,
// plus "auto" and "" which map to Unsupported so callers can infer.
func ParseArchetype(s string) (Archetype, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "auto" {
		return Unsupported, nil
	}
	for i, n := range archetypeNames {
		if n == s && Archetype(i) != Unsupported {
			return Archetype(i), nil
		}
	}
	return Unsupported, fmt.Errorf("unknown chart type %q", s)
}

// IsGrid reports whether the archetype draws a 2-D colored grid.
func (a Archetype) IsGrid() bool {
	return a == GeoMap || a == Heatmap || a == Animated
}

func isVertical(dim string) bool { return dim == "depth" || dim == "pressure" }

func has(dims []string, name string) bool {
	for _, d := range dims {
		if d == name {
			return true
		}
	}
	return false
}

// Infer picks the chart type from a variable's dimension names. The first
// matching rule wins.
func Infer(dims []string) Archetype {
	switch n := len(dims); {
	case n == 1 && dims[0] == "time":
		return TimeSeries
	case n == 1 && isVertical(dims[0]):
		return Profile
	case n == 2 && has(dims, "lat") && has(dims, "lon"):
		return GeoMap
	case n == 2:
		return Heatmap
	case n >= 3:
		return Animated
	case n == 1:
		return Line
	}
	return Unsupported
}

// AnimationAxis returns the dimension stepped through by an animated chart:
// time, then depth or pressure, then the first dimension.
func AnimationAxis(dims []string) string {
	if len(dims) == 0 {
		return ""
	}
	if has(dims, "time") {
		return "time"
	}
	for _, d := range dims {
		if isVertical(d) {
			return d
		}
	}
	return dims[0]
}
