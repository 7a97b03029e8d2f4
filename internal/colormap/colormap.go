// Package colormap resolves named color scales for heatmaps and map plots.
// Scales come from .pal files in a user directory, with a fixed set of
// built-in fallbacks drawn from gonum's palettes.
package colormap

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
)

// Default is the colormap used when none is configured.
const Default = "jet"

// ReverseSuffix selects the reversed scale, e.g. "RdBu_r".
const ReverseSuffix = "_r"

// ErrUnknown is returned for names that are neither files nor built-ins.
var ErrUnknown = errors.New("unknown colormap")

// Colormap is an ordered list of colors spanning a value range low to high.
type Colormap struct {
	Name   string
	colors []color.Color
}

// New returns a colormap over cs. At least two colors are required.
func New(name string, cs []color.Color) (Colormap, error) {
	if len(cs) < 2 {
		return Colormap{}, fmt.Errorf("colormap %s: need at least 2 colors, got %d", name, len(cs))
	}
	return Colormap{Name: name, colors: append([]color.Color(nil), cs...)}, nil
}

// Colors implements palette.Palette.
func (c Colormap) Colors() []color.Color { return c.colors }

// Len returns the number of colors.
func (c Colormap) Len() int { return len(c.colors) }

// At returns the color at fraction t of the scale, clamped to [0, 1]. NaN
// maps to a transparent color.
func (c Colormap) At(t float64) color.Color {
	if len(c.colors) == 0 || math.IsNaN(t) {
		return color.Transparent
	}
	if t <= 0 {
		return c.colors[0]
	}
	if t >= 1 {
		return c.colors[len(c.colors)-1]
	}
	pos := t * float64(len(c.colors)-1)
	i := int(pos)
	return lerp(c.colors[i], c.colors[i+1], pos-float64(i))
}

// Resample returns a colormap with n colors interpolated along this one.
func (c Colormap) Resample(n int) Colormap {
	if n < 2 || len(c.colors) == 0 {
		return c
	}
	out := make([]color.Color, n)
	for i := range out {
		out[i] = c.At(float64(i) / float64(n-1))
	}
	return Colormap{Name: c.Name, colors: out}
}

// Reverse returns the colormap with its colors in reverse order.
func (c Colormap) Reverse() Colormap {
	out := make([]color.Color, len(c.colors))
	for i, col := range c.colors {
		out[len(out)-1-i] = col
	}
	return Colormap{Name: c.Name + ReverseSuffix, colors: out}
}

// Scale returns a palette.ColorMap spanning [min, max], used for colorbars.
func (c Colormap) Scale(min, max float64) palette.ColorMap {
	if max <= min {
		max = min + 1
	}
	return &scale{cm: c, min: min, max: max, alpha: 1}
}

func lerp(a, b color.Color, f float64) color.Color {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	mix := func(x, y uint32) uint8 {
		return uint8((float64(x)*(1-f) + float64(y)*f) / 257)
	}
	return color.NRGBA{R: mix(ar, br), G: mix(ag, bg), B: mix(ab, bb), A: mix(aa, ba)}
}

// Hex renders a color as #RRGGBB.
func Hex(col color.Color) string {
	n := color.NRGBAModel.Convert(col).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

type scale struct {
	cm       Colormap
	min, max float64
	alpha    float64
}

func (s *scale) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v > s.max:
		return nil, palette.ErrOverflow
	case v < s.min:
		return nil, palette.ErrUnderflow
	}
	col := s.cm.At((v - s.min) / (s.max - s.min))
	if s.alpha >= 1 {
		return col, nil
	}
	n := color.NRGBAModel.Convert(col).(color.NRGBA)
	n.A = uint8(float64(n.A) * s.alpha)
	return n, nil
}

func (s *scale) Max() float64     { return s.max }
func (s *scale) SetMax(v float64) { s.max = v }
func (s *scale) Min() float64     { return s.min }
func (s *scale) SetMin(v float64) { s.min = v }
func (s *scale) Alpha() float64   { return s.alpha }

func (s *scale) SetAlpha(a float64) {
	if a < 0 || a > 1 {
		panic("colormap: alpha out of range")
	}
	s.alpha = a
}

func (s *scale) Palette(n int) palette.Palette { return s.cm.Resample(n) }
