package colormap

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/palette/moreland"
)

// Ext is the extension of colormap files.
const Ext = ".pal"

const builtinSize = 64

var builtins = map[string]func() (palette.Palette, error){
	"jet": func() (palette.Palette, error) {
		return palette.Rainbow(builtinSize, palette.Blue, palette.Red, 1, 1, 1), nil
	},
	"heat": func() (palette.Palette, error) {
		return palette.Heat(builtinSize, 1), nil
	},
	"blackbody": func() (palette.Palette, error) { return fromColorMap(moreland.BlackBody()), nil },
	"kindlmann": func() (palette.Palette, error) { return fromColorMap(moreland.Kindlmann()), nil },
	"bluered":   func() (palette.Palette, error) { return fromColorMap(moreland.SmoothBlueRed()), nil },
	"greenred":  func() (palette.Palette, error) { return fromColorMap(moreland.SmoothGreenRed()), nil },
	"RdBu":      brewerPalette("RdBu"),
	"YlGnBu":    brewerPalette("YlGnBu"),
	"Spectral":  brewerPalette("Spectral"),
	"Greys":     brewerPalette("Greys"),
}

func fromColorMap(cm palette.ColorMap) palette.Palette {
	cm.SetMin(0)
	cm.SetMax(1)
	return cm.Palette(builtinSize)
}

// brewerPalette picks the largest class count the scheme offers.
func brewerPalette(name string) func() (palette.Palette, error) {
	return func() (palette.Palette, error) {
		var last error
		for n := 12; n >= 3; n-- {
			p, err := brewer.GetPalette(brewer.TypeAny, name, n)
			if err == nil {
				return p, nil
			}
			last = err
		}
		return nil, last
	}
}

// Builtins returns the names of the fallback colormaps, sorted.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Catalog resolves colormap names against a directory of .pal files and the
// built-in fallbacks. Files shadow built-ins of the same name.
type Catalog struct {
	dir    string
	logger *zap.SugaredLogger
}

// NewCatalog returns a catalog over dir, which may not exist.
func NewCatalog(dir string, logger *zap.SugaredLogger) *Catalog {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Catalog{dir: dir, logger: logger}
}

// Names returns every resolvable name, files first then built-ins, each
// group sorted and without duplicates.
func (c *Catalog) Names() []string {
	files := c.files()
	seen := make(map[string]bool, len(files))
	names := append([]string(nil), files...)
	for _, n := range files {
		seen[n] = true
	}
	for _, n := range Builtins() {
		if !seen[n] {
			names = append(names, n)
		}
	}
	return names
}

func (c *Catalog) files() []string {
	if c.dir == "" {
		return nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warnw("listing colormaps", "dir", c.dir, "error", err)
		}
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Get resolves name. A trailing "_r" reverses the scale. An empty name gives
// the default.
func (c *Catalog) Get(name string) (Colormap, error) {
	if name == "" {
		name = Default
	}
	if base, ok := strings.CutSuffix(name, ReverseSuffix); ok && base != "" {
		cm, err := c.Get(base)
		if err != nil {
			return Colormap{}, err
		}
		return cm.Reverse(), nil
	}

	if c.dir != "" {
		path := filepath.Join(c.dir, name+Ext)
		cm, err := LoadFile(path)
		switch {
		case err == nil:
			return cm, nil
		case !errors.Is(err, fs.ErrNotExist):
			c.logger.Warnw("bad colormap file, trying built-ins", "path", path, "error", err)
		}
	}

	build, ok := builtins[name]
	if !ok {
		return Colormap{}, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	p, err := build()
	if err != nil {
		return Colormap{}, fmt.Errorf("colormap %s: %w", name, err)
	}
	return New(name, p.Colors())
}

// GetOrDefault resolves name, falling back to the default colormap. The
// returned bool is false when the fallback was used.
func (c *Catalog) GetOrDefault(name string) (Colormap, bool) {
	cm, err := c.Get(name)
	if err == nil {
		return cm, true
	}
	c.logger.Warnw("colormap unavailable, using default", "name", name, "error", err)
	cm, _ = c.Get(Default)
	return cm, false
}

// LoadFile reads a .pal file; the colormap is named after the file.
func LoadFile(path string) (Colormap, error) {
	f, err := os.Open(path)
	if err != nil {
		return Colormap{}, err
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(name, f)
}

// Parse reads one color per line: "#RRGGBB" or three components "R G B"
// either in 0-255 or all within 0-1. Blank lines and "#" comments are
// skipped.
func Parse(name string, r io.Reader) (Colormap, error) {
	var cs []color.Color
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if col, ok := parseHex(line); ok {
				cs = append(cs, col)
			}
			continue
		}
		col, err := parseTriplet(line)
		if err != nil {
			return Colormap{}, fmt.Errorf("colormap %s line %d: %w", name, lineNo, err)
		}
		cs = append(cs, col)
	}
	if err := sc.Err(); err != nil {
		return Colormap{}, err
	}
	return New(name, cs)
}

func parseHex(s string) (color.Color, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return nil, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

func parseTriplet(s string) (color.Color, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '\t' || r == ',' })
	if len(fields) < 3 {
		return nil, fmt.Errorf("want 3 components, got %q", s)
	}
	var v [3]float64
	unit := true
	for i := range v {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad component %q", fields[i])
		}
		if f < 0 || f > 255 {
			return nil, fmt.Errorf("component %v out of range", f)
		}
		if f > 1 {
			unit = false
		}
		v[i] = f
	}
	if unit {
		for i := range v {
			v[i] *= 255
		}
	}
	return color.NRGBA{R: uint8(v[0] + 0.5), G: uint8(v[1] + 0.5), B: uint8(v[2] + 0.5), A: 0xff}, nil
}
