// Package geom loads vector overlays (coastlines, boundaries, stations) from
// GeoJSON, delimited text, KML and WKT files into lon/lat geometry.
package geom

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BBox is a lon/lat bounding box.
type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Valid reports whether the box has positive width and height.
func (b BBox) Valid() bool {
	return b.MaxX > b.MinX && b.MaxY > b.MinY
}

// Contains reports whether the point lies inside the box.
func (b BBox) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Data is a minimal geometry container for rendering
type Data struct {
	Points   [][2]float64
	Lines    [][][2]float64
	Polygons [][][][2]float64 // polygons with rings (first outer, following holes)
	BBox     BBox

	n int
}

// Empty reports whether no geometry was collected.
func (d *Data) Empty() bool {
	return len(d.Points) == 0 && len(d.Lines) == 0 && len(d.Polygons) == 0
}

func (d *Data) extend(p [2]float64) {
	if d.n == 0 {
		d.BBox = BBox{MinX: p[0], MinY: p[1], MaxX: p[0], MaxY: p[1]}
	} else {
		d.BBox.MinX = min(d.BBox.MinX, p[0])
		d.BBox.MinY = min(d.BBox.MinY, p[1])
		d.BBox.MaxX = max(d.BBox.MaxX, p[0])
		d.BBox.MaxY = max(d.BBox.MaxY, p[1])
	}
	d.n++
}

func (d *Data) addPoint(p [2]float64) {
	d.Points = append(d.Points, p)
	d.extend(p)
}

func (d *Data) addLine(ls [][2]float64) {
	if len(ls) == 0 {
		return
	}
	d.Lines = append(d.Lines, ls)
	for _, p := range ls {
		d.extend(p)
	}
}

func (d *Data) addPolygon(poly [][][2]float64) {
	if len(poly) == 0 {
		return
	}
	d.Polygons = append(d.Polygons, poly)
	for _, ring := range poly {
		for _, p := range ring {
			d.extend(p)
		}
	}
}

// Extensions lists the file extensions Load understands.
var Extensions = []string{".geojson", ".json", ".csv", ".txt", ".kml", ".wkt"}

// Supported reports whether Load can read path.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Load reads any supported overlay file, choosing the parser by extension.
func Load(path string) (Data, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".geojson", ".json":
		return LoadGeo(path)
	case ".csv", ".txt":
		return LoadDelimited(path)
	case ".kml":
		return LoadKML(path)
	case ".wkt":
		b, err := os.ReadFile(path)
		if err != nil {
			return Data{}, err
		}
		return ParseWKTData(string(b))
	default:
		return Data{}, fmt.Errorf("unsupported overlay file: %s", ext)
	}
}
