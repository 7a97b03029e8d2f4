package geom

import (
	"encoding/json"
	"errors"
	"os"
)

// LoadGeo reads a GeoJSON file and returns Data (points, lines, polygons)
func LoadGeo(path string) (Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	return ParseGeoJSON(b)
}

// ParseGeoJSON decodes a FeatureCollection, Feature, GeometryCollection or
// bare geometry.
func ParseGeoJSON(b []byte) (Data, error) {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return Data{}, err
	}
	var d Data
	walkObject(&d, raw)
	if d.Empty() {
		return Data{}, errors.New("no geometries found")
	}
	return d, nil
}

func walkObject(d *Data, obj map[string]any) {
	switch t, _ := obj["type"].(string); t {
	case "FeatureCollection":
		fs, _ := obj["features"].([]any)
		for _, f := range fs {
			if fm, ok := f.(map[string]any); ok {
				walkObject(d, fm)
			}
		}
	case "Feature":
		if g, ok := obj["geometry"].(map[string]any); ok {
			walkObject(d, g)
		}
	case "GeometryCollection":
		gs, _ := obj["geometries"].([]any)
		for _, g := range gs {
			if gm, ok := g.(map[string]any); ok {
				walkObject(d, gm)
			}
		}
	default:
		walkGeometry(d, t, obj["coordinates"])
	}
}

func walkGeometry(d *Data, kind string, coords any) {
	switch kind {
	case "Point":
		if pt, ok := parsePosition(coords); ok {
			d.addPoint(pt)
		}
	case "MultiPoint":
		for _, p := range parsePositions(coords) {
			d.addPoint(p)
		}
	case "LineString":
		d.addLine(parsePositions(coords))
	case "MultiLineString":
		for _, ls := range nested(coords) {
			d.addLine(parsePositions(ls))
		}
	case "Polygon":
		d.addPolygon(parsePolygon(coords))
	case "MultiPolygon":
		for _, poly := range nested(coords) {
			d.addPolygon(parsePolygon(poly))
		}
	}
}

func nested(v any) []any {
	arr, _ := v.([]any)
	return arr
}

func parsePosition(v any) ([2]float64, bool) {
	a, ok := v.([]any)
	if !ok || len(a) < 2 {
		return [2]float64{}, false
	}
	lon, lok := a[0].(float64)
	lat, aok := a[1].(float64)
	if !lok || !aok {
		return [2]float64{}, false
	}
	return [2]float64{lon, lat}, true
}

func parsePositions(v any) [][2]float64 {
	var pts [][2]float64
	for _, el := range nested(v) {
		if pt, ok := parsePosition(el); ok {
			pts = append(pts, pt)
		}
	}
	return pts
}

func parsePolygon(v any) [][][2]float64 {
	var poly [][][2]float64
	for _, ring := range nested(v) {
		if pts := parsePositions(ring); len(pts) > 0 {
			poly = append(poly, pts)
		}
	}
	return poly
}
