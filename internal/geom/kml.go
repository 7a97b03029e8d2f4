package geom

import (
	"encoding/xml"
	"errors"
	"os"
	"strconv"
	"strings"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	Outer kmlCoords   `xml:"outerBoundaryIs>LinearRing"`
	Inner []kmlCoords `xml:"innerBoundaryIs>LinearRing"`
}

type kmlGeometry struct {
	Points   []kmlCoords   `xml:"Point"`
	Lines    []kmlCoords   `xml:"LineString"`
	Rings    []kmlCoords   `xml:"LinearRing"`
	Polygons []kmlPolygon  `xml:"Polygon"`
	Multi    []kmlGeometry `xml:"MultiGeometry"`
}

type kmlPlacemark struct {
	kmlGeometry
}

type kmlContainer struct {
	Placemarks []kmlPlacemark `xml:"Placemark"`
	Folders    []kmlContainer `xml:"Folder"`
	Documents  []kmlContainer `xml:"Document"`
}

// LoadKML extracts Placemark geometry (Point, LineString, LinearRing,
// Polygon, MultiGeometry) from a KML file, descending into Documents and
// Folders. Coordinates are "lon,lat[,alt]"; altitude is ignored.
func LoadKML(path string) (Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	var doc kmlContainer
	if err := xml.Unmarshal(b, &doc); err != nil {
		return Data{}, err
	}
	var d Data
	walkKML(&d, doc)
	if d.Empty() {
		return Data{}, errors.New("kml: no geometry found")
	}
	return d, nil
}

func walkKML(d *Data, c kmlContainer) {
	for _, pm := range c.Placemarks {
		addKMLGeometry(d, pm.kmlGeometry)
	}
	for _, f := range c.Folders {
		walkKML(d, f)
	}
	for _, doc := range c.Documents {
		walkKML(d, doc)
	}
}

func addKMLGeometry(d *Data, g kmlGeometry) {
	for _, p := range g.Points {
		for _, pt := range parseKMLCoords(p.Coordinates) {
			d.addPoint(pt)
		}
	}
	for _, l := range g.Lines {
		d.addLine(parseKMLCoords(l.Coordinates))
	}
	for _, r := range g.Rings {
		d.addPolygon([][][2]float64{parseKMLCoords(r.Coordinates)})
	}
	for _, p := range g.Polygons {
		poly := [][][2]float64{parseKMLCoords(p.Outer.Coordinates)}
		for _, in := range p.Inner {
			poly = append(poly, parseKMLCoords(in.Coordinates))
		}
		d.addPolygon(poly)
	}
	for _, m := range g.Multi {
		addKMLGeometry(d, m)
	}
}

func parseKMLCoords(s string) [][2]float64 {
	var out [][2]float64
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, [2]float64{lon, lat})
	}
	return out
}
