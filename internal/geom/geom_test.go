package geom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadGeoJSON(t *testing.T) {
	p := writeFile(t, "coast.geojson", `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [120, 30]}},
	    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[121, 31], [122, 32]]}},
	    {"type": "Feature", "geometry": {"type": "MultiPolygon", "coordinates": [[[[0, 0], [1, 0], [1, 1], [0, 0]]]]}},
	    {"type": "Feature", "geometry": null}
	  ]
	}`)
	d, err := Load(p)
	require.NoError(t, err)
	assert.Len(t, d.Points, 1)
	assert.Len(t, d.Lines, 1)
	assert.Len(t, d.Polygons, 1)
	assert.Equal(t, BBox{MinX: 0, MinY: 0, MaxX: 122, MaxY: 32}, d.BBox)
}

func TestLoadGeoJSONWithoutGeometry(t *testing.T) {
	p := writeFile(t, "empty.json", `{"type": "FeatureCollection", "features": []}`)
	_, err := Load(p)
	assert.Error(t, err)
}

func TestLoadDelimitedHeader(t *testing.T) {
	p := writeFile(t, "stations.csv", "name,latitude,longitude\nA,30.5,120.25\nB,bad,1\nC,31,121\n")
	d, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{120.25, 30.5}, {121, 31}}, d.Points)
}

func TestLoadDelimitedTracks(t *testing.T) {
	p := writeFile(t, "coast.txt", "# coastline\n120 30\n121 30.5\n122 31\n>\n10 10\n11 11\nnan nan\n50 50\n")
	d, err := Load(p)
	require.NoError(t, err)
	require.Len(t, d.Lines, 2)
	assert.Len(t, d.Lines[0], 3)
	assert.Equal(t, [][2]float64{{50, 50}}, d.Points)
	assert.Equal(t, 10.0, d.BBox.MinX)
	assert.Equal(t, 122.0, d.BBox.MaxX)
}

func TestLoadDelimitedWhitespaceHeader(t *testing.T) {
	p := writeFile(t, "track.txt", "lat lon\n30 120\n31 121\n")
	d, err := Load(p)
	require.NoError(t, err)
	require.Len(t, d.Lines, 1)
	assert.Equal(t, [2]float64{120, 30}, d.Lines[0][0])
}

func TestLoadCSVPoints(t *testing.T) {
	p := writeFile(t, "p.csv", "x,y\n1,2\n3,4\n")
	pts, bb, err := LoadCSV(p)
	require.NoError(t, err)
	assert.Len(t, pts, 2)
	assert.Equal(t, BBox{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4}, bb)

	_, _, err = LoadCSV(writeFile(t, "q.csv", "a,b\n1,2\n"))
	assert.Error(t, err)
}

func TestLoadKML(t *testing.T) {
	p := writeFile(t, "places.kml", `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <Folder>
      <Placemark><Point><coordinates>120,30,0</coordinates></Point></Placemark>
    </Folder>
    <Placemark><LineString><coordinates>0,0 1,1 2,2</coordinates></LineString></Placemark>
    <Placemark>
      <Polygon><outerBoundaryIs><LinearRing><coordinates>0,0 1,0 1,1 0,0</coordinates></LinearRing></outerBoundaryIs></Polygon>
    </Placemark>
  </Document>
</kml>`)
	d, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{120, 30}}, d.Points)
	assert.Len(t, d.Lines, 1)
	assert.Len(t, d.Polygons, 1)
}

func TestParseWKT(t *testing.T) {
	tests := []struct {
		name   string
		wkt    string
		points int
		lines  int
		polys  int
	}{
		{"point", "POINT (1 2)", 1, 0, 0},
		{"multipoint nested", "MULTIPOINT ((1 2), (3 4))", 2, 0, 0},
		{"linestring", "LINESTRING (0 0, 1 1, 2 2)", 0, 1, 0},
		{"multilinestring", "MULTILINESTRING ((0 0, 1 1), (2 2, 3 3))", 0, 2, 0},
		{"polygon with hole", "POLYGON ((0 0, 4 0, 4 4, 0 0), (1 1, 2 1, 2 2, 1 1))", 0, 0, 1},
		{"multipolygon", "MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)), ((5 5, 6 5, 6 6, 5 5)))", 0, 0, 2},
		{"collection", "GEOMETRYCOLLECTION (POINT (1 1), LINESTRING (0 0, 1 1))", 1, 1, 0},
		{"several lines", "POINT (1 1)\nPOINT Z (2 2 5)", 2, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseWKTData(tt.wkt)
			require.NoError(t, err)
			assert.Len(t, d.Points, tt.points)
			assert.Len(t, d.Lines, tt.lines)
			assert.Len(t, d.Polygons, tt.polys)
		})
	}

	poly, err := ParseWKTData("POLYGON ((0 0, 4 0, 4 4, 0 0), (1 1, 2 1, 2 2, 1 1))")
	require.NoError(t, err)
	assert.Len(t, poly.Polygons[0], 2)

	for _, bad := range []string{"", "CIRCLE (1 2)", "POINT (1 2", "POINT EMPTY"} {
		_, err := ParseWKTData(bad)
		assert.Error(t, err, bad)
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.GeoJSON"))
	assert.True(t, Supported("/x/coast.txt"))
	assert.False(t, Supported("a.shp"))
	_, err := Load("a.shp")
	assert.Error(t, err)
}
