package dataset

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncbrowse/internal/dataset/datasettest"
)

func TestLoadStructure(t *testing.T) {
	path := datasettest.Ocean(t, t.TempDir())
	ds, err := Load(path)
	require.NoError(t, err)
	defer ds.Close()

	n, ok := ds.Dimension("x")
	require.True(t, ok)
	assert.Equal(t, 5, n)
	n, ok = ds.Dimension("time")
	require.True(t, ok)
	assert.Equal(t, 4, n)

	var coords []string
	for _, c := range ds.Coords {
		coords = append(coords, c.Name)
	}
	assert.ElementsMatch(t, []string{"time", "depth", "lat", "lon"}, coords)

	sst, ok := ds.Variable("sst")
	require.True(t, ok)
	assert.False(t, sst.IsCoord)
	assert.Equal(t, []string{"lat", "lon"}, sst.Dims)
	assert.Equal(t, []int{2, 3}, sst.Shape)
	assert.Equal(t, "double", sst.Type)
	assert.Equal(t, "degC", sst.Units())

	title, ok := ds.Attr("title")
	require.True(t, ok)
	assert.Equal(t, "test ocean", title)
	assert.Positive(t, ds.Size)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.nc"))
	assert.ErrorIs(t, err, ErrNotFound)

	bad := filepath.Join(t.TempDir(), "bad.nc")
	require.NoError(t, os.WriteFile(bad, []byte("this is not netcdf"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrLoad)
}

type panickyGroup struct {
	api.Group
	closed bool
}

func (g *panickyGroup) Close() { g.closed = true }
func (g *panickyGroup) Attributes() api.AttributeMap { panic("corrupt header") }

func TestLoadRecoversAndClosesGroup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.nc")
	require.NoError(t, os.WriteFile(path, []byte("CDF"), 0o644))
	g := &panickyGroup{}
	prev := openGroup
	openGroup = func(string) (api.Group, error) { return g, nil }
	t.Cleanup(func() { openGroup = prev })

	ds, err := Load(path)
	assert.Nil(t, ds)
	assert.ErrorIs(t, err, ErrLoad)
	assert.Contains(t, err.Error(), "corrupt header")
	assert.True(t, g.closed)
}

func TestReadAppliesFillValue(t *testing.T) {
	ds, err := Load(datasettest.Ocean(t, t.TempDir()))
	require.NoError(t, err)
	defer ds.Close()

	arr, err := ds.Read("sst")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, arr.Shape)
	assert.True(t, math.IsNaN(arr.Values[4]))
	assert.Equal(t, 10.0, arr.At(0, 0))
	assert.Equal(t, 15.0, arr.At(1, 2))

	lo, hi, ok := arr.Range()
	require.True(t, ok)
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 15.0, hi)
}

func TestReadAppliesScaleAndOffset(t *testing.T) {
	ds, err := Load(datasettest.Ocean(t, t.TempDir()))
	require.NoError(t, err)
	defer ds.Close()

	arr, err := ds.Read("counts")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11, 12, 13, 14}, arr.Values)
}

func TestReadMissingVariable(t *testing.T) {
	ds, err := Load(datasettest.Ocean(t, t.TempDir()))
	require.NoError(t, err)
	defer ds.Close()

	_, err = ds.Read("nope")
	assert.ErrorIs(t, err, ErrMissingVariable)
}

func TestCoordinate(t *testing.T) {
	ds, err := Load(datasettest.Ocean(t, t.TempDir()))
	require.NoError(t, err)
	defer ds.Close()

	depth, ok := ds.Coordinate("depth")
	require.True(t, ok)
	assert.Equal(t, []float64{0, 10, 50}, depth.Values)

	_, ok = ds.Coordinate("x")
	assert.False(t, ok)
}

func TestFormatCoord(t *testing.T) {
	ds, err := Load(datasettest.Ocean(t, t.TempDir()))
	require.NoError(t, err)
	defer ds.Close()

	assert.Equal(t, "2000-01-03", ds.FormatCoord("time", 2))
	assert.Equal(t, "50", ds.FormatCoord("depth", 50))
	assert.Equal(t, "1.5", ds.FormatCoord("x", 1.5))
}

func TestInfo(t *testing.T) {
	ds, err := Load(datasettest.Ocean(t, t.TempDir()))
	require.NoError(t, err)
	defer ds.Close()

	info, ok := ds.Info("series")
	require.True(t, ok)
	assert.Equal(t, []string{"time"}, info.Dims)
	assert.Equal(t, "sea level", info.Attrs["long_name"])
	assert.Equal(t, "double", info.Type)

	info, ok = ds.Info("time")
	require.True(t, ok)
	assert.Equal(t, "days since 2000-01-01 00:00:00", info.Attrs["units"])
}

func TestArrayIndex(t *testing.T) {
	a := &Array{
		Dims:   []string{"t", "y", "x"},
		Shape:  []int{2, 2, 3},
		Values: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	}

	s, err := a.Index("t", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x"}, s.Dims)
	assert.Equal(t, []float64{6, 7, 8, 9, 10, 11}, s.Values)

	s, err = a.Index("y", 0)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, s.Shape)
	assert.Equal(t, []float64{0, 1, 2, 6, 7, 8}, s.Values)

	s, err = a.Index("x", 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5, 8, 11}, s.Values)

	_, err = a.Index("z", 0)
	assert.Error(t, err)
	_, err = a.Index("t", 2)
	assert.Error(t, err)

	rows, err := s.Rows()
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2, 5}, {8, 11}}, rows)
}

func TestFlattenNested(t *testing.T) {
	got := flatten([][]float32{{1, 2}, {3, 4}}, nil)
	assert.Equal(t, []float64{1, 2, 3, 4}, got)
	assert.Equal(t, []int{2, 2}, shapeOf([][]int32{{1, 2}, {3, 4}}))

	got = flatten([]string{"a"}, nil)
	require.Len(t, got, 1)
	assert.True(t, math.IsNaN(got[0]))
}

func TestParseTimeUnits(t *testing.T) {
	tests := []struct {
		units string
		value float64
		want  string
		ok    bool
	}{
		{"days since 1950-01-01", 1, "1950-01-02", true},
		{"hours since 2020-01-01 00:00:00", 36, "2020-01-02 12:00", true},
		{"seconds since 1970-01-01T00:00:00Z", 60, "1970-01-01 00:01", true},
		{"minutes since 2000-1-1 0:0:0", 30, "2000-01-01 00:30", true},
		{"days since 0001-01-01", 738000, "2021-07-30", true},
		{"hours since 1-1-1 00:00:00", 17712000.5, "2021-07-30 00:30", true},
		{"seconds since 1800-01-01", 9e9, "2085-03-13 16:00", true},
		{"days since 2000-01-01", -1.5, "1999-12-30 12:00", true},
		{"degC", 0, "", false},
		{"fortnights since 2000-01-01", 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.units, func(t *testing.T) {
			u, ok := ParseTimeUnits(tt.units)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, u.Format(tt.value))
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(&Array{Values: []float64{1, 2, 3, math.NaN()}})
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 1, s.Missing)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 3.0, s.Max)
	assert.InDelta(t, 2.0, s.Mean, 1e-12)
	assert.InDelta(t, 1.0, s.StdDev, 1e-12)

	empty := Summarize(&Array{Values: []float64{math.NaN()}})
	assert.Equal(t, 0, empty.Count)
}
