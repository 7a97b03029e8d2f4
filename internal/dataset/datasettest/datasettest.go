// Package datasettest writes small NetCDF classic files for tests.
package datasettest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
)

// Var is one double-precision variable to write.
type Var struct {
	Name   string
	Dims   []string
	Values []float64
	Attrs  map[string]any
}

// File describes a complete file.
type File struct {
	Dims    []string
	Lengths []int
	Vars    []Var
	Attrs   map[string]any
}

// Write creates path with the contents of f. Attribute values must be
// strings or []float64.
func Write(t testing.TB, path string, f File) {
	t.Helper()

	h := cdf.NewHeader(f.Dims, f.Lengths)
	for k, v := range f.Attrs {
		h.AddAttribute("", k, v)
	}
	for _, v := range f.Vars {
		h.AddVariable(v.Name, v.Dims, []float64{0})
		for k, a := range v.Attrs {
			h.AddAttribute(v.Name, k, a)
		}
	}
	h.Define()

	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer out.Close()

	nc, err := cdf.Create(out, h)
	if err != nil {
		t.Fatalf("writing header of %s: %v", path, err)
	}
	for _, v := range f.Vars {
		end := nc.Header.Lengths(v.Name)
		begin := make([]int, len(end))
		if _, err := nc.Writer(v.Name, begin, end).Write(v.Values); err != nil {
			t.Fatalf("writing %s: %v", v.Name, err)
		}
	}
	if err := cdf.UpdateNumRecs(out); err != nil {
		t.Fatalf("finalizing record count of %s: %v", path, err)
	}
}

func seq(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// Ocean writes a representative file into dir and returns its path.
//
//	time(4) depth(3) lat(2) lon(3) x(5)
//	series(time) profile(depth) sst(lat, lon) section(depth, x)
//	temp(time, lat, lon) counts(x) salinity(time, depth, lat, lon)
func Ocean(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "ocean.nc")

	sst := seq(6, 10, 1)
	sst[4] = -999

	Write(t, path, File{
		Dims:    []string{"time", "depth", "lat", "lon", "x"},
		Lengths: []int{4, 3, 2, 3, 5},
		Attrs: map[string]any{
			"title":       "test ocean",
			"institution": "ncbrowse",
		},
		Vars: []Var{
			{Name: "time", Dims: []string{"time"}, Values: seq(4, 0, 1),
				Attrs: map[string]any{"units": "days since 2000-01-01 00:00:00", "standard_name": "time"}},
			{Name: "depth", Dims: []string{"depth"}, Values: []float64{0, 10, 50},
				Attrs: map[string]any{"units": "m", "positive": "down"}},
			{Name: "lat", Dims: []string{"lat"}, Values: []float64{30, 31},
				Attrs: map[string]any{"units": "degrees_north"}},
			{Name: "lon", Dims: []string{"lon"}, Values: []float64{120, 121, 122},
				Attrs: map[string]any{"units": "degrees_east"}},
			{Name: "series", Dims: []string{"time"}, Values: []float64{1.5, 2.5, 3.5, 4.5},
				Attrs: map[string]any{"units": "m", "long_name": "sea level"}},
			{Name: "profile", Dims: []string{"depth"}, Values: []float64{20, 15, 5},
				Attrs: map[string]any{"units": "degC"}},
			{Name: "sst", Dims: []string{"lat", "lon"}, Values: sst,
				Attrs: map[string]any{"units": "degC", "_FillValue": []float64{-999}}},
			{Name: "section", Dims: []string{"depth", "x"}, Values: seq(15, 0, 1)},
			{Name: "temp", Dims: []string{"time", "lat", "lon"}, Values: seq(24, 0, 0.5),
				Attrs: map[string]any{"units": "degC"}},
			{Name: "counts", Dims: []string{"x"}, Values: seq(5, 0, 2),
				Attrs: map[string]any{"scale_factor": []float64{0.5}, "add_offset": []float64{10}}},
			{Name: "salinity", Dims: []string{"time", "depth", "lat", "lon"}, Values: seq(72, 30, 0.1),
				Attrs: map[string]any{"units": "psu"}},
		},
	})
	return path
}

// Frames writes a file whose animated variable has n steps along time.
func Frames(t testing.TB, dir string, n int) string {
	t.Helper()
	path := filepath.Join(dir, "frames.nc")
	Write(t, path, File{
		Dims:    []string{"time", "lat", "lon"},
		Lengths: []int{n, 2, 2},
		Vars: []Var{
			{Name: "time", Dims: []string{"time"}, Values: seq(n, 0, 1),
				Attrs: map[string]any{"units": "hours since 2020-01-01"}},
			{Name: "lat", Dims: []string{"lat"}, Values: []float64{0, 1}},
			{Name: "lon", Dims: []string{"lon"}, Values: []float64{0, 1}},
			{Name: "field", Dims: []string{"time", "lat", "lon"}, Values: seq(4*n, 0, 1)},
		},
	})
	return path
}
