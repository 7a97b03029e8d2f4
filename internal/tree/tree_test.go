package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncbrowse/internal/dataset"
	"ncbrowse/internal/dataset/datasettest"
)

func fixture() *dataset.Dataset {
	return &dataset.Dataset{
		Path: "/data/ocean.nc",
		Size: 2048,
		Dims: []dataset.Dimension{{Name: "time", Len: 1200}, {Name: "lat", Len: 2}},
		Coords: []*dataset.Variable{
			{Name: "time", Dims: []string{"time"}, Attrs: []dataset.Attr{{Name: "units", Value: "days since 2000-01-01"}}, IsCoord: true},
		},
		DataVars: []*dataset.Variable{
			{Name: "sst", Dims: []string{"time", "lat"}},
		},
		Attrs: []dataset.Attr{{Name: "title", Value: "test"}},
	}
}

func labelsOf(nodes []Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Label)
	}
	return out
}

func TestBuild(t *testing.T) {
	nodes := Build(fixture())
	assert.Equal(t, []string{
		"ocean.nc (2.0 kB)",
		"Dimensions",
		"time: 1,200",
		"lat: 2",
		"Coordinates",
		"time (time)",
		"Attributes",
		"units: days since 2000-01-01",
		"Data Variables",
		"sst (time, lat)",
		"Global Attributes",
		"title: test",
	}, labelsOf(nodes))

	kinds := map[string]Kind{}
	for _, n := range nodes {
		kinds[n.Label] = n.Kind
	}
	assert.Equal(t, File, kinds["ocean.nc (2.0 kB)"])
	assert.Equal(t, Dimension, kinds["lat: 2"])
	assert.Equal(t, Coordinate, kinds["time (time)"])
	assert.Equal(t, DataVariable, kinds["sst (time, lat)"])
	assert.Equal(t, Attribute, kinds["title: test"])
	assert.Equal(t, Group, kinds["Dimensions"])

	assert.True(t, nodes[9].Plottable())
	assert.Equal(t, "sst", nodes[9].Variable)
	assert.False(t, nodes[2].Plottable())
	assert.Nil(t, Build(nil))
}

func TestVisibleCollapses(t *testing.T) {
	nodes := Build(fixture())
	collapsed := DefaultCollapsed(nodes)
	assert.Equal(t, map[string]bool{"Coordinates/time/Attributes": true}, collapsed)

	vis := Visible(nodes, collapsed)
	assert.NotContains(t, labelsOf(vis), "units: days since 2000-01-01")
	assert.Contains(t, labelsOf(vis), "Attributes")

	collapsed["Dimensions"] = true
	vis = Visible(nodes, collapsed)
	assert.NotContains(t, labelsOf(vis), "lat: 2")
	assert.Contains(t, labelsOf(vis), "Coordinates")

	vis = Visible(nodes, map[string]bool{"": true})
	assert.Len(t, vis, 1)
}

func TestBuildFromFile(t *testing.T) {
	ds, err := dataset.Load(datasettest.Ocean(t, t.TempDir()))
	require.NoError(t, err)
	defer ds.Close()

	nodes := Build(ds)
	var dataVars []string
	for _, n := range nodes {
		if n.Kind == DataVariable {
			dataVars = append(dataVars, n.Variable)
		}
	}
	assert.ElementsMatch(t, []string{"series", "profile", "sst", "section", "temp", "counts", "salinity"}, dataVars)
	assert.Contains(t, Render(nodes), "  Dimensions\n")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "data_variable", DataVariable.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
