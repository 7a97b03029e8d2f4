// Package tree flattens an open dataset into the rows of the structure
// sidebar.
package tree

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"ncbrowse/internal/dataset"
)

// Kind tags what a node stands for.
type Kind int

const (
	// Group is an untagged heading such as "Dimensions".
	Group Kind = iota
	File
	Dimension
	Coordinate
	DataVariable
	Attribute
)

var kindNames = [...]string{"group", "file", "dimension", "coordinate", "data_variable", "attribute"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Node is one row of the tree.
type Node struct {
	// Key identifies the node within its tree, for collapse state.
	Key   string
	Label string
	Kind  Kind
	Depth int
	// Variable names the variable a coordinate, data variable or its
	// attributes belong to.
	Variable    string
	HasChildren bool
}

// Plottable reports whether selecting the node can open a plot.
func (n Node) Plottable() bool {
	return (n.Kind == DataVariable || n.Kind == Coordinate) && n.Variable != ""
}

type builder struct {
	nodes []Node
}

func (b *builder) add(n Node) int {
	b.nodes = append(b.nodes, n)
	return len(b.nodes) - 1
}

func (b *builder) attrs(parent string, depth int, variable string, attrs []dataset.Attr) {
	for _, a := range attrs {
		b.add(Node{
			Key:      parent + "/" + a.Name,
			Label:    a.Name + ": " + a.Value,
			Kind:     Attribute,
			Depth:    depth,
			Variable: variable,
		})
	}
}

func (b *builder) variables(group string, kind Kind, vars []*dataset.Variable) {
	if len(vars) == 0 {
		return
	}
	b.add(Node{Key: group, Label: group, Kind: Group, Depth: 1, HasChildren: true})
	for _, v := range vars {
		key := group + "/" + v.Name
		b.add(Node{
			Key:         key,
			Label:       variableLabel(v),
			Kind:        kind,
			Depth:       2,
			Variable:    v.Name,
			HasChildren: len(v.Attrs) > 0,
		})
		if len(v.Attrs) > 0 {
			b.add(Node{Key: key + "/Attributes", Label: "Attributes", Kind: Group, Depth: 3, Variable: v.Name, HasChildren: true})
			b.attrs(key+"/Attributes", 4, v.Name, v.Attrs)
		}
	}
}

func variableLabel(v *dataset.Variable) string {
	if len(v.Dims) == 0 {
		return v.Name
	}
	return fmt.Sprintf("%s (%s)", v.Name, strings.Join(v.Dims, ", "))
}

// Build returns the rows for ds: the file, then its dimensions,
// coordinates, data variables and global attributes.
func Build(ds *dataset.Dataset) []Node {
	if ds == nil {
		return nil
	}
	var b builder
	b.add(Node{
		Key:         "",
		Label:       fmt.Sprintf("%s (%s)", filepath.Base(ds.Path), humanize.Bytes(uint64(max(ds.Size, 0)))),
		Kind:        File,
		HasChildren: true,
	})
	if len(ds.Dims) > 0 {
		b.add(Node{Key: "Dimensions", Label: "Dimensions", Kind: Group, Depth: 1, HasChildren: true})
		for _, d := range ds.Dims {
			b.add(Node{
				Key:   "Dimensions/" + d.Name,
				Label: fmt.Sprintf("%s: %s", d.Name, humanize.Comma(int64(d.Len))),
				Kind:  Dimension,
				Depth: 2,
			})
		}
	}
	b.variables("Coordinates", Coordinate, ds.Coords)
	b.variables("Data Variables", DataVariable, ds.DataVars)
	if len(ds.Attrs) > 0 {
		b.add(Node{Key: "Global Attributes", Label: "Global Attributes", Kind: Group, Depth: 1, HasChildren: true})
		b.attrs("Global Attributes", 2, "", ds.Attrs)
	}
	return b.nodes
}

// DefaultCollapsed collapses the per-variable attribute groups.
func DefaultCollapsed(nodes []Node) map[string]bool {
	out := map[string]bool{}
	for _, n := range nodes {
		if n.Kind == Group && n.Variable != "" {
			out[n.Key] = true
		}
	}
	return out
}

// Visible drops the descendants of collapsed nodes.
func Visible(nodes []Node, collapsed map[string]bool) []Node {
	out := make([]Node, 0, len(nodes))
	hideBelow := -1
	for _, n := range nodes {
		if hideBelow >= 0 {
			if n.Depth > hideBelow {
				continue
			}
			hideBelow = -1
		}
		out = append(out, n)
		if n.HasChildren && collapsed[n.Key] {
			hideBelow = n.Depth
		}
	}
	return out
}

// Render draws nodes as an indented outline.
func Render(nodes []Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(strings.Repeat("  ", n.Depth))
		sb.WriteString(n.Label)
		sb.WriteByte('\n')
	}
	return sb.String()
}
