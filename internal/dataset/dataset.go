// Package dataset opens NetCDF files and exposes their structure: dimensions,
// coordinate variables, data variables and attributes. Array values are read
// on demand with CF fill values and packing applied.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

var (
	// ErrNotFound means the path does not exist on disk.
	ErrNotFound = errors.New("file not found")
	// ErrLoad means the NetCDF reader rejected the file.
	ErrLoad = errors.New("cannot load dataset")
	// ErrMissingVariable means the name is neither a coordinate nor a data
	// variable of the dataset.
	ErrMissingVariable = errors.New("variable not found")
)

// Dimension is a named axis of the file.
type Dimension struct {
	Name string
	Len  int
}

// Attr is one attribute with its value rendered as text. Raw keeps the value
// as decoded by the reader.
type Attr struct {
	Name  string
	Value string
	Raw   any
}

// Variable describes one variable without its values.
type Variable struct {
	Name    string
	Dims    []string
	Shape   []int
	Type    string
	Attrs   []Attr
	IsCoord bool
}

// Attr returns the textual value of the named attribute.
func (v *Variable) Attr(name string) (string, bool) {
	for _, a := range v.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (v *Variable) raw(name string) (any, bool) {
	for _, a := range v.Attrs {
		if a.Name == name {
			return a.Raw, true
		}
	}
	return nil, false
}

// Units returns the units attribute, or "".
func (v *Variable) Units() string {
	u, _ := v.Attr("units")
	return u
}

// Size is the number of elements.
func (v *Variable) Size() int {
	n := 1
	for _, s := range v.Shape {
		n *= s
	}
	return n
}

// Dataset is an open NetCDF file.
type Dataset struct {
	Path     string
	Size     int64
	Dims     []Dimension
	Coords   []*Variable
	DataVars []*Variable
	Attrs    []Attr

	group api.Group
}

// dimensionLister is implemented by the classic CDF reader.
type dimensionLister interface {
	ListDimensions() []string
	GetDimension(name string) (uint64, bool)
}

// openGroup opens the root group of a NetCDF file.
var openGroup = netcdf.Open

// Load opens path and reads its header.
func Load(path string) (ds *Dataset, err error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	var g api.Group
	defer func() {
		if r := recover(); r != nil {
			if g != nil {
				g.Close()
			}
			ds, err = nil, fmt.Errorf("%w: %s: %v", ErrLoad, path, r)
		}
	}()

	g, err = openGroup(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	ds, err = fromGroup(g)
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	ds.Path = path
	ds.Size = fi.Size()
	return ds, nil
}

func fromGroup(g api.Group) (*Dataset, error) {
	ds := &Dataset{group: g, Attrs: attrsOf(g.Attributes())}

	lengths := map[string]int{}
	var dimOrder []string
	if dl, ok := g.(dimensionLister); ok {
		for _, name := range dl.ListDimensions() {
			n, _ := dl.GetDimension(name)
			dimOrder = append(dimOrder, name)
			if n > 0 {
				lengths[name] = int(n)
			}
		}
	}

	type pending struct {
		v  *Variable
		vg api.VarGetter
	}
	var vars []pending
	for _, name := range g.ListVariables() {
		vg, err := g.GetVarGetter(name)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
		v := &Variable{
			Name:  name,
			Dims:  vg.Dimensions(),
			Type:  vg.Type(),
			Attrs: attrsOf(vg.Attributes()),
		}
		if len(v.Dims) > 0 {
			if _, ok := lengths[v.Dims[0]]; !ok {
				lengths[v.Dims[0]] = int(vg.Len())
			}
		}
		for _, d := range v.Dims {
			if !contains(dimOrder, d) {
				dimOrder = append(dimOrder, d)
			}
		}
		vars = append(vars, pending{v, vg})
	}

	// Inner dimension lengths the reader does not list are taken from the
	// shape of the decoded values.
	for _, p := range vars {
		missing := false
		for _, d := range p.v.Dims {
			if _, ok := lengths[d]; !ok {
				missing = true
			}
		}
		if !missing {
			continue
		}
		vals, err := p.vg.Values()
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", p.v.Name, err)
		}
		shape := shapeOf(vals)
		for i, d := range p.v.Dims {
			if _, ok := lengths[d]; !ok && i < len(shape) {
				lengths[d] = shape[i]
			}
		}
	}

	for _, d := range dimOrder {
		ds.Dims = append(ds.Dims, Dimension{Name: d, Len: lengths[d]})
	}
	for _, p := range vars {
		v := p.v
		v.Shape = make([]int, len(v.Dims))
		for i, d := range v.Dims {
			v.Shape[i] = lengths[d]
		}
		v.IsCoord = len(v.Dims) == 1 && v.Dims[0] == v.Name
		if v.IsCoord {
			ds.Coords = append(ds.Coords, v)
		} else {
			ds.DataVars = append(ds.DataVars, v)
		}
	}
	return ds, nil
}

// Close releases the underlying reader.
func (d *Dataset) Close() {
	if d.group != nil {
		d.group.Close()
		d.group = nil
	}
}

// Variable finds a coordinate or data variable by name.
func (d *Dataset) Variable(name string) (*Variable, bool) {
	for _, v := range d.Coords {
		if v.Name == name {
			return v, true
		}
	}
	for _, v := range d.DataVars {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// Dimension returns the length of the named dimension.
func (d *Dataset) Dimension(name string) (int, bool) {
	for _, dim := range d.Dims {
		if dim.Name == name {
			return dim.Len, true
		}
	}
	return 0, false
}

// Attr returns a global attribute as text.
func (d *Dataset) Attr(name string) (string, bool) {
	for _, a := range d.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Read decodes the values of the named variable.
func (d *Dataset) Read(name string) (arr *Array, err error) {
	v, ok := d.Variable(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingVariable, name)
	}
	if d.group == nil {
		return nil, fmt.Errorf("reading %s: dataset is closed", name)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading %s: %v", name, r)
		}
	}()
	raw, err := d.group.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	values := flatten(raw.Values, nil)
	if want := v.Size(); len(values) != want {
		return nil, fmt.Errorf("reading %s: got %d values, want %d", name, len(values), want)
	}
	arr = &Array{
		Dims:   append([]string(nil), v.Dims...),
		Shape:  append([]int(nil), v.Shape...),
		Values: values,
	}
	applyCF(arr, v)
	return arr, nil
}

// Coordinate reads the coordinate variable for dim. It reports false when the
// dimension has no coordinate variable of matching length.
func (d *Dataset) Coordinate(dim string) (*Array, bool) {
	v, ok := d.Variable(dim)
	if !ok || !v.IsCoord {
		return nil, false
	}
	n, _ := d.Dimension(dim)
	if v.Size() != n {
		return nil, false
	}
	arr, err := d.Read(dim)
	if err != nil {
		return nil, false
	}
	return arr, true
}

// FormatCoord renders a value along dim as text, decoding CF time units.
func (d *Dataset) FormatCoord(dim string, value float64) string {
	if v, ok := d.Variable(dim); ok {
		if tu, ok := ParseTimeUnits(v.Units()); ok {
			return tu.Format(value)
		}
	}
	return strconv.FormatFloat(value, 'g', 6, 64)
}

// Info is the metadata summary of one variable.
type Info struct {
	Name  string
	Dims  []string
	Attrs map[string]string
	Type  string
}

// Info returns the metadata summary of the named variable.
func (d *Dataset) Info(name string) (Info, bool) {
	v, ok := d.Variable(name)
	if !ok {
		return Info{}, false
	}
	attrs := make(map[string]string, len(v.Attrs))
	for _, a := range v.Attrs {
		attrs[a.Name] = a.Value
	}
	return Info{
		Name:  v.Name,
		Dims:  append([]string(nil), v.Dims...),
		Attrs: attrs,
		Type:  v.Type,
	}, true
}

func attrsOf(m api.AttributeMap) []Attr {
	if m == nil {
		return nil
	}
	var out []Attr
	for _, k := range m.Keys() {
		val, _ := m.Get(k)
		out = append(out, Attr{Name: k, Value: formatValue(val), Raw: val})
	}
	return out
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = formatValue(rv.Index(i).Interface())
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
