package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	table "github.com/charmbracelet/bubbles/table"
	"github.com/dustin/go-humanize"

	"ncbrowse/internal/chart"
	"ncbrowse/internal/dataset"
)

// refreshAttrs rebuilds the attribute table from attrs, sized to width.
func (m *Model) refreshAttrs(attrs []dataset.Attr, width int) {
	nameW := len("attribute")
	for _, a := range attrs {
		nameW = max(nameW, len(a.Name))
	}
	nameW = min(nameW, 24)
	valW := max(10, width-nameW-6)
	rows := make([]table.Row, 0, len(attrs))
	for _, a := range attrs {
		rows = append(rows, table.Row{truncate(a.Name, nameW), truncate(oneLine(a.Value), valW)})
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns([]table.Column{
		{Title: "attribute", Width: nameW},
		{Title: "value", Width: valW},
	})
	m.tbl.SetRows(rows)
	m.tbl.SetHeight(len(rows) + 1)
	m.tbl.SetWidth(width)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (m *Model) setInfo(title string, body []string, attrs []dataset.Attr) {
	w := max(20, m.mainWidth()-4)
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	for _, l := range body {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	if len(attrs) > 0 {
		m.refreshAttrs(attrs, w)
		sb.WriteByte('\n')
		sb.WriteString(m.tbl.View())
	} else {
		sb.WriteString(dimStyle.Render("\nno attributes"))
	}
	m.info.SetContent(sb.String())
	m.info.GotoTop()
}

// showFileInfo fills the info pane with a summary of the current dataset.
func (m *Model) showFileInfo() {
	ds := m.app.Datasets.Current()
	m.infoVar = ""
	if ds == nil {
		m.info.SetContent(dimStyle.Render("no file open"))
		return
	}
	dims := make([]string, 0, len(ds.Dims))
	for _, d := range ds.Dims {
		dims = append(dims, fmt.Sprintf("%s=%s", d.Name, humanize.Comma(int64(d.Len))))
	}
	body := []string{
		"path:        " + ds.Path,
		"size:        " + humanize.Bytes(uint64(max(ds.Size, 0))),
		"dimensions:  " + strings.Join(dims, ", "),
		fmt.Sprintf("coordinates: %d", len(ds.Coords)),
		fmt.Sprintf("variables:   %d", len(ds.DataVars)),
	}
	m.setInfo(filepath.Base(ds.Path), body, ds.Attrs)
}

// showVarInfo fills the info pane with the metadata and value summary of one
// variable.
func (m *Model) showVarInfo(name string) {
	ds := m.app.Datasets.Current()
	if ds == nil {
		return
	}
	v, ok := ds.Variable(name)
	if !ok {
		m.status = "variable not found: " + name
		return
	}
	m.infoVar = name
	shape := make([]string, len(v.Shape))
	for i, n := range v.Shape {
		shape[i] = humanize.Comma(int64(n))
	}
	arch := chart.Infer(v.Dims)
	kind := arch.String()
	if arch == chart.Unsupported {
		kind = "not plottable"
	}
	body := []string{
		"dimensions: (" + strings.Join(v.Dims, ", ") + ")",
		"shape:      (" + strings.Join(shape, ", ") + ")",
		"type:       " + v.Type,
		"plot:       " + kind,
	}
	if u := v.Units(); u != "" {
		body = append(body, "units:      "+u)
	}
	if arr, err := ds.Read(name); err != nil {
		body = append(body, errStyle.Render("read error: "+err.Error()))
	} else {
		s := dataset.Summarize(arr)
		body = append(body, fmt.Sprintf("values:     %s valid, %s missing",
			humanize.Comma(int64(s.Count)), humanize.Comma(int64(s.Missing))))
		if s.Count > 0 {
			body = append(body, fmt.Sprintf("range:      %.6g .. %.6g", s.Min, s.Max),
				fmt.Sprintf("mean:       %.6g ± %.4g", s.Mean, s.StdDev))
		}
	}
	m.setInfo(name, body, v.Attrs)
	m.view = viewInfo
}
