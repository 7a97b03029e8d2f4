package chart

import (
	"fmt"
	"html/template"
	"io"

	"gonum.org/v1/plot/vg"
)

var pageTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"dec": func(n int) int { return n - 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; background: {{.Background}}; color: {{.Foreground}}; margin: 1em; }
.frame { display: none; }
.frame.active { display: block; }
.warn { color: #c77c00; font-size: 0.9em; }
#slider { width: 60%; }
</style>
</head>
<body>
<h2>{{.Title}}</h2>
{{range .Warnings}}<div class="warn">{{.}}</div>
{{end}}
{{range $i, $f := .Frames}}<div class="frame{{if eq $i 0}} active{{end}}" data-label="{{$f.Label}}">{{$f.SVG}}</div>
{{end}}
{{if gt (len .Frames) 1}}
<div>
<label for="slider">{{.AnimDim}}: <span id="label">{{(index .Frames 0).Label}}</span></label><br>
<input type="range" id="slider" min="0" max="{{len .Frames | dec}}" value="0">
</div>
<script>
(function () {
  var frames = document.querySelectorAll(".frame");
  var slider = document.getElementById("slider");
  var label = document.getElementById("label");
  slider.addEventListener("input", function () {
    frames.forEach(function (f, i) { f.classList.toggle("active", i == slider.value); });
    label.textContent = frames[slider.value].dataset.label;
  });
})();
</script>
{{end}}
</body>
</html>
`))

type htmlFrame struct {
	Label string
	SVG   template.HTML
}

// WriteHTML writes a self-contained page with one inline SVG per frame and a
// slider to step through them.
func (f *Figure) WriteHTML(w io.Writer, width, height vg.Length) error {
	n := max(f.FrameCount(), 1)
	frames := make([]htmlFrame, 0, n)
	for i := 0; i < n; i++ {
		svg, err := f.SVG(i, width, height)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		frames = append(frames, htmlFrame{Label: f.FrameLabel(i), SVG: template.HTML(svg)})
	}
	bg, fg := "#ffffff", "#000000"
	if f.Dark() {
		bg, fg = "#111111", "#eeeeee"
	}
	return pageTmpl.Execute(w, map[string]any{
		"Title":      f.Title,
		"Warnings":   f.Warnings,
		"Frames":     frames,
		"AnimDim":    f.AnimDim,
		"Background": template.CSS(bg),
		"Foreground": template.CSS(fg),
	})
}
