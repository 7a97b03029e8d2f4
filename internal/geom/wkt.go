package geom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ParseWKTData parses one or more WKT geometries (one per line or
// concatenated). Supported: POINT, MULTIPOINT, LINESTRING, MULTILINESTRING,
// POLYGON, MULTIPOLYGON and GEOMETRYCOLLECTION of those.
func ParseWKTData(wkt string) (Data, error) {
	s := strings.TrimSpace(wkt)
	if s == "" {
		return Data{}, errors.New("empty wkt")
	}
	var d Data
	for s != "" {
		rest, err := parseWKTGeometry(&d, s)
		if err != nil {
			return Data{}, err
		}
		s = strings.TrimLeft(strings.TrimSpace(rest), ",;")
		s = strings.TrimSpace(s)
	}
	if d.Empty() {
		return Data{}, errors.New("wkt: no coordinates parsed")
	}
	return d, nil
}

// parseWKTGeometry consumes one tagged geometry from s and returns the rest.
func parseWKTGeometry(d *Data, s string) (string, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		if strings.HasSuffix(strings.ToUpper(s), "EMPTY") {
			return "", nil
		}
		return "", fmt.Errorf("wkt: expected '(' in %q", truncate(s))
	}
	tag := strings.ToUpper(strings.TrimSpace(s[:open]))
	tag = strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(tag, " ZM"), " Z"), " M")
	end, err := matchParen(s, open)
	if err != nil {
		return "", err
	}
	body := s[open+1 : end]
	rest := s[end+1:]

	switch tag {
	case "POINT":
		for _, p := range parseTuples(body) {
			d.addPoint(p)
		}
	case "MULTIPOINT":
		for _, p := range parseTuples(strings.NewReplacer("(", "", ")", "").Replace(body)) {
			d.addPoint(p)
		}
	case "LINESTRING":
		d.addLine(parseTuples(body))
	case "MULTILINESTRING":
		for _, part := range groups(body) {
			d.addLine(parseTuples(part))
		}
	case "POLYGON":
		d.addPolygon(parseRings(body))
	case "MULTIPOLYGON":
		for _, part := range groups(body) {
			d.addPolygon(parseRings(part))
		}
	case "GEOMETRYCOLLECTION":
		inner := strings.TrimSpace(body)
		for inner != "" {
			r, err := parseWKTGeometry(d, inner)
			if err != nil {
				return "", err
			}
			inner = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(r), ","))
		}
	default:
		return "", fmt.Errorf("unsupported wkt type %q", tag)
	}
	return rest, nil
}

func parseRings(body string) [][][2]float64 {
	var poly [][][2]float64
	for _, ring := range groups(body) {
		if pts := parseTuples(ring); len(pts) > 0 {
			poly = append(poly, pts)
		}
	}
	return poly
}

// groups splits "(a),(b)" into the contents of each top-level parenthesis.
func groups(s string) []string {
	var out []string
	depth, start := 0, -1
	for i, r := range s {
		switch r {
		case '(':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case ')':
			depth--
			if depth == 0 && start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
		}
	}
	return out
}

func matchParen(s string, open int) (int, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("wkt: unbalanced parentheses in %q", truncate(s))
}

func parseTuples(block string) [][2]float64 {
	var out [][2]float64
	for _, tup := range strings.Split(block, ",") {
		parts := strings.Fields(strings.TrimSpace(tup))
		if len(parts) < 2 {
			continue
		}
		x, e1 := strconv.ParseFloat(parts[0], 64)
		y, e2 := strconv.ParseFloat(parts[1], 64)
		if e1 != nil || e2 != nil {
			continue
		}
		out = append(out, [2]float64{x, y})
	}
	return out
}

func truncate(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
