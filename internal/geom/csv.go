package geom

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadDelimited reads a CSV or plain-text overlay. A header naming latitude
// and longitude columns yields points; otherwise each line holds "lon lat"
// (comma or whitespace separated) and consecutive lines form a polyline,
// broken at blank lines, ">" markers or NaN pairs.
func LoadDelimited(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return Data{}, err
	}
	line := string(first)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	idxLat, idxLon := headerColumns(splitFields(line))
	if idxLat < 0 || idxLon < 0 {
		return readTracks(br, 0, 1)
	}
	if strings.Contains(line, ",") {
		return readColumns(br, idxLat, idxLon)
	}
	return readTracks(br, idxLon, idxLat)
}

// LoadCSV reads a CSV with latitude/longitude columns and returns points.
// Column detection: lat|latitude|y and lon|lng|long|longitude|x (case-insensitive).
func LoadCSV(path string) (points [][2]float64, bbox BBox, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, BBox{}, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err != nil {
		return nil, BBox{}, err
	}
	idxLat, idxLon := headerColumns(header)
	if idxLat == -1 || idxLon == -1 {
		return nil, BBox{}, errors.New("csv: latitude/longitude columns not found")
	}
	d, err := readRecords(r, idxLat, idxLon)
	if err != nil {
		return nil, BBox{}, err
	}
	return d.Points, d.BBox, nil
}

func headerColumns(header []string) (idxLat, idxLon int) {
	idxLat, idxLon = -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "lat", "latitude", "y":
			if idxLat == -1 {
				idxLat = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if idxLon == -1 {
				idxLon = i
			}
		}
	}
	return idxLat, idxLon
}

func readColumns(r io.Reader, idxLat, idxLon int) (Data, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	if _, err := cr.Read(); err != nil {
		return Data{}, err
	}
	return readRecords(cr, idxLat, idxLon)
}

func readRecords(r *csv.Reader, idxLat, idxLon int) (Data, error) {
	var d Data
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Data{}, err
		}
		if idxLon >= len(row) || idxLat >= len(row) {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(row[idxLon]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(row[idxLat]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		d.addPoint([2]float64{lon, lat})
	}
	if d.Empty() {
		return Data{}, errors.New("csv: no valid points parsed")
	}
	return d, nil
}

func readTracks(r io.Reader, idxLon, idxLat int) (Data, error) {
	var d Data
	var track [][2]float64
	flush := func() {
		switch len(track) {
		case 0:
		case 1:
			d.addPoint(track[0])
		default:
			d.addLine(track)
		}
		track = nil
	}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, ">") {
			flush()
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		fields := splitFields(line)
		if idxLon >= len(fields) || idxLat >= len(fields) {
			continue
		}
		lon, err1 := strconv.ParseFloat(fields[idxLon], 64)
		lat, err2 := strconv.ParseFloat(fields[idxLat], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if math.IsNaN(lon) || math.IsNaN(lat) {
			flush()
			continue
		}
		track = append(track, [2]float64{lon, lat})
	}
	if err := sc.Err(); err != nil {
		return Data{}, err
	}
	flush()
	if d.Empty() {
		return Data{}, errors.New("text: no coordinates parsed")
	}
	return d, nil
}

func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
}
