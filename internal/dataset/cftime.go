package dataset

import (
	"math"
	"strings"
	"time"
)

// TimeUnits is a parsed CF time specification such as
// "days since 1950-01-01 00:00:00".
type TimeUnits struct {
	Step      time.Duration
	Reference time.Time
}

var unitSteps = map[string]time.Duration{
	"second":  time.Second,
	"seconds": time.Second,
	"sec":     time.Second,
	"secs":    time.Second,
	"s":       time.Second,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"min":     time.Minute,
	"mins":    time.Minute,
	"hour":    time.Hour,
	"hours":   time.Hour,
	"hr":      time.Hour,
	"hrs":     time.Hour,
	"h":       time.Hour,
	"day":     24 * time.Hour,
	"days":    24 * time.Hour,
	"d":       24 * time.Hour,
}

var referenceLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.0",
	"2006-01-02 15:04",
	"2006-1-2 15:4:5",
	"2006-01-02",
	"2006-1-2",
}

// ParseTimeUnits parses a CF "<unit> since <date>" string. Calendars other
// than the proleptic Gregorian one are treated as Gregorian.
func ParseTimeUnits(units string) (TimeUnits, bool) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return TimeUnits{}, false
	}
	step, ok := unitSteps[strings.ToLower(strings.TrimSpace(parts[0]))]
	if !ok {
		return TimeUnits{}, false
	}
	ref := strings.TrimSpace(parts[1])
	ref = strings.TrimSuffix(ref, " UTC")
	ref = strings.TrimSuffix(ref, "Z")
	ref = padYear(ref)
	for _, layout := range referenceLayouts {
		if t, err := time.ParseInLocation(layout, ref, time.UTC); err == nil {
			return TimeUnits{Step: step, Reference: t}, true
		}
	}
	return TimeUnits{}, false
}

// Time converts an offset in units to an absolute time. Whole days go
// through AddDate so offsets of many centuries do not overflow a Duration.
func (u TimeUnits) Time(value float64) time.Time {
	secs := value * u.Step.Seconds()
	days := math.Floor(secs / 86400)
	rem := time.Duration(math.Round((secs-days*86400)*1e3)) * time.Millisecond
	return u.Reference.AddDate(0, 0, int(days)).Add(rem)
}

// Format renders value as a date, adding the clock time when it is not
// midnight.
func (u TimeUnits) Format(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "NaN"
	}
	t := u.Time(value)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}

// padYear widens a short year such as "1-1-1" to four digits.
func padYear(ref string) string {
	i := strings.IndexByte(ref, '-')
	if i <= 0 || i >= 4 {
		return ref
	}
	for _, c := range ref[:i] {
		if c < '0' || c > '9' {
			return ref
		}
	}
	return strings.Repeat("0", 4-i) + ref
}
