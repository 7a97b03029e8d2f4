package settings

import (
	"encoding/json"
	"strconv"
)

// Options is a flat set of preference values as they appear in the settings
// document. Numbers decoded from JSON arrive as float64; the typed getters
// accept any numeric representation.
type Options map[string]any

// Merge resolves layered options. Later layers override earlier ones key by
// key; nil layers are skipped. The result is a new map.
func Merge(layers ...Options) Options {
	out := Options{}
	for _, l := range layers {
		for k, v := range l {
			out[k] = v
		}
	}
	return out
}

// Clone returns a shallow copy of o.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	return Merge(o)
}

// String returns the value for key rendered as a string, or "".
func (o Options) String(key string) string {
	switch v := o[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// Float returns the numeric value for key, or def when absent or not numeric.
func (o Options) Float(key string, def float64) float64 {
	switch v := o[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// Int returns the numeric value for key truncated to an int.
func (o Options) Int(key string, def int) int {
	return int(o.Float(key, float64(def)))
}

// Bool returns the boolean value for key, or def.
func (o Options) Bool(key string, def bool) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Strings returns the value for key as a string slice.
func (o Options) Strings(key string) []string {
	switch v := o[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Without returns the entries of o whose value differs from the one in base,
// compared in their string form. Applied over base the result yields o again.
func (o Options) Without(base Options) Options {
	out := Options{}
	for k, v := range o {
		if _, ok := base[k]; ok && o.String(k) == base.String(k) {
			continue
		}
		out[k] = v
	}
	return out
}
