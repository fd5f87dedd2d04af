// ABOUTME: Tolerant accessors for LMS result objects
// ABOUTME: Coerces the mixed numeric/string encodings LMS uses across versions
package slimrpc

import (
	"encoding/json"
	"strconv"
)

// String returns the value for key as a string. Numeric values are rendered
// in their JSON form, so `"playlist_tracks": 12` reads back as "12".
func (r Result) String(key string) (string, bool) {
	switch v := r[key].(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}

// Int returns the value for key as an int, accepting both number and string
// encodings. Fractional values are truncated toward zero, matching how LMS
// consumes them.
func (r Result) Int(key string) (int, bool) {
	f, ok := r.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Float returns the value for key as a float64, accepting both number and
// string encodings.
func (r Result) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Slice returns the value for key as a JSON array.
func (r Result) Slice(key string) ([]any, bool) {
	v, ok := r[key].([]any)
	return v, ok
}

// Map returns the value for key as a nested result object.
func (r Result) Map(key string) (Result, bool) {
	switch v := r[key].(type) {
	case map[string]any:
		return Result(v), true
	case Result:
		return v, true
	default:
		return nil, false
	}
}

// Maps returns the value for key as a list of nested result objects,
// skipping array members that are not objects. LMS *_loop values decode
// through here.
func (r Result) Maps(key string) ([]Result, bool) {
	raw, ok := r.Slice(key)
	if !ok {
		return nil, false
	}
	out := make([]Result, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Result(m))
		}
	}
	return out, true
}
