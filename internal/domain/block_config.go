package domain

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlockConfig is the loosely typed payload of a workout block
// (sets, reps, movements, minutes, content, ...). Values may come from JSON
// (float64, []any) or from BSON (int32, primitive.A, primitive.D), so reads go
// through the accessors below.
type BlockConfig map[string]any

// Has reports whether key is present with a non-empty value.
func (c BlockConfig) Has(key string) bool {
	v, ok := c[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// String renders the value at key as text. Numbers are formatted without
// trailing zeros so that {"reps": 10} and {"reps": "10"} read the same.
func (c BlockConfig) String(key string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int, int32, int64:
		return fmt.Sprintf("%d", t)
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}

// Float returns the numeric value at key; numeric strings are parsed.
func (c BlockConfig) Float(key string) (float64, bool) {
	return toFloat(c[key])
}

// Int truncates the numeric value at key.
func (c BlockConfig) Int(key string) (int, bool) {
	f, ok := toFloat(c[key])
	return int(f), ok
}

// Movements returns the movement names, accepting both plain strings and
// objects with a "name" field. Entries without a usable name are returned as
// empty strings so callers can detect them.
func (c BlockConfig) Movements() []string {
	items := asSlice(c["movements"])
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch m := it.(type) {
		case string:
			out = append(out, strings.TrimSpace(m))
		default:
			name, _ := AsMap(m)["name"].(string)
			out = append(out, strings.TrimSpace(name))
		}
	}
	return out
}

// Merge returns a copy of c with defaults applied for missing keys.
func (c BlockConfig) Merge(defaults map[string]any) BlockConfig {
	out := BlockConfig{}
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range c {
		out[k] = v
	}
	return out
}

// AsMap normalises the map-like shapes JSON and BSON decoding produce.
func AsMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case primitive.M:
		return m
	case primitive.D:
		out := make(map[string]any, len(m))
		for _, e := range m {
			out[e.Key] = e.Value
		}
		return out
	}
	return nil
}

func asSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case primitive.A:
		return s
	case []string:
		out := make([]any, len(s))
		for i, x := range s {
			out[i] = x
		}
		return out
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(n), "%")), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
