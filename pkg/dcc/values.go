package dcc

import (
	"fmt"
	"strconv"
)

// The DCC-JSON object is untyped: it may come straight from the mapping
// engine (map[string]any with []map[string]any arrays) or from a JSON
// round trip after human editing (map[string]any with []any arrays).
// These accessors normalize both shapes and never panic on surprises.

// getMap returns the nested object at key, or nil.
func getMap(obj map[string]any, key string) map[string]any {
	if obj == nil {
		return nil
	}
	m, _ := obj[key].(map[string]any)
	return m
}

// getObjects returns the array of objects at key, tolerating both
// []map[string]any and []any element shapes. Non-object elements are
// skipped.
func getObjects(obj map[string]any, key string) []map[string]any {
	if obj == nil {
		return nil
	}

	switch v := obj[key].(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// getString returns the value at key rendered as a string. Numbers and
// booleans are stringified; objects and arrays yield "".
func getString(obj map[string]any, key string) string {
	if obj == nil {
		return ""
	}

	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// getBool returns the boolean at key; absent or non-boolean is false.
func getBool(obj map[string]any, key string) bool {
	if obj == nil {
		return false
	}
	b, _ := obj[key].(bool)
	return b
}

// numberText renders a numeric field as its literal text representation
// with no added formatting or rounding. Numeric strings pass through
// unchanged. The second return reports whether a numeric value was
// present.
func numberText(v any) (string, bool) {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case int:
		return strconv.Itoa(n), true
	case string:
		if _, err := strconv.ParseFloat(n, 64); err == nil {
			return n, true
		}
		return "", false
	default:
		return "", false
	}
}

// fieldNumber reads a numeric field from an object via numberText.
func fieldNumber(obj map[string]any, key string) (string, bool) {
	if obj == nil {
		return "", false
	}
	v, ok := obj[key]
	if !ok {
		return "", false
	}
	return numberText(v)
}

// absNumberText renders the absolute magnitude of a numeric field; used
// for deriving symmetric acceptance limits.
func absNumberText(v any) (string, string, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return "", "", false
		}
		f = parsed
	default:
		return "", "", false
	}

	if f < 0 {
		f = -f
	}
	upper := strconv.FormatFloat(f, 'g', -1, 64)
	lower := strconv.FormatFloat(-f, 'g', -1, 64)
	return lower, upper, true
}

// anyText renders any scalar as display text; used for statement and
// SOP entries that may be plain strings.
func anyText(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64, int64, int, bool:
		return fmt.Sprintf("%v", s)
	default:
		return ""
	}
}
