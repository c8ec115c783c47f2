package engine

import (
	"regexp"
	"strconv"
)

// datePrefixPattern matches the leading YYYY-MM-DD component of an
// ISO-8601-like datetime string.
var datePrefixPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// convertNumber parses a locale-invariant floating point number.
// Parse failure reports false so the caller omits the field instead of
// propagating a NaN sentinel.
func convertNumber(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// convertInteger parses a locale-invariant integer. Values written with
// a decimal point (a common certificate quirk, "10.0") are accepted and
// truncated.
func convertInteger(raw string) (int64, bool) {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

// convertBoolean maps the raw value to a boolean: only "true" and "1"
// are true, everything else is false. The empty-value short circuit in
// the evaluator runs first, so an absent value never reaches this.
func convertBoolean(raw string) bool {
	return raw == "true" || raw == "1"
}

// convertDate truncates an ISO-8601-like datetime to its leading
// YYYY-MM-DD date. Input that does not start with a date passes through
// unchanged; date handling is lenient, not strict.
func convertDate(raw string) string {
	if m := datePrefixPattern.FindString(raw); m != "" {
		return m
	}
	return raw
}
