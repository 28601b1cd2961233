package utils

import (
	"strconv"
	"strings"
	"time"
)

// ParseDuration safely parses a duration string like "5m", falling back to
// the given default.
func ParseDuration(d string, fallback time.Duration) time.Duration {
	if d == "" {
		return fallback
	}
	duration, err := time.ParseDuration(d)
	if err != nil {
		return fallback
	}
	return duration
}

// ParseValue converts a CSV cell into the most specific type it can.
func ParseValue(s string) interface{} {
	s = strings.TrimSpace(s)

	// try int
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// Numeric safely converts supported numeric types to float64.
func Numeric(v interface{}) float64 {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case float64:
		return val
	case float32:
		return float64(val)
	default:
		return 0
	}
}
