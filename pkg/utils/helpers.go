package utils

import (
	"strconv"
	"strings"
	"time"
)

// ParseDuration safely parses a duration string like "5m", returning
// fallback when d is empty or malformed.
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

// ParseNumber parses a numeric CSV field. Surrounding whitespace is ignored.
func ParseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// FormatValue renders a statistic for the tab-separated output files.
// The shortest representation that round-trips is used so re-runs are
// byte-identical.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
