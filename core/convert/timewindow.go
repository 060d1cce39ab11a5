package convert

import (
	"strconv"
	"strings"
)

// ParseTimeWindow turns a user supplied timestamp into seconds.
// Accepted shapes: a bare non-negative integer ("90"), "mm:ss" or "hh:mm:ss".
// The second return value is false when the input is empty or malformed;
// callers treat that as "not provided" rather than an error.
func ParseTimeWindow(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, false
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}

// FormatDuration renders seconds as "m:ss" or "h:mm:ss", the shape search
// results carry their duration in.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return strconv.Itoa(h) + ":" + pad2(m) + ":" + pad2(s)
	}
	return strconv.Itoa(m) + ":" + pad2(s)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
