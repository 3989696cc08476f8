package main

import (
	"fmt"
	"strings"
	"time"
)

var dropTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDropTime parses an operator-supplied drop time. Accepted forms, all
// read as UTC unless the string carries its own zone:
//
//	2026-09-01T16:00:00Z
//	2026-09-01 16:00:00
//	2026-09-01 16:00
//	2026-09-01 16:00 UTC
func ParseDropTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "UTC"))

	for _, layout := range dropTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid drop time %q, use YYYY-MM-DD HH:MM (UTC)", s)
}
