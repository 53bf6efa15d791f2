package model

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate parses a calendar date in the local zone.
func ParseDate(v string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(v), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", v)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
