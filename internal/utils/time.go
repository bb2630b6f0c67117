package utils

import (
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
)

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS" in local timezone.
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format(layoutDateTime)
}

// DateOnly trims an ISO timestamp or date string to YYYY-MM-DD.
func DateOnly(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= len(layoutDate) {
		return v[:len(layoutDate)]
	}
	return v
}

// TimeHM trims "HH:MM:SS" to "HH:MM".
func TimeHM(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 5 {
		return v[:5]
	}
	return v
}
