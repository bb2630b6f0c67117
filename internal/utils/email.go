package utils

import (
	"net/url"
	"strings"
)

// EmailFormat tells which rule NormalizeEmail applied.
type EmailFormat string

const (
	EmailEmpty         EmailFormat = "empty"
	EmailPlain         EmailFormat = "plain"
	EmailEncoded       EmailFormat = "encoded"
	EmailDoubleEncoded EmailFormat = "double_encoded"
	EmailUnknown       EmailFormat = "unknown"
)

const (
	encodedAt       = "%40"
	doubleEncodedAt = "%2540"
)

// NormalizeEmail decodes contact emails that arrive plain, percent-encoded once or twice.
// Rules in order: literal "@" -> unchanged; "%40" -> decode once, again if still encoded;
// "%2540" -> decode twice; anything else -> unchanged (EmailUnknown, caller logs it).
// A decode failure returns the input as-is.
func NormalizeEmail(raw string) (string, EmailFormat) {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	switch {
	case s == "":
		return s, EmailEmpty
	case strings.Contains(s, "@"):
		return s, EmailPlain
	case strings.Contains(lower, encodedAt):
		once, err := url.PathUnescape(s)
		if err != nil {
			return s, EmailUnknown
		}
		if strings.Contains(strings.ToLower(once), encodedAt) {
			twice, err := url.PathUnescape(once)
			if err != nil {
				return s, EmailUnknown
			}
			return twice, EmailDoubleEncoded
		}
		return once, EmailEncoded
	case strings.Contains(lower, doubleEncodedAt):
		once, err := url.PathUnescape(s)
		if err != nil {
			return s, EmailUnknown
		}
		twice, err := url.PathUnescape(once)
		if err != nil {
			return s, EmailUnknown
		}
		return twice, EmailDoubleEncoded
	}
	return s, EmailUnknown
}

// NormalizePhone strips whitespace from phone numbers.
func NormalizePhone(raw string) string {
	return strings.Join(strings.Fields(raw), "")
}

// EmailSelfTest is used by the health endpoint to prove the normalizer still decodes
// the encodings seen in production.
func EmailSelfTest() (bool, []map[string]string) {
	cases := []struct{ in, want string }{
		{"name@domain.com", "name@domain.com"},
		{"name%40domain.com", "name@domain.com"},
		{"name%2540domain.com", "name@domain.com"},
	}
	ok := true
	out := make([]map[string]string, 0, len(cases))
	for _, c := range cases {
		got, format := NormalizeEmail(c.in)
		pass := got == c.want
		ok = ok && pass
		status := "ok"
		if !pass {
			status = "mismatch"
		}
		out = append(out, map[string]string{
			"input":  c.in,
			"output": got,
			"format": string(format),
			"status": status,
		})
	}
	return ok, out
}
