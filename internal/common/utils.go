package common

import "strings"

// FirstNonEmpty returns the first value that is non-empty after trimming,
// or "" when every value is blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// OptionalString returns a pointer to s, or nil when s is blank.
func OptionalString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
