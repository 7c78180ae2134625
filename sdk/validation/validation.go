// Package validation holds small pointer and value helpers used when
// marshaling between wire models and repository models.
package validation

import "time"

func StringPtr(s string) *string {
	return &s
}

func BoolPtr(b bool) *bool {
	return &b
}

// FormatTimeToString renders a timestamp in the stable wire form.
func FormatTimeToString(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
