package transform

import (
	"regexp"
	"strings"
)

var customerIDPattern = regexp.MustCompile(`C[0-9]+`)

// SanitizeCustomerID strips surrounding whitespace and extracts the first
// substring matching "C" followed by digits. No match yields nil, which the
// DQ gate later reports as a missing customer_id.
func SanitizeCustomerID(value *string) *string {
	if value == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*value)
	match := customerIDPattern.FindString(trimmed)
	if match == "" {
		return nil
	}
	return &match
}

// DefaultDiscount fills a missing discount with 0.
func DefaultDiscount(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}
