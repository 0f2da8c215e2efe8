// Package common provides shared utilities across the application.
package common

import (
	"regexp"
	"strings"
)

// tickerPattern is the accepted symbol shape after uppercasing: 2-5
// alphanumeric characters.
var tickerPattern = regexp.MustCompile(`^[A-Za-z0-9]{2,5}$`)

// NormalizeTicker trims and uppercases a raw ticker string.
// Example: " aapl " -> "AAPL"
func NormalizeTicker(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidTicker reports whether the normalized form of raw is an acceptable
// ticker symbol. Validation happens on the normalized form so "aapl" and
// "AAPL" are equally valid.
func ValidTicker(raw string) bool {
	return tickerPattern.MatchString(NormalizeTicker(raw))
}
