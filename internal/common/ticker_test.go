package common

import (
	"testing"
)

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"aapl", "AAPL"},
		{"  msft  ", "MSFT"},
		{"GOOG", "GOOG"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeTicker(tt.input); got != tt.want {
				t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidTicker(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		// Acceptable symbols
		{"AAPL", true},
		{"aapl", true},
		{"GM", true},
		{"GOOGL", true},
		{"BRK2", true},
		{"  tsla ", true},

		// Too short / too long
		{"A", false},
		{"TOOLONG", false},
		{"", false},

		// Non-alphanumeric characters
		{"BRK.B", false},
		{"AA PL", false},
		{"AAPL!", false},
		{"ASX:GNP", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ValidTicker(tt.input); got != tt.want {
				t.Errorf("ValidTicker(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
