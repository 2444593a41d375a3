package config

import (
	"testing"
	"time"
)

func TestParseDurationWithShorthand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
	}{
		{name: "go duration", input: "90m", expected: 90 * time.Minute},
		{name: "hours", input: "1h", expected: time.Hour},
		{name: "days", input: "7d", expected: 7 * 24 * time.Hour},
		{name: "weeks", input: "2w", expected: 14 * 24 * time.Hour},
		{name: "uppercase day", input: "1D", expected: 24 * time.Hour},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := parseDurationWithShorthand(tc.input)
			if got != tc.expected {
				t.Fatalf("parseDurationWithShorthand(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}
