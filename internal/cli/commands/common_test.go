package commands

import (
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input       string
		want        int64
		shouldError bool
	}{
		{input: "100", want: 100_00},
		{input: "100.50", want: 100_50},
		{input: "0.01", want: 1},
		{input: ".50", want: 50},
		{input: "100.5", want: 100_50},
		{input: "$25", want: 25_00},
		{input: " 10.00 ", want: 10_00},
		{input: "", shouldError: true},
		{input: "0", shouldError: true},
		{input: "0.00", shouldError: true},
		{input: "-5", shouldError: true},
		{input: "1.234", shouldError: true},
		{input: "abc", shouldError: true},
		{input: "10.x5", shouldError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.shouldError {
				if err == nil {
					t.Errorf("parseAmount(%q) = %d, expected error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAmount(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseAmount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{cents: 100_00, want: "$100.00"},
		{cents: 1, want: "$0.01"},
		{cents: 0, want: "$0.00"},
		{cents: -50_25, want: "-$50.25"},
		{cents: 999_99, want: "$999.99"},
	}

	for _, tt := range tests {
		if got := formatCents(tt.cents); got != tt.want {
			t.Errorf("formatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
