package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "hello world",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "hello",
			limit:  10,
			expect: "hello",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "hello world",
			limit:  5,
			expect: "hello...",
		},
		{
			name:   "trims surrounding whitespace",
			input:  "  spaced  ",
			limit:  5,
			expect: "space...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestFormatUSD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount int
		expect string
	}{
		{0, "$0"},
		{950, "$950"},
		{70000, "$70,000"},
		{1250000, "$1,250,000"},
		{-90000, "-$90,000"},
	}

	for _, tt := range tests {
		if got := FormatUSD(tt.amount); got != tt.expect {
			t.Fatalf("FormatUSD(%d): expected %q, got %q", tt.amount, tt.expect, got)
		}
	}
}

func TestSalaryLine(t *testing.T) {
	t.Parallel()

	if got := SalaryLine(70000, 90000); got != "$70,000 - $90,000" {
		t.Fatalf("unexpected range line: %q", got)
	}
	if got := SalaryLine(95000, 0); got != "$95,000+" {
		t.Fatalf("unexpected open-ended line: %q", got)
	}
}
