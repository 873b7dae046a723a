package format

import "testing"

func TestCount(t *testing.T) {
	tests := []struct {
		input    int
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-12345, "-12,345"},
		{-999, "-999"},
		{20000, "20,000"},
	}
	for _, tt := range tests {
		if got := Count(tt.input); got != tt.expected {
			t.Errorf("Count(%d) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestTEUAndPercent(t *testing.T) {
	if got := TEU(10744); got != "10,744 TEU" {
		t.Errorf("TEU() = %q", got)
	}
	if got := Percent(42.5); got != "42.5%" {
		t.Errorf("Percent() = %q", got)
	}
	if got := Percent(100); got != "100.0%" {
		t.Errorf("Percent() = %q", got)
	}
	if got := Usage(338, 676, 50); got != "338/676 TEU (50.0%)" {
		t.Errorf("Usage() = %q", got)
	}
}
