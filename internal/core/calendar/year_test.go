package calendar

import (
	"testing"
	"time"
)

func TestNormalizeYear(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"gregorian stays", 2025, 2025},
		{"buddhist era converts", 2568, 2025},
		{"buddhist era boundary", 2400, 1857},
		{"just below threshold", 2399, 2399},
		{"old gregorian", 1999, 1999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeYear(tt.in); got != tt.want {
				t.Errorf("NormalizeYear(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestGregorianYear(t *testing.T) {
	be := time.Date(2568, 7, 1, 0, 0, 0, 0, time.UTC)
	if got := GregorianYear(be); got != 2025 {
		t.Errorf("expected 2025, got %d", got)
	}

	ce := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	if got := GregorianYear(ce); got != 2025 {
		t.Errorf("expected 2025, got %d", got)
	}
}
