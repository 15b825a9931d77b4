package domain

import (
	"errors"
	"testing"
	"time"
)

// ─── Date Tests ─────────────────────────────────────────────────────────────

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2026-02-28 ")
	if err != nil {
		t.Fatalf("ParseDate() error: %v", err)
	}
	if d != "2026-02-28" {
		t.Errorf("ParseDate() = %q", d)
	}
	if _, err := ParseDate("28/02/2026"); !errors.Is(err, ErrValidation) {
		t.Errorf("ParseDate(bad) error = %v, want ErrValidation", err)
	}
}

func TestDate_AddDays(t *testing.T) {
	tests := []struct {
		in   Date
		n    int
		want Date
	}{
		{"2026-02-28", 1, "2026-03-01"},
		{"2024-02-28", 1, "2024-02-29"},
		{"2026-01-01", -1, "2025-12-31"},
		{"2026-05-10", 0, "2026-05-10"},
	}
	for _, tt := range tests {
		if got := tt.in.AddDays(tt.n); got != tt.want {
			t.Errorf("%s.AddDays(%d) = %s, want %s", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestDate_Start(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	start := Date("2026-05-10").Start(loc)
	if start.Hour() != 0 || start.Location() != loc {
		t.Errorf("Start() = %v", start)
	}
	if DateOf(start) != "2026-05-10" {
		t.Errorf("DateOf(Start()) = %s", DateOf(start))
	}
	if got := Date("2026-05-10").Month(); got != "2026-05" {
		t.Errorf("Month() = %s", got)
	}
}
