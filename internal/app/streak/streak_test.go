package streak

import (
	"testing"

	"github.com/healthquest/healthquest/internal/domain"
)

func days(dates ...domain.Date) map[domain.Date]bool {
	set := make(map[domain.Date]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return set
}

// run returns n consecutive dates ending at last.
func run(last domain.Date, n int) []domain.Date {
	out := make([]domain.Date, n)
	for i := 0; i < n; i++ {
		out[i] = last.AddDays(-(n - 1 - i))
	}
	return out
}

func TestCurrent(t *testing.T) {
	today := domain.Date("2026-03-10")
	tests := []struct {
		name      string
		completed map[domain.Date]bool
		want      int
	}{
		{"nothing completed", days(), 0},
		{"only today", days(today), 1},
		{"three ending today", days(run(today, 3)...), 3},
		{"today open, yesterday run", days(run(today.AddDays(-1), 4)...), 4},
		{"gap breaks", days("2026-03-10", "2026-03-09", "2026-03-07"), 2},
		{"latest completed long ago", days("2026-02-01", "2026-02-02"), 2},
		{"future dates ignored", days("2026-03-11", "2026-03-12"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Current(tt.completed, today); got != tt.want {
				t.Errorf("Current() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEndingAt(t *testing.T) {
	c := days("2026-03-01", "2026-03-02", "2026-03-03", "2026-03-05")
	if got := EndingAt(c, "2026-03-03"); got != 3 {
		t.Errorf("EndingAt(03) = %d, want 3", got)
	}
	if got := EndingAt(c, "2026-03-04"); got != 0 {
		t.Errorf("EndingAt(04) = %d, want 0", got)
	}
	if got := EndingAt(c, "2026-03-05"); got != 1 {
		t.Errorf("EndingAt(05) = %d, want 1", got)
	}
}

func TestEndingAt_AcrossMonthAndYear(t *testing.T) {
	c := days(run("2026-01-02", 5)...)
	if got := EndingAt(c, "2026-01-02"); got != 5 {
		t.Errorf("EndingAt across new year = %d, want 5", got)
	}
}

func TestLongest(t *testing.T) {
	c := days("2026-01-01", "2026-01-02", "2026-01-04", "2026-01-05", "2026-01-06", "2026-01-08")
	if got := Longest(c); got != 3 {
		t.Errorf("Longest() = %d, want 3", got)
	}
	if got := Longest(days()); got != 0 {
		t.Errorf("Longest(empty) = %d, want 0", got)
	}
}

func TestBonusesAt_ExactThresholdOnly(t *testing.T) {
	rules := DefaultBonuses()
	for s := 1; s <= 40; s++ {
		got := BonusesAt(s, rules)
		switch s {
		case 7, 30:
			if len(got) != 1 || got[0].Points != 10 {
				t.Errorf("BonusesAt(%d) = %+v, want one +10", s, got)
			}
		default:
			if len(got) != 0 {
				t.Errorf("BonusesAt(%d) = %+v, want none", s, got)
			}
		}
	}
}

func TestValidateBonuses(t *testing.T) {
	tests := []struct {
		name  string
		rules []Bonus
		ok    bool
	}{
		{"default", DefaultBonuses(), true},
		{"empty", nil, true},
		{"zero days", []Bonus{{Days: 0, Points: 5}}, false},
		{"zero points", []Bonus{{Days: 3, Points: 0}}, false},
		{"duplicate", []Bonus{{Days: 7, Points: 5}, {Days: 7, Points: 10}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateBonuses(tt.rules); (err == nil) != tt.ok {
				t.Errorf("ValidateBonuses() error = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestCompleted_SkipsOpenDays(t *testing.T) {
	logs := []domain.DailyLog{
		{Date: "2026-03-01", Completed: true},
		{Date: "2026-03-02", Diet: []string{"fruit"}},
	}
	c := Completed(logs)
	if !c["2026-03-01"] || c["2026-03-02"] {
		t.Errorf("Completed() = %v", c)
	}
}
