// Package streak derives completion streaks from the daily logs.
// A day counts if its log is completed; a date with no log breaks the run.
// Streaks are never stored; every read recomputes them.
package streak

import (
	"fmt"
	"sort"

	"github.com/healthquest/healthquest/internal/domain"
)

// Bonus is a one-time award paid when the streak reaches exactly Days.
type Bonus struct {
	Days   int   `toml:"days" json:"days"`
	Points int64 `toml:"bonus" json:"bonus"`
}

// DefaultBonuses pays +10 at 7 days and +10 more at 30.
func DefaultBonuses() []Bonus {
	return []Bonus{
		{Days: 7, Points: 10},
		{Days: 30, Points: 10},
	}
}

// ValidateBonuses rejects non-positive thresholds or awards and duplicates.
func ValidateBonuses(bonuses []Bonus) error {
	seen := make(map[int]bool, len(bonuses))
	for _, b := range bonuses {
		if b.Days <= 0 {
			return fmt.Errorf("streak bonus days must be positive, got %d", b.Days)
		}
		if b.Points <= 0 {
			return fmt.Errorf("streak bonus for %d days must be positive, got %d", b.Days, b.Points)
		}
		if seen[b.Days] {
			return fmt.Errorf("duplicate streak bonus for %d days", b.Days)
		}
		seen[b.Days] = true
	}
	return nil
}

// Completed returns the set of completed dates in logs.
func Completed(logs []domain.DailyLog) map[domain.Date]bool {
	set := make(map[domain.Date]bool, len(logs))
	for _, l := range logs {
		if l.Completed {
			set[l.Date] = true
		}
	}
	return set
}

// EndingAt counts consecutive completed dates walking back from date.
// Returns 0 if date itself is not completed.
func EndingAt(completed map[domain.Date]bool, date domain.Date) int {
	n := 0
	for d := date; completed[d]; d = d.AddDays(-1) {
		n++
	}
	return n
}

// Current anchors on today if today is completed, otherwise on the most
// recent completed date before today, and counts back from there.
func Current(completed map[domain.Date]bool, today domain.Date) int {
	if completed[today] {
		return EndingAt(completed, today)
	}
	var anchor domain.Date
	for d := range completed {
		if d < today && d > anchor {
			anchor = d
		}
	}
	if anchor.IsZero() {
		return 0
	}
	return EndingAt(completed, anchor)
}

// Longest returns the longest run of consecutive completed dates.
func Longest(completed map[domain.Date]bool) int {
	dates := make([]domain.Date, 0, len(completed))
	for d := range completed {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	best, run := 0, 0
	for i, d := range dates {
		if i > 0 && dates[i-1].AddDays(1) == d {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// BonusesAt returns the bonuses whose threshold equals streak exactly.
func BonusesAt(streak int, rules []Bonus) []Bonus {
	var out []Bonus
	for _, b := range rules {
		if b.Days == streak {
			out = append(out, b)
		}
	}
	return out
}

// Tracker reads streaks from a daily log store.
type Tracker struct {
	store domain.DailyLogStore
}

// NewTracker wraps a daily log store.
func NewTracker(store domain.DailyLogStore) *Tracker {
	return &Tracker{store: store}
}

// Summary is the current and longest streak.
type Summary struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// At computes the streak summary as of today.
func (t *Tracker) At(today domain.Date) (Summary, error) {
	logs, err := t.store.DailyLogs()
	if err != nil {
		return Summary{}, fmt.Errorf("load daily logs: %w", err)
	}
	completed := Completed(logs)
	return Summary{
		Current: Current(completed, today),
		Longest: Longest(completed),
	}, nil
}

// EndingAt computes the streak that ends at date.
func (t *Tracker) EndingAt(date domain.Date) (int, error) {
	logs, err := t.store.DailyLogs()
	if err != nil {
		return 0, fmt.Errorf("load daily logs: %w", err)
	}
	return EndingAt(Completed(logs), date), nil
}
