// Package points implements the append-only points ledger.
// Every movement is one immutable entry carrying the running balance, so the
// current total is always the last entry's balance and never negative.
package points

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/healthquest/healthquest/internal/domain"
)

// Ledger appends and reads points entries within one store transaction.
type Ledger struct {
	store domain.LedgerStore
}

// New wraps a ledger store.
func New(store domain.LedgerStore) *Ledger {
	return &Ledger{store: store}
}

// CurrentTotal returns the last entry's balance, or 0 for an empty ledger.
func (l *Ledger) CurrentTotal() (int64, error) {
	last, err := l.store.LastLedgerEntry()
	if err != nil {
		return 0, fmt.Errorf("last ledger entry: %w", err)
	}
	if last == nil {
		return 0, nil
	}
	return last.Balance, nil
}

// Append records delta and returns the stored entry; its Balance is the new
// total. A zero delta is rejected. A delta that would take the total below
// zero fails with ErrInsufficientPoints and appends nothing.
func (l *Ledger) Append(kind domain.EntryKind, delta int64, description string, at time.Time) (domain.LedgerEntry, error) {
	if delta == 0 {
		return domain.LedgerEntry{}, domain.Errorf(domain.ErrValidation, "points delta must be non-zero")
	}

	total, err := l.CurrentTotal()
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	if total+delta < 0 {
		return domain.LedgerEntry{}, domain.Errorf(domain.ErrInsufficientPoints,
			"insufficient points: have %d, need %d", total, -delta)
	}

	entry, err := l.store.AppendLedger(domain.LedgerEntry{
		Ref:         uuid.NewString(),
		Timestamp:   at,
		Kind:        kind,
		Delta:       delta,
		Description: description,
		Balance:     total + delta,
	})
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("append ledger entry: %w", err)
	}
	return entry, nil
}

// EntriesOn returns the entries whose timestamp falls on date in loc,
// in insertion order.
func (l *Ledger) EntriesOn(date domain.Date, loc *time.Location) ([]domain.LedgerEntry, error) {
	from := date.Start(loc)
	to := date.AddDays(1).Start(loc)
	entries, err := l.store.LedgerRange(from, to)
	if err != nil {
		return nil, fmt.Errorf("ledger range %s: %w", date, err)
	}
	return entries, nil
}

// History returns up to limit entries, newest first.
func (l *Ledger) History(limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return l.store.RecentLedger(limit)
}

// Sum adds the deltas of entries. Used to verify a ledger replays to its
// recorded balance.
func Sum(entries []domain.LedgerEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Delta
	}
	return total
}

// Verify replays the whole ledger and checks every recorded balance against
// the running sum of deltas, then checks the current total against Sum.
func (l *Ledger) Verify() error {
	entries, err := l.store.RecentLedger(math.MaxInt32)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	slices.Reverse(entries)

	var running int64
	for _, e := range entries {
		running += e.Delta
		if running < 0 {
			return fmt.Errorf("ledger entry %d: total went negative (%d)", e.ID, running)
		}
		if e.Balance != running {
			return fmt.Errorf("ledger entry %d: recorded balance %d, replayed %d", e.ID, e.Balance, running)
		}
	}

	total, err := l.CurrentTotal()
	if err != nil {
		return err
	}
	if sum := Sum(entries); sum != total {
		return fmt.Errorf("ledger total %d, deltas sum to %d", total, sum)
	}
	return nil
}
