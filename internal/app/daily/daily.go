// Package daily manages the per-date diet and exercise logs.
package daily

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/healthquest/healthquest/internal/domain"
)

// Options are the selectable items per kind. With Strict set, items outside
// the lists are rejected.
type Options struct {
	Diet     []string
	Exercise []string
	Strict   bool
}

func (o Options) allowed(kind domain.ItemKind) []string {
	if kind == domain.ItemExercise {
		return o.Exercise
	}
	return o.Diet
}

// Log records items and completion for dates.
type Log struct {
	store domain.DailyLogStore
	opts  Options
}

// New wraps a daily log store.
func New(store domain.DailyLogStore, opts Options) *Log {
	return &Log{store: store, opts: opts}
}

// RecordDiet merges items into date's diet set and returns the updated set.
func (l *Log) RecordDiet(date domain.Date, items []string) ([]string, error) {
	return l.record(date, domain.ItemDiet, items)
}

// RecordExercise merges items into date's exercise set and returns the updated set.
func (l *Log) RecordExercise(date domain.Date, items []string) ([]string, error) {
	return l.record(date, domain.ItemExercise, items)
}

func (l *Log) record(date domain.Date, kind domain.ItemKind, items []string) ([]string, error) {
	items = Normalize(items)
	if len(items) == 0 {
		return nil, domain.Errorf(domain.ErrValidation, "select at least one %s item", kind)
	}
	if l.opts.Strict {
		allowed := l.opts.allowed(kind)
		for _, it := range items {
			if !slices.Contains(allowed, it) {
				return nil, domain.Errorf(domain.ErrValidation, "unknown %s item %q", kind, it)
			}
		}
	}

	cur, err := l.store.DailyLog(date)
	if err != nil {
		return nil, fmt.Errorf("load daily log %s: %w", date, err)
	}
	if cur != nil && cur.Completed {
		return nil, domain.Errorf(domain.ErrState, "%s is already completed", date)
	}

	if err := l.store.AddDailyItems(date, kind, items); err != nil {
		return nil, fmt.Errorf("add %s items: %w", kind, err)
	}
	updated, err := l.Get(date)
	if err != nil {
		return nil, err
	}
	return updated.Items(kind), nil
}

// MarkCompleted sets date's completed flag. It reports whether the flag
// changed; a second call is a no-op.
func (l *Log) MarkCompleted(date domain.Date, at time.Time) (bool, error) {
	cur, err := l.store.DailyLog(date)
	if err != nil {
		return false, fmt.Errorf("load daily log %s: %w", date, err)
	}
	if cur != nil && cur.Completed {
		return false, nil
	}
	if err := l.store.MarkDailyCompleted(date, at); err != nil {
		return false, fmt.Errorf("mark %s completed: %w", date, err)
	}
	return true, nil
}

// Get returns date's log, or an empty record if none exists.
func (l *Log) Get(date domain.Date) (domain.DailyLog, error) {
	cur, err := l.store.DailyLog(date)
	if err != nil {
		return domain.DailyLog{}, fmt.Errorf("load daily log %s: %w", date, err)
	}
	if cur == nil {
		return domain.DailyLog{Date: date, Diet: []string{}, Exercise: []string{}}, nil
	}
	return *cur, nil
}

// All returns every log ordered by date.
func (l *Log) All() ([]domain.DailyLog, error) {
	logs, err := l.store.DailyLogs()
	if err != nil {
		return nil, fmt.Errorf("load daily logs: %w", err)
	}
	return logs, nil
}

// Normalize trims items, drops blanks and duplicates, and sorts the result.
func Normalize(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it != "" {
			out = append(out, it)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
