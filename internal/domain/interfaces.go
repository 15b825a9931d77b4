package domain

import (
	"context"
	"time"
)

// ─── Store Interfaces ───────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.
// Every method runs inside one transaction handed out by Store.

// ProfileStore persists the profile and weight history.
type ProfileStore interface {
	// Profile returns nil if setup has not happened yet.
	Profile() (*Profile, error)
	InsertProfile(p Profile) error
	UpdateProfileHeight(height float64) error

	// PutWeight inserts an entry or replaces the one with the same date.
	PutWeight(e WeightEntry) error
	// WeightHistory returns entries ordered by date ascending.
	WeightHistory() ([]WeightEntry, error)
}

// DailyLogStore persists per-date logs.
type DailyLogStore interface {
	// DailyLog returns nil if no log exists for date.
	DailyLog(date Date) (*DailyLog, error)
	// AddDailyItems creates the log if needed and adds items to the set.
	AddDailyItems(date Date, kind ItemKind, items []string) error
	// MarkDailyCompleted creates the log if needed and sets completed.
	MarkDailyCompleted(date Date, at time.Time) error
	// DailyLogs returns all logs ordered by date ascending.
	DailyLogs() ([]DailyLog, error)
}

// LedgerStore persists the append-only points ledger.
type LedgerStore interface {
	// AppendLedger assigns the ID and returns the stored entry.
	AppendLedger(e LedgerEntry) (LedgerEntry, error)
	// LastLedgerEntry returns nil for an empty ledger.
	LastLedgerEntry() (*LedgerEntry, error)
	// LedgerRange returns entries with from <= timestamp < to in insertion order.
	LedgerRange(from, to time.Time) ([]LedgerEntry, error)
	// RecentLedger returns up to limit entries, newest first.
	RecentLedger(limit int) ([]LedgerEntry, error)
}

// TaskStore persists dynamic tasks.
type TaskStore interface {
	// InsertTask assigns the next unique ID and returns the stored task.
	InsertTask(t DynamicTask) (DynamicTask, error)
	// Task returns nil if id is unknown.
	Task(id int64) (*DynamicTask, error)
	UpdateTask(t DynamicTask) error
	// Tasks returns every task ordered by ID.
	Tasks() ([]DynamicTask, error)
}

// Tx is the full set of repositories scoped to one transaction.
type Tx interface {
	ProfileStore
	DailyLogStore
	LedgerStore
	TaskStore
}

// Store hands out transactions over the persisted record.
// Update commits only if fn returns nil; otherwise nothing changes.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
