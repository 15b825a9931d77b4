package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/healthquest/healthquest/internal/domain"
)

// ─── Points Ledger ──────────────────────────────────────────────────────────

const ledgerColumns = `id, ref, timestamp, kind, delta, description, balance`

// AppendLedger inserts an entry and returns it with its ID.
func (t *tx) AppendLedger(e domain.LedgerEntry) (domain.LedgerEntry, error) {
	result, err := t.exec(
		`INSERT INTO points_ledger (ref, timestamp, kind, delta, description, balance)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Ref, e.Timestamp.Unix(), string(e.Kind), e.Delta, e.Description, e.Balance,
	)
	if err != nil {
		return domain.LedgerEntry{}, err
	}
	e.ID, err = result.LastInsertId()
	if err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("last insert id: %w", err)
	}
	return e, nil
}

// LastLedgerEntry returns nil for an empty ledger.
func (t *tx) LastLedgerEntry() (*domain.LedgerEntry, error) {
	e, err := scanLedgerEntry(t.queryRow(
		`SELECT ` + ledgerColumns + ` FROM points_ledger ORDER BY id DESC LIMIT 1`,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// LedgerRange returns entries with from <= timestamp < to in insertion order.
func (t *tx) LedgerRange(from, to time.Time) ([]domain.LedgerEntry, error) {
	return t.ledgerEntries(
		`SELECT `+ledgerColumns+` FROM points_ledger
		 WHERE timestamp >= ? AND timestamp < ? ORDER BY id`,
		from.Unix(), to.Unix(),
	)
}

// RecentLedger returns up to limit entries, newest first.
func (t *tx) RecentLedger(limit int) ([]domain.LedgerEntry, error) {
	return t.ledgerEntries(
		`SELECT `+ledgerColumns+` FROM points_ledger ORDER BY id DESC LIMIT ?`, limit,
	)
}

func (t *tx) ledgerEntries(query string, args ...any) ([]domain.LedgerEntry, error) {
	rows, err := t.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanLedgerEntry(s scanner) (domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var ts int64
	var kind string
	if err := s.Scan(&e.ID, &e.Ref, &ts, &kind, &e.Delta, &e.Description, &e.Balance); err != nil {
		return domain.LedgerEntry{}, err
	}
	e.Timestamp = time.Unix(ts, 0)
	e.Kind = domain.EntryKind(kind)
	return e, nil
}
