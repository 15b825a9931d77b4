package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/healthquest/healthquest/internal/domain"
)

// ─── Daily Log Repository ───────────────────────────────────────────────────

// DailyLog returns nil if no log exists for date.
func (t *tx) DailyLog(date domain.Date) (*domain.DailyLog, error) {
	l := domain.DailyLog{Date: date}
	var completedAt sql.NullInt64
	err := t.queryRow(
		`SELECT completed, completed_at FROM daily_logs WHERE date = ?`, string(date),
	).Scan(&l.Completed, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l.CompletedAt = fromNullUnix(completedAt)

	rows, err := t.query(
		`SELECT kind, item FROM daily_items WHERE date = ? ORDER BY kind, item`, string(date),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scanItem(rows, &l); err != nil {
			return nil, err
		}
	}
	return &l, rows.Err()
}

func scanItem(s scanner, l *domain.DailyLog) error {
	var kind, item string
	if err := s.Scan(&kind, &item); err != nil {
		return err
	}
	switch domain.ItemKind(kind) {
	case domain.ItemDiet:
		l.Diet = append(l.Diet, item)
	case domain.ItemExercise:
		l.Exercise = append(l.Exercise, item)
	}
	return nil
}

func (t *tx) ensureDay(date domain.Date) error {
	_, err := t.exec(`INSERT OR IGNORE INTO daily_logs (date) VALUES (?)`, string(date))
	return err
}

// AddDailyItems creates the log if needed and adds items to the set.
// Items already present are left untouched.
func (t *tx) AddDailyItems(date domain.Date, kind domain.ItemKind, items []string) error {
	if err := t.ensureDay(date); err != nil {
		return err
	}
	now := time.Now().Unix()
	for _, item := range items {
		if _, err := t.exec(
			`INSERT OR IGNORE INTO daily_items (date, kind, item, added_at) VALUES (?, ?, ?, ?)`,
			string(date), string(kind), item, now,
		); err != nil {
			return err
		}
	}
	return nil
}

// MarkDailyCompleted creates the log if needed and sets completed.
// completed_at keeps its first value.
func (t *tx) MarkDailyCompleted(date domain.Date, at time.Time) error {
	if err := t.ensureDay(date); err != nil {
		return err
	}
	_, err := t.exec(
		`UPDATE daily_logs SET completed = 1, completed_at = ? WHERE date = ? AND completed = 0`,
		nullableUnix(at), string(date),
	)
	return err
}

// DailyLogs returns all logs ordered by date ascending.
func (t *tx) DailyLogs() ([]domain.DailyLog, error) {
	rows, err := t.query(`SELECT date, completed, completed_at FROM daily_logs ORDER BY date`)
	if err != nil {
		return nil, err
	}
	var logs []domain.DailyLog
	index := map[domain.Date]int{}
	for rows.Next() {
		var l domain.DailyLog
		var date string
		var completedAt sql.NullInt64
		if err := rows.Scan(&date, &l.Completed, &completedAt); err != nil {
			rows.Close()
			return nil, err
		}
		l.Date = domain.Date(date)
		l.CompletedAt = fromNullUnix(completedAt)
		index[l.Date] = len(logs)
		logs = append(logs, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := t.query(`SELECT date, kind, item FROM daily_items ORDER BY date, kind, item`)
	if err != nil {
		return nil, err
	}
	defer items.Close()
	for items.Next() {
		var date, kind, item string
		if err := items.Scan(&date, &kind, &item); err != nil {
			return nil, err
		}
		i, ok := index[domain.Date(date)]
		if !ok {
			continue
		}
		switch domain.ItemKind(kind) {
		case domain.ItemDiet:
			logs[i].Diet = append(logs[i].Diet, item)
		case domain.ItemExercise:
			logs[i].Exercise = append(logs[i].Exercise, item)
		}
	}
	return logs, items.Err()
}
