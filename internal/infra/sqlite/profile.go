package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/healthquest/healthquest/internal/domain"
)

// ─── Profile Repository ─────────────────────────────────────────────────────

// Profile returns nil if setup has not happened yet.
func (t *tx) Profile() (*domain.Profile, error) {
	var p domain.Profile
	var gender, birth string
	var created int64
	err := t.queryRow(
		`SELECT name, gender, birthdate, height, initial_weight, target_weight, created_at
		 FROM profile WHERE id = 1`,
	).Scan(&p.Name, &gender, &birth, &p.Height, &p.InitialWeight, &p.TargetWeight, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Gender = domain.Gender(gender)
	p.Birthdate = domain.Date(birth)
	p.CreatedAt = time.Unix(created, 0)
	return &p, nil
}

// InsertProfile stores the one profile. A second insert is a state error.
func (t *tx) InsertProfile(p domain.Profile) error {
	existing, err := t.Profile()
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.Errorf(domain.ErrState, "profile already exists")
	}
	_, err = t.exec(
		`INSERT INTO profile (id, name, gender, birthdate, height, initial_weight, target_weight, created_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, string(p.Gender), string(p.Birthdate), p.Height,
		p.InitialWeight, p.TargetWeight, p.CreatedAt.Unix(),
	)
	return err
}

// UpdateProfileHeight records the latest height.
func (t *tx) UpdateProfileHeight(height float64) error {
	result, err := t.exec(`UPDATE profile SET height = ? WHERE id = 1`, height)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.Errorf(domain.ErrNotFound, "profile not found")
	}
	return nil
}

// ─── Weight History ─────────────────────────────────────────────────────────

// PutWeight inserts an entry or replaces the one with the same date.
func (t *tx) PutWeight(e domain.WeightEntry) error {
	_, err := t.exec(
		`INSERT INTO weight_history (date, weight, height) VALUES (?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET weight=excluded.weight, height=excluded.height`,
		string(e.Date), e.Weight, e.Height,
	)
	if err != nil {
		return fmt.Errorf("put weight %s: %w", e.Date, err)
	}
	return nil
}

// WeightHistory returns entries ordered by date ascending.
func (t *tx) WeightHistory() ([]domain.WeightEntry, error) {
	rows, err := t.query(`SELECT date, weight, height FROM weight_history ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WeightEntry
	for rows.Next() {
		var e domain.WeightEntry
		var date string
		if err := rows.Scan(&date, &e.Weight, &e.Height); err != nil {
			return nil, err
		}
		e.Date = domain.Date(date)
		out = append(out, e)
	}
	return out, rows.Err()
}
