package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/healthquest/healthquest/internal/domain"
)

// ─── Dynamic Tasks ──────────────────────────────────────────────────────────
// Task times are stored in Unix nanoseconds so sub-second windows survive.

const taskColumns = `id, title, description, points_reward, start_at, end_at,
	completed, completed_at, deleted, created_at`

// InsertTask stores t under the next unique id.
func (t *tx) InsertTask(task domain.DynamicTask) (domain.DynamicTask, error) {
	result, err := t.exec(
		`INSERT INTO dynamic_tasks (title, description, points_reward, start_at, end_at,
			completed, completed_at, deleted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.Title, task.Description, task.PointsReward,
		task.Start.UnixNano(), task.End.UnixNano(),
		task.Completed, nullableUnixNano(task.CompletedAt), task.Deleted, task.CreatedAt.UnixNano(),
	)
	if err != nil {
		return domain.DynamicTask{}, err
	}
	task.ID, err = result.LastInsertId()
	if err != nil {
		return domain.DynamicTask{}, fmt.Errorf("last insert id: %w", err)
	}
	return task, nil
}

// Task returns nil if id is unknown.
func (t *tx) Task(id int64) (*domain.DynamicTask, error) {
	task, err := scanTask(t.queryRow(`SELECT `+taskColumns+` FROM dynamic_tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask writes the mutable fields: completion and deletion.
func (t *tx) UpdateTask(task domain.DynamicTask) error {
	result, err := t.exec(
		`UPDATE dynamic_tasks SET completed = ?, completed_at = ?, deleted = ? WHERE id = ?`,
		task.Completed, nullableUnixNano(task.CompletedAt), task.Deleted, task.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.Errorf(domain.ErrNotFound, "task %d not found", task.ID)
	}
	return nil
}

// Tasks returns every task ordered by ID.
func (t *tx) Tasks() ([]domain.DynamicTask, error) {
	rows, err := t.query(`SELECT ` + taskColumns + ` FROM dynamic_tasks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DynamicTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func scanTask(s scanner) (domain.DynamicTask, error) {
	var task domain.DynamicTask
	var start, end, created int64
	var completedAt sql.NullInt64
	err := s.Scan(&task.ID, &task.Title, &task.Description, &task.PointsReward,
		&start, &end, &task.Completed, &completedAt, &task.Deleted, &created)
	if err != nil {
		return domain.DynamicTask{}, err
	}
	task.Start = time.Unix(0, start)
	task.End = time.Unix(0, end)
	task.CompletedAt = fromNullUnixNano(completedAt)
	task.CreatedAt = time.Unix(0, created)
	return task, nil
}
