// Package quest manages dynamic tasks: supervisor-defined, time-boxed bonus
// tasks. Status is derived from the task window and the current time on
// every read; nothing ticks in the background.
package quest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/healthquest/healthquest/internal/app/points"
	"github.com/healthquest/healthquest/internal/domain"
)

// TaskInput is what a supervisor provides when creating a task.
type TaskInput struct {
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	PointsReward int64     `json:"points_reward"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}

// Validate checks the fields a task must satisfy.
func (in TaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Errorf(domain.ErrValidation, "task title is required")
	}
	if in.PointsReward <= 0 {
		return domain.Errorf(domain.ErrValidation, "points reward must be positive, got %d", in.PointsReward)
	}
	if in.Start.IsZero() || in.End.IsZero() {
		return domain.Errorf(domain.ErrValidation, "task start and end are required")
	}
	if !in.End.After(in.Start) {
		return domain.Errorf(domain.ErrValidation, "task end must be after start")
	}
	return nil
}

// Manager runs the task lifecycle inside one store transaction.
type Manager struct {
	store  domain.TaskStore
	ledger *points.Ledger
}

// NewManager wires a task store and the ledger that pays rewards.
func NewManager(store domain.TaskStore, ledger *points.Ledger) *Manager {
	return &Manager{store: store, ledger: ledger}
}

// Create stores a new task under the next unique id.
func (m *Manager) Create(in TaskInput, now time.Time) (domain.DynamicTask, error) {
	if err := in.Validate(); err != nil {
		return domain.DynamicTask{}, err
	}
	t, err := m.store.InsertTask(domain.DynamicTask{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		PointsReward: in.PointsReward,
		Start:        in.Start,
		End:          in.End,
		CreatedAt:    now,
	})
	if err != nil {
		return domain.DynamicTask{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// lookup returns the task or NotFound if it is missing or soft-deleted.
func (m *Manager) lookup(id int64) (domain.DynamicTask, error) {
	t, err := m.store.Task(id)
	if err != nil {
		return domain.DynamicTask{}, fmt.Errorf("load task %d: %w", id, err)
	}
	if t == nil || t.Deleted {
		return domain.DynamicTask{}, domain.Errorf(domain.ErrNotFound, "task %d not found", id)
	}
	return *t, nil
}

// Complete marks an active task completed and pays its reward.
func (m *Manager) Complete(id int64, now time.Time) (domain.DynamicTask, domain.LedgerEntry, error) {
	t, err := m.lookup(id)
	if err != nil {
		return domain.DynamicTask{}, domain.LedgerEntry{}, err
	}
	if t.IsTerminal(now) {
		return domain.DynamicTask{}, domain.LedgerEntry{}, domain.Errorf(domain.ErrState, "task %d is already %s", id, t.StatusAt(now))
	}
	if now.Before(t.Start) {
		return domain.DynamicTask{}, domain.LedgerEntry{}, domain.Errorf(domain.ErrState, "task %d has not started yet", id)
	}

	t.Completed = true
	t.CompletedAt = now
	if err := m.store.UpdateTask(t); err != nil {
		return domain.DynamicTask{}, domain.LedgerEntry{}, fmt.Errorf("update task %d: %w", id, err)
	}
	entry, err := m.ledger.Append(domain.EntryTaskReward, t.PointsReward, "Task completed: "+t.Title, now)
	if err != nil {
		return domain.DynamicTask{}, domain.LedgerEntry{}, err
	}
	return t, entry, nil
}

// SoftDelete hides a task from active listings. Deleting twice is a no-op.
func (m *Manager) SoftDelete(id int64) (domain.DynamicTask, error) {
	t, err := m.store.Task(id)
	if err != nil {
		return domain.DynamicTask{}, fmt.Errorf("load task %d: %w", id, err)
	}
	if t == nil {
		return domain.DynamicTask{}, domain.Errorf(domain.ErrNotFound, "task %d not found", id)
	}
	if t.Deleted {
		return *t, nil
	}
	t.Deleted = true
	if err := m.store.UpdateTask(*t); err != nil {
		return domain.DynamicTask{}, fmt.Errorf("update task %d: %w", id, err)
	}
	return *t, nil
}

// ListActive returns non-deleted tasks active at now, soonest end first,
// with the seconds left in their window.
func (m *Manager) ListActive(now time.Time) ([]domain.TaskView, error) {
	all, err := m.store.Tasks()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	out := []domain.TaskView{}
	for i := range all {
		t := all[i]
		if t.Deleted || t.StatusAt(now) != domain.TaskActive {
			continue
		}
		out = append(out, domain.TaskView{
			DynamicTask:          t,
			Status:               domain.TaskActive,
			TimeRemainingSeconds: int64(t.End.Sub(now) / time.Second),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].End.Before(out[j].End) })
	return out, nil
}

// ListAll returns every task by id, deleted and expired included, with its
// derived status.
func (m *Manager) ListAll(now time.Time) ([]domain.TaskView, error) {
	all, err := m.store.Tasks()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	out := make([]domain.TaskView, 0, len(all))
	for i := range all {
		t := all[i]
		v := domain.TaskView{DynamicTask: t, Status: t.StatusAt(now)}
		if v.Status == domain.TaskActive {
			v.TimeRemainingSeconds = int64(t.End.Sub(now) / time.Second)
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
