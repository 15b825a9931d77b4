package domain

import "time"

// TaskStatus is derived from the stored fields and the current time.
// A task moves upcoming → active → completed | expired.
// It is never persisted.
type TaskStatus string

const (
	TaskUpcoming  TaskStatus = "upcoming"
	TaskActive    TaskStatus = "active"
	TaskCompleted TaskStatus = "completed"
	TaskExpired   TaskStatus = "expired"
)

// DynamicTask is a bonus task with an activity window [Start, End].
type DynamicTask struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	PointsReward int64     `json:"points_reward"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Completed    bool      `json:"completed"`
	CompletedAt  time.Time `json:"completed_at,omitempty"`
	Deleted      bool      `json:"deleted"`
	CreatedAt    time.Time `json:"created_at"`
}

// StatusAt derives the lifecycle status at now. Deletion does not change
// the natural status.
func (t *DynamicTask) StatusAt(now time.Time) TaskStatus {
	switch {
	case t.Completed:
		return TaskCompleted
	case now.Before(t.Start):
		return TaskUpcoming
	case now.After(t.End):
		return TaskExpired
	default:
		return TaskActive
	}
}

// IsTerminal returns true if the task can never become active again.
func (t *DynamicTask) IsTerminal(now time.Time) bool {
	s := t.StatusAt(now)
	return s == TaskCompleted || s == TaskExpired
}

// TaskView is a task annotated for display.
type TaskView struct {
	DynamicTask
	Status               TaskStatus `json:"status"`
	TimeRemainingSeconds int64      `json:"time_remaining_seconds,omitempty"`
}
