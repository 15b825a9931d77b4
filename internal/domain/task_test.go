package domain

import (
	"testing"
	"time"
)

// ─── Task Tests ─────────────────────────────────────────────────────────────

func TestTaskStatus_Constants(t *testing.T) {
	statuses := []TaskStatus{TaskUpcoming, TaskActive, TaskCompleted, TaskExpired}
	seen := make(map[TaskStatus]bool)
	for _, s := range statuses {
		if seen[s] {
			t.Errorf("duplicate TaskStatus: %s", s)
		}
		seen[s] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected 4 unique TaskStatus, got %d", len(seen))
	}
}

func TestDynamicTask_StatusAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name      string
		now       time.Time
		completed bool
		want      TaskStatus
	}{
		{"before start", start.Add(-time.Minute), false, TaskUpcoming},
		{"at start", start, false, TaskActive},
		{"inside window", start.Add(30 * time.Minute), false, TaskActive},
		{"at end", end, false, TaskActive},
		{"after end", end.Add(time.Second), false, TaskExpired},
		{"completed inside window", start.Add(time.Minute), true, TaskCompleted},
		{"completed after end", end.Add(time.Hour), true, TaskCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := DynamicTask{Start: start, End: end, Completed: tt.completed}
			if got := task.StatusAt(tt.now); got != tt.want {
				t.Errorf("StatusAt() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDynamicTask_DeletedKeepsNaturalStatus(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	task := DynamicTask{Start: start, End: start.Add(time.Hour), Deleted: true}
	if got := task.StatusAt(start.Add(time.Minute)); got != TaskActive {
		t.Errorf("deleted task status = %s, want %s", got, TaskActive)
	}
}

func TestDynamicTask_IsTerminal(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	task := DynamicTask{Start: start, End: start.Add(time.Hour)}
	if task.IsTerminal(start) {
		t.Error("active task should not be terminal")
	}
	if !task.IsTerminal(start.Add(2 * time.Hour)) {
		t.Error("expired task should be terminal")
	}
}
