package domain

import (
	"errors"
	"fmt"
	"testing"
)

// ─── Error Tests ────────────────────────────────────────────────────────────

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{Errorf(ErrValidation, "bad"), KindValidation},
		{Errorf(ErrNotFound, "missing"), KindNotFound},
		{fmt.Errorf("wrap: %w", Errorf(ErrState, "done")), KindState},
		{Errorf(ErrInsufficientPoints, "poor"), KindInsufficientPoints},
		{errors.New("disk on fire"), KindInternal},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestError_MessageAndUnwrap(t *testing.T) {
	err := Errorf(ErrNotFound, "task %d not found", 7)
	if err.Error() != "task 7 not found" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false")
	}
}
