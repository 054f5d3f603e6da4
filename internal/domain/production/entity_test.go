package production

import (
	"strings"
	"testing"
	"time"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"pending completes", StatusPending, StatusCompleted, true},
		{"pending cancels", StatusPending, StatusCancelled, true},
		{"completed is terminal", StatusCompleted, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusCompleted, false},
		{"no self transition", StatusPending, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &ProductionRun{Status: tt.from}
			if got := run.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s→%s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestCanBeCancelled(t *testing.T) {
	if !(&ProductionRun{Status: StatusPending}).CanBeCancelled() {
		t.Error("pending run should be cancellable")
	}
	if (&ProductionRun{Status: StatusCompleted}).CanBeCancelled() {
		t.Error("completed run should not be cancellable")
	}
}

func TestGenerateRunCode(t *testing.T) {
	date := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	code := GenerateRunCode(date)

	if !strings.HasPrefix(code, "PRD-20260315-") {
		t.Errorf("run code %q missing date prefix", code)
	}
	if code == GenerateRunCode(date) {
		t.Error("run codes for the same date should be unique")
	}
}
