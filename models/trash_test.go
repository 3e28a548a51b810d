package models

import (
	"testing"
	"time"
)

func TestWithinRestoreWindow(t *testing.T) {
	deletedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"immediately after deletion", deletedAt.Add(time.Minute), true},
		{"mid-window", deletedAt.Add(15 * 24 * time.Hour), true},
		{"exactly at the boundary", deletedAt.Add(RestoreWindow), true},
		{"one second past the boundary", deletedAt.Add(RestoreWindow + time.Second), false},
		{"long after", deletedAt.Add(90 * 24 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinRestoreWindow(deletedAt, tt.now); got != tt.want {
				t.Errorf("WithinRestoreWindow(%v, %v) = %v, want %v", deletedAt, tt.now, got, tt.want)
			}
		})
	}
}
