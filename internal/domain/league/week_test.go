package league

import (
	"testing"
	"time"
)

func TestCurrentWeek(t *testing.T) {
	start := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		startedAt *time.Time
		now       time.Time
		want      int
	}{
		{name: "not started", startedAt: nil, now: start, want: 1},
		{name: "same instant", startedAt: &start, now: start, want: 1},
		{name: "six days later", startedAt: &start, now: start.Add(6*24*time.Hour + 23*time.Hour), want: 1},
		{name: "seven days later", startedAt: &start, now: start.Add(7 * 24 * time.Hour), want: 2},
		{name: "fifteen days later", startedAt: &start, now: start.Add(15 * 24 * time.Hour), want: 3},
		{name: "clock behind start", startedAt: &start, now: start.Add(-time.Hour), want: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CurrentWeek(tc.startedAt, tc.now); got != tc.want {
				t.Fatalf("CurrentWeek() = %d, want %d", got, tc.want)
			}
		})
	}
}
