package league

import "time"

const daysPerWeek = 7

// CurrentWeek returns the 1-based league week for now. Week 1 starts at startedAt;
// a league without a start timestamp is always in week 1.
func CurrentWeek(startedAt *time.Time, now time.Time) int {
	if startedAt == nil || startedAt.IsZero() {
		return 1
	}

	elapsed := now.Sub(*startedAt)
	if elapsed < 0 {
		return 1
	}

	days := int(elapsed.Hours() / 24)
	week := days/daysPerWeek + 1
	if week < 1 {
		return 1
	}
	return week
}
