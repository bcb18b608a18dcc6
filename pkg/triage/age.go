package triage

import "time"

const hoursPerDay = 24

// AgeDays returns the whole days elapsed from created to now, truncated
// toward zero. A zero created time means the creation time is unknown and
// yields 0. Future timestamps yield negative ages; callers get them
// unchanged.
func AgeDays(created, now time.Time) int {
	if created.IsZero() {
		return 0
	}
	return int(now.Sub(created).Hours() / hoursPerDay)
}
