package services

import (
	"math"
	"time"
)

// Streak decisions are pure functions over timestamps so the state machine
// can be tested without a database. All day boundaries are UTC; server
// local time is never consulted.

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NextStreak computes the member's new consecutive-day count for a
// completion happening at now. lastCompleted is the most recent prior task
// strictly before start-of-today, or nil when the member has no history in
// the community. A prior task completed yesterday (inclusive boundary at
// start-of-yesterday) continues the streak; anything older, or no history,
// resets it to 1.
func NextStreak(lastCompleted *time.Time, currentStreak int, now time.Time) int {
	if lastCompleted == nil {
		return 1
	}
	startOfYesterday := StartOfDay(now).AddDate(0, 0, -1)
	if !lastCompleted.Before(startOfYesterday) {
		return currentStreak + 1
	}
	return 1
}

// FinalPoints applies the community streak multiplier to the base value.
// threshold < 1 means the community has no streak policy and the bonus
// never applies.
func FinalPoints(base, streak, threshold int, multiplier float64) int {
	if threshold >= 1 && streak >= threshold && multiplier > 0 {
		return int(math.Round(float64(base) * multiplier))
	}
	return base
}
