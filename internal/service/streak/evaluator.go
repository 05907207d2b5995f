// Package streak computes and records daily learning streaks.
package streak

import "time"

// Mode selects whether an evaluation only reports the streak or records an activity.
type Mode int

const (
	// ModeCheck reports the streak without changing it.
	ModeCheck Mode = iota
	// ModeRecord counts an activity happening at "now".
	ModeRecord
)

func (m Mode) String() string {
	if m == ModeRecord {
		return "record"
	}
	return "check"
}

// Result is the outcome of an evaluation.
type Result struct {
	StreakDays     int  `json:"streak_days"`
	IsActive       bool `json:"is_active"`
	TodayCompleted bool `json:"today_completed"`
}

// Outcome classifies how the last activity relates to today.
type Outcome string

const (
	OutcomeSameDay   Outcome = "same_day"
	OutcomeContinued Outcome = "continued"
	OutcomeBroken    Outcome = "broken"
)

// Classify compares the calendar days of now and lastActivityAt in loc.
// A missing last activity is a broken streak; one in the future counts as today.
func Classify(now time.Time, lastActivityAt *time.Time, loc *time.Location) Outcome {
	if lastActivityAt == nil {
		return OutcomeBroken
	}

	switch gap := daysBetween(*lastActivityAt, now, loc); {
	case gap <= 0:
		return OutcomeSameDay
	case gap == 1:
		return OutcomeContinued
	default:
		return OutcomeBroken
	}
}

// Evaluate applies the day-continuity rule to a stored streak.
func Evaluate(now time.Time, lastActivityAt *time.Time, storedStreak int, mode Mode, loc *time.Location) Result {
	if storedStreak < 0 {
		storedStreak = 0
	}

	switch Classify(now, lastActivityAt, loc) {
	case OutcomeSameDay:
		return Result{StreakDays: storedStreak, IsActive: storedStreak > 0, TodayCompleted: true}
	case OutcomeContinued:
		if mode == ModeRecord {
			return Result{StreakDays: storedStreak + 1, IsActive: true, TodayCompleted: true}
		}
		return Result{StreakDays: storedStreak, IsActive: storedStreak > 0}
	default:
		if mode == ModeRecord {
			return Result{StreakDays: 1, IsActive: true, TodayCompleted: true}
		}
		return Result{}
	}
}

// daysBetween counts calendar days from a to b in loc.
// Dates are rebuilt in UTC so DST transitions do not shorten a day.
func daysBetween(a, b time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
