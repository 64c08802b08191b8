// Package spacedrep implements Leitner-box review scheduling.
package spacedrep

import "time"

// Box bounds. A wrong answer sends an item back to MinBox.
const (
	MinBox = 1
	MaxBox = 5
)

// MasteredBox is the lowest box counted as mastered.
const MasteredBox = 4

// BoxIntervals is the review interval in days for boxes 1..5.
var BoxIntervals = []int{1, 3, 7, 14, 30}

// IntervalDays returns the review interval for a box, clamped to the
// valid range.
func IntervalDays(box int) int {
	return BoxIntervals[ClampBox(box)-1]
}

// ClampBox maps any integer into [MinBox, MaxBox].
func ClampBox(box int) int {
	if box < MinBox {
		return MinBox
	}
	if box > MaxBox {
		return MaxBox
	}
	return box
}

// Advance returns the box after an answer: one up when correct, back to
// MinBox when wrong. An unset box counts as MinBox.
func Advance(box int, correct bool) int {
	if !correct {
		return MinBox
	}
	return ClampBox(ClampBox(box) + 1)
}

// NextReview returns when an item in box should next be reviewed.
func NextReview(box int, now time.Time) time.Time {
	return now.AddDate(0, 0, IntervalDays(box))
}
