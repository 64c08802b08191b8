package spacedrep

import "time"

// ReviewState holds the Leitner state for one engine and skill.
type ReviewState struct {
	EngineID   string    `json:"engine_id"`
	SkillKey   string    `json:"skill_key"`
	Box        int       `json:"box"`
	HighestBox int       `json:"highest_box"`
	NextReview time.Time `json:"next_review"`
}

// Record applies an answer at now and returns the updated state.
func (rs ReviewState) Record(correct bool, now time.Time) ReviewState {
	rs.Box = Advance(ClampBox(rs.Box), correct)
	if rs.Box > rs.HighestBox {
		rs.HighestBox = rs.Box
	}
	rs.NextReview = NextReview(rs.Box, now)
	return rs
}

// IsDue returns true if the item is due for review (at or past the review date).
func (rs *ReviewState) IsDue(now time.Time) bool {
	return !now.Before(rs.NextReview)
}

// OverdueDays returns how many days past due the item is. Returns 0 if not yet due.
func (rs *ReviewState) OverdueDays(now time.Time) float64 {
	if now.Before(rs.NextReview) {
		return 0
	}
	return now.Sub(rs.NextReview).Hours() / 24.0
}

// IsRusty returns true once an item is overdue by more than half its
// interval.
func (rs *ReviewState) IsRusty(now time.Time) bool {
	if !rs.IsDue(now) {
		return false
	}
	graceHours := float64(IntervalDays(rs.Box)) * 0.5 * 24.0
	threshold := rs.NextReview.Add(time.Duration(graceHours * float64(time.Hour)))
	return now.After(threshold)
}

// ReviewStatus describes an item's review status for display.
type ReviewStatus string

const (
	ReviewNotDue   ReviewStatus = "not_due"
	ReviewDue      ReviewStatus = "due"
	ReviewOverdue  ReviewStatus = "overdue"
	ReviewMastered ReviewStatus = "mastered"
)

// Status returns the review status for display.
func (rs *ReviewState) Status(now time.Time) ReviewStatus {
	switch {
	case rs.IsRusty(now):
		return ReviewOverdue
	case rs.IsDue(now):
		return ReviewDue
	case rs.Box >= MasteredBox:
		return ReviewMastered
	default:
		return ReviewNotDue
	}
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func (rs *ReviewState) DaysUntilReview(now time.Time) int {
	if rs.IsDue(now) {
		return 0
	}
	return int(rs.NextReview.Sub(now).Hours()/24.0) + 1
}
