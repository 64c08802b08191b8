package session

import "time"

// Summary holds the data displayed when a run ends.
type Summary struct {
	Duration       time.Duration `json:"duration"`
	TotalQuestions int           `json:"total_questions"`
	TotalCorrect   int           `json:"total_correct"`
	Accuracy       float64       `json:"accuracy"`
	Score          int           `json:"score"`
	TimedOut       int           `json:"timed_out"`
}

// BuildSummary condenses a state. Questions are counted once however
// many attempts they took; a question counts as correct if any attempt was.
func BuildSummary(s State, now time.Time) Summary {
	correct := make(map[string]bool)
	var timedOut int
	for _, r := range s.Session.Results {
		correct[r.ProblemID] = correct[r.ProblemID] || r.Correct
		if r.TimedOut {
			timedOut++
		}
	}

	var total int
	for _, ok := range correct {
		if ok {
			total++
		}
	}

	var accuracy float64
	if len(correct) > 0 {
		accuracy = float64(total) / float64(len(correct))
	}

	var d time.Duration
	if !s.Session.StartedAt.IsZero() {
		d = now.Sub(s.Session.StartedAt)
	}

	return Summary{
		Duration:       d,
		TotalQuestions: len(correct),
		TotalCorrect:   total,
		Accuracy:       accuracy,
		Score:          s.Session.Score,
		TimedOut:       timedOut,
	}
}
