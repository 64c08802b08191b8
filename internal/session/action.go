package session

import (
	"time"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// Action is an input to Reduce.
type Action interface {
	action()
}

// InitSession starts a run at the stored level.
type InitSession struct {
	SessionID string
	Level     Level
	Now       time.Time
}

// LoadProblemSuccess puts a freshly generated problem on screen.
type LoadProblemSuccess struct {
	Problem *problemgen.Problem
	Now     time.Time
}

// SetInput replaces the current input text.
type SetInput struct {
	Value string
}

// SubmitResult records one checked answer. Score is the candidate score;
// Reduce zeroes it for retries and revealed solutions.
type SubmitResult struct {
	Correct   bool
	Feedback  string
	Input     string
	TimeTaken time.Duration
	Score     int
	TimedOut  bool
}

// ShowSolutionStart marks the solution as revealed.
type ShowSolutionStart struct{}

// ShowSolutionSuccess attaches the worked solution.
type ShowSolutionSuccess struct {
	Steps []string
}

// NextProblem advances the question counter.
type NextProblem struct{}

// FinishSession ends the run.
type FinishSession struct{}

// TickTimer reports the recomputed remaining time.
type TickTimer struct {
	TimeLeft time.Duration
}

// CloseErrorFeedback dismisses the post-mistake feedback prompt.
type CloseErrorFeedback struct{}

func (InitSession) action()         {}
func (LoadProblemSuccess) action()  {}
func (SetInput) action()            {}
func (SubmitResult) action()        {}
func (ShowSolutionStart) action()   {}
func (ShowSolutionSuccess) action() {}
func (NextProblem) action()         {}
func (FinishSession) action()       {}
func (TickTimer) action()           {}
func (CloseErrorFeedback) action()  {}
