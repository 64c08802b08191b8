package session

import (
	"time"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// Status is the session phase.
type Status string

const (
	StatusLoading  Status = "loading"  // waiting for the next problem
	StatusIdle     Status = "idle"     // a problem is on screen
	StatusFinished Status = "finished" // question budget used up
)

// SubStatus tracks the active problem's answer state.
type SubStatus string

const (
	SubIdle    SubStatus = "idle"
	SubCorrect SubStatus = "correct"
	SubWrong   SubStatus = "wrong"
)

// Defaults for a session run.
const (
	DefaultQuestionCount = 10
	DefaultTimeLimit     = 60 * time.Second

	// MaxDuplicateAttempts bounds how often Generate is re-called when it
	// returns a prompt already seen in this session.
	MaxDuplicateAttempts = 15
)

// Level is the learner's difficulty for one engine.
type Level struct {
	Current int `json:"current"`
	Highest int `json:"highest"`
}

// Result is the audit record of one submission. Results are append-only.
type Result struct {
	ProblemID string        `json:"problem_id"`
	Prompt    string        `json:"prompt"`
	Input     string        `json:"input"`
	Answer    string        `json:"answer"`
	Correct   bool          `json:"correct"`
	TimedOut  bool          `json:"timed_out,omitempty"`
	Attempt   int           `json:"attempt"`
	TimeTaken time.Duration `json:"time_taken"`
	Score     int           `json:"score"`
}

// Session is one practice run.
type Session struct {
	ID        string        `json:"id"`
	Score     int           `json:"score"`
	Question  int           `json:"question"` // 1-based index of the current question
	Results   []Result      `json:"results"`
	StartedAt time.Time     `json:"started_at"`
	TimeLeft  time.Duration `json:"time_left"`
}

// ActiveProblem is the problem on screen plus its interaction state.
type ActiveProblem struct {
	Problem      *problemgen.Problem `json:"-"`
	Input        string              `json:"input"`
	Attempts     int                 `json:"attempts"`
	UsedSolution bool                `json:"used_solution"`
	Solving      bool                `json:"solving"`
	Steps        []string            `json:"steps,omitempty"`
	Feedback     string              `json:"feedback,omitempty"`
	Status       SubStatus           `json:"status"`
	StartedAt    time.Time           `json:"started_at"`

	// Expired is set once the timer ran out; the clock stops for this
	// problem afterwards.
	Expired bool `json:"expired,omitempty"`

	// AskFeedback is set after a mistake until the learner classifies it.
	AskFeedback bool `json:"ask_feedback,omitempty"`
}

// State is the whole session read model.
type State struct {
	Status        Status        `json:"status"`
	Level         Level         `json:"level"`
	Session       Session       `json:"session"`
	Active        ActiveProblem `json:"active"`
	QuestionCount int           `json:"question_count"`
	TimeLimit     time.Duration `json:"time_limit"`
}

// NewState returns a loading state for a run of questionCount problems
// with the given per-question time limit.
func NewState(questionCount int, timeLimit time.Duration) State {
	if questionCount < 1 {
		questionCount = DefaultQuestionCount
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	return State{
		Status:        StatusLoading,
		Level:         Level{Current: problemgen.MinLevel, Highest: problemgen.MinLevel},
		Session:       Session{Question: 1, TimeLeft: timeLimit},
		QuestionCount: questionCount,
		TimeLimit:     timeLimit,
	}
}

// Clone returns a copy that shares no slices with s.
func (s State) Clone() State {
	s.Session.Results = append([]Result(nil), s.Session.Results...)
	s.Active.Steps = append([]string(nil), s.Active.Steps...)
	return s
}

// canEdit reports whether the input may change: before any answer, or
// after a mistake.
func (s State) canEdit() bool {
	return s.Status == StatusIdle && s.Active.Problem != nil &&
		(s.Active.Status == SubIdle || s.Active.Status == SubWrong)
}
