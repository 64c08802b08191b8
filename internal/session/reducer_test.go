package session

import (
	"testing"
	"time"

	"github.com/abhisek/drillgym/internal/problemgen"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testProblem(id string) *problemgen.Problem {
	return &problemgen.Problem{ID: id, Prompt: "What is 6 x 7?", Answer: "42", Kind: problemgen.KindNumeric}
}

// idleState returns a session with one problem on screen.
func idleState(questions int) State {
	s := NewState(questions, DefaultTimeLimit)
	s = Reduce(s, InitSession{SessionID: "s1", Level: Level{Current: 2, Highest: 3}, Now: t0})
	return Reduce(s, LoadProblemSuccess{Problem: testProblem("p1"), Now: t0})
}

func TestPoints(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		taken     time.Duration
		want      int
	}{
		{"fast answer gets bonus", 40 * time.Second, 5 * time.Second, 210},
		{"slow answer", 40 * time.Second, 20 * time.Second, 140},
		{"fractional seconds are floored", 40*time.Second + 900*time.Millisecond, 20 * time.Second, 140},
		{"boundary is not fast", 50 * time.Second, 10 * time.Second, 150},
		{"negative remaining clamps", -time.Second, 70 * time.Second, 100},
	}
	for _, tt := range tests {
		if got := Points(tt.remaining, tt.taken); got != tt.want {
			t.Errorf("%s: Points(%v, %v) = %d, want %d", tt.name, tt.remaining, tt.taken, got, tt.want)
		}
	}
}

func TestReduce_InitSession(t *testing.T) {
	s := Reduce(NewState(5, 0), InitSession{SessionID: "abc", Level: Level{Current: 9}, Now: t0})

	if s.Status != StatusLoading {
		t.Errorf("Status = %s, want loading", s.Status)
	}
	if s.Level.Current != problemgen.MaxLevel || s.Level.Highest != problemgen.MaxLevel {
		t.Errorf("Level = %+v, want clamped to %d", s.Level, problemgen.MaxLevel)
	}
	if s.Session.Question != 1 || s.Session.ID != "abc" || !s.Session.StartedAt.Equal(t0) {
		t.Errorf("Session = %+v", s.Session)
	}
	if s.Session.TimeLeft != DefaultTimeLimit {
		t.Errorf("TimeLeft = %v, want %v", s.Session.TimeLeft, DefaultTimeLimit)
	}
}

func TestReduce_LoadProblemResetsTimer(t *testing.T) {
	s := idleState(3)
	s = Reduce(s, TickTimer{TimeLeft: 12 * time.Second})
	s = Reduce(s, SubmitResult{Correct: false, Input: "41"})
	s = Reduce(s, NextProblem{})
	s = Reduce(s, LoadProblemSuccess{Problem: testProblem("p2"), Now: t0.Add(time.Minute)})

	if s.Status != StatusIdle {
		t.Fatalf("Status = %s, want idle", s.Status)
	}
	if s.Session.TimeLeft != DefaultTimeLimit {
		t.Errorf("TimeLeft = %v, want reset", s.Session.TimeLeft)
	}
	a := s.Active
	if a.Attempts != 0 || a.UsedSolution || a.Status != SubIdle || a.Input != "" || a.AskFeedback {
		t.Errorf("active problem not reset: %+v", a)
	}
}

func TestReduce_CorrectFirstAttemptScores(t *testing.T) {
	s := idleState(3)
	s = Reduce(s, SetInput{Value: "42"})
	s = Reduce(s, SubmitResult{
		Correct:   true,
		Input:     "42",
		TimeTaken: 5 * time.Second,
		Score:     Points(40*time.Second, 5*time.Second),
	})

	if s.Session.Score != 210 {
		t.Errorf("Score = %d, want 210", s.Session.Score)
	}
	if s.Active.Status != SubCorrect {
		t.Errorf("SubStatus = %s, want correct", s.Active.Status)
	}
	if len(s.Session.Results) != 1 {
		t.Fatalf("Results = %d, want 1", len(s.Session.Results))
	}
	r := s.Session.Results[0]
	if !r.Correct || r.Score != 210 || r.Attempt != 1 || r.Answer != "42" || r.ProblemID != "p1" {
		t.Errorf("Result = %+v", r)
	}
}

func TestReduce_SolutionRevealZeroesScore(t *testing.T) {
	s := idleState(3)
	s = Reduce(s, ShowSolutionStart{})
	if !s.Active.UsedSolution || !s.Active.Solving {
		t.Fatalf("expected solution flags, got %+v", s.Active)
	}
	s = Reduce(s, ShowSolutionSuccess{Steps: []string{"6 x 7 = 42"}})
	if s.Active.Solving || len(s.Active.Steps) != 1 {
		t.Errorf("expected steps attached, got %+v", s.Active)
	}
	if !s.Active.UsedSolution {
		t.Error("UsedSolution must stay set")
	}

	s = Reduce(s, SubmitResult{Correct: true, TimeTaken: time.Second, Score: 999})
	if s.Session.Score != 0 || s.Session.Results[0].Score != 0 {
		t.Errorf("Score = %d, want 0 after reveal", s.Session.Score)
	}
}

func TestReduce_RetryScoresZero(t *testing.T) {
	s := idleState(3)
	s = Reduce(s, SubmitResult{Correct: false, Input: "41", Feedback: "no"})
	if s.Active.Status != SubWrong || s.Active.Attempts != 1 || !s.Active.AskFeedback {
		t.Fatalf("after wrong: %+v", s.Active)
	}

	s = Reduce(s, SetInput{Value: "42"})
	if s.Active.Input != "42" {
		t.Errorf("input not editable after a mistake")
	}
	s = Reduce(s, SubmitResult{Correct: true, Input: "42", Score: 150})
	if s.Session.Score != 0 {
		t.Errorf("Score = %d, want 0 on retry", s.Session.Score)
	}
	if len(s.Session.Results) != 2 || s.Session.Results[1].Attempt != 2 {
		t.Errorf("Results = %+v", s.Session.Results)
	}
}

func TestReduce_InputLockedAfterCorrect(t *testing.T) {
	s := idleState(3)
	s = Reduce(s, SetInput{Value: "42"})
	s = Reduce(s, SubmitResult{Correct: true, Input: "42", Score: 100})
	s = Reduce(s, SetInput{Value: "43"})
	if s.Active.Input != "42" {
		t.Errorf("Input = %q, want unchanged after correct", s.Active.Input)
	}

	s = Reduce(s, SubmitResult{Correct: true, Input: "42", Score: 100})
	if len(s.Session.Results) != 1 {
		t.Errorf("second submit after correct was recorded")
	}
}

func TestReduce_InputIgnoredWhileLoading(t *testing.T) {
	s := Reduce(NewState(3, 0), InitSession{Now: t0})
	s = Reduce(s, SetInput{Value: "x"})
	if s.Active.Input != "" {
		t.Errorf("Input = %q while loading", s.Active.Input)
	}
}

func TestReduce_TickTimer(t *testing.T) {
	s := idleState(3)

	s = Reduce(s, TickTimer{TimeLeft: 30 * time.Second})
	if s.Session.TimeLeft != 30*time.Second {
		t.Errorf("TimeLeft = %v, want 30s", s.Session.TimeLeft)
	}

	s = Reduce(s, TickTimer{TimeLeft: -2 * time.Second})
	if s.Session.TimeLeft != 0 {
		t.Errorf("TimeLeft = %v, want 0", s.Session.TimeLeft)
	}

	s = Reduce(s, TickTimer{TimeLeft: 20 * time.Second})
	s = Reduce(s, SubmitResult{Correct: true, Score: 100})
	s = Reduce(s, TickTimer{TimeLeft: 10 * time.Second})
	if s.Session.TimeLeft != 20*time.Second {
		t.Errorf("TimeLeft = %v, ticks must not apply after correct", s.Session.TimeLeft)
	}
}

func TestReduce_TimeoutStopsClock(t *testing.T) {
	s := idleState(3)
	s = Reduce(s, SubmitResult{Correct: false, Feedback: "Time is up!", TimedOut: true, TimeTaken: DefaultTimeLimit})

	if !s.Active.Expired || s.Session.TimeLeft != 0 {
		t.Fatalf("after timeout: %+v, left %v", s.Active, s.Session.TimeLeft)
	}
	if !s.Session.Results[0].TimedOut {
		t.Error("result not marked timed out")
	}
	s = Reduce(s, TickTimer{TimeLeft: 5 * time.Second})
	if s.Session.TimeLeft != 0 {
		t.Errorf("TimeLeft = %v after expiry", s.Session.TimeLeft)
	}
}

func TestReduce_NextProblemFinishes(t *testing.T) {
	s := idleState(2)

	s = Reduce(s, NextProblem{})
	if s.Status != StatusLoading || s.Session.Question != 2 {
		t.Fatalf("after first next: %s q=%d", s.Status, s.Session.Question)
	}
	s = Reduce(s, LoadProblemSuccess{Problem: testProblem("p2"), Now: t0})
	s = Reduce(s, NextProblem{})
	if s.Status != StatusFinished {
		t.Errorf("Status = %s, want finished", s.Status)
	}

	s = Reduce(s, NextProblem{})
	if s.Session.Question != 3 {
		t.Errorf("Question = %d, next after finish must be ignored", s.Session.Question)
	}
}

func TestReduce_FinishSession(t *testing.T) {
	s := Reduce(idleState(3), FinishSession{})
	if s.Status != StatusFinished || s.Active.Problem != nil {
		t.Errorf("after finish: %s %+v", s.Status, s.Active)
	}
}

func TestReduce_CloseErrorFeedback(t *testing.T) {
	s := idleState(3)
	s = Reduce(s, SubmitResult{Correct: false})
	s = Reduce(s, CloseErrorFeedback{})
	if s.Active.AskFeedback {
		t.Error("AskFeedback still set")
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := idleState(3)
	s = Reduce(s, SubmitResult{Correct: false, Input: "1"})
	before := len(s.Session.Results)

	next := Reduce(s, SubmitResult{Correct: false, Input: "2"})
	if len(s.Session.Results) != before {
		t.Errorf("input state mutated: %d results, want %d", len(s.Session.Results), before)
	}
	if len(next.Session.Results) != before+1 {
		t.Errorf("next state has %d results, want %d", len(next.Session.Results), before+1)
	}
}

func TestBuildSummary(t *testing.T) {
	s := idleState(3)
	s = Reduce(s, SubmitResult{Correct: false})
	s = Reduce(s, SubmitResult{Correct: true})
	s = Reduce(s, NextProblem{})
	s = Reduce(s, LoadProblemSuccess{Problem: testProblem("p2"), Now: t0})
	s = Reduce(s, SubmitResult{Correct: false, TimedOut: true})

	sum := BuildSummary(s, t0.Add(2*time.Minute))
	if sum.TotalQuestions != 2 || sum.TotalCorrect != 1 || sum.TimedOut != 1 {
		t.Errorf("Summary = %+v", sum)
	}
	if sum.Accuracy != 0.5 {
		t.Errorf("Accuracy = %v, want 0.5", sum.Accuracy)
	}
	if sum.Duration != 2*time.Minute {
		t.Errorf("Duration = %v, want 2m", sum.Duration)
	}
}
