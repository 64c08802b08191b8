package session

import (
	"time"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// fastAnswer earns the speed bonus.
const fastAnswer = 10 * time.Second

// Points is the score for a correct first-attempt answer: 100 plus the
// whole seconds remaining, times 1.5 when answered in under 10 seconds.
func Points(remaining, taken time.Duration) int {
	if remaining < 0 {
		remaining = 0
	}
	score := 100 + int(remaining/time.Second)
	if taken < fastAnswer {
		score = score * 3 / 2
	}
	return score
}

// Reduce applies one action and returns the new state. It never mutates
// s and ignores actions that are not valid in the current state.
func Reduce(s State, a Action) State {
	s = s.Clone()

	switch a := a.(type) {
	case InitSession:
		lvl := a.Level
		lvl.Current = problemgen.ClampLevel(lvl.Current)
		if lvl.Highest < lvl.Current {
			lvl.Highest = lvl.Current
		}
		return State{
			Status: StatusLoading,
			Level:  lvl,
			Session: Session{
				ID:        a.SessionID,
				Question:  1,
				StartedAt: a.Now,
				TimeLeft:  s.TimeLimit,
			},
			QuestionCount: s.QuestionCount,
			TimeLimit:     s.TimeLimit,
		}

	case LoadProblemSuccess:
		if s.Status != StatusLoading || a.Problem == nil {
			return s
		}
		s.Status = StatusIdle
		s.Active = ActiveProblem{Problem: a.Problem, Status: SubIdle, StartedAt: a.Now}
		s.Session.TimeLeft = s.TimeLimit

	case SetInput:
		if s.canEdit() {
			s.Active.Input = a.Value
		}

	case SubmitResult:
		if !s.canEdit() {
			return s
		}
		score := a.Score
		if !a.Correct || s.Active.Attempts > 0 || s.Active.UsedSolution || score < 0 {
			score = 0
		}
		p := s.Active.Problem
		s.Session.Results = append(s.Session.Results, Result{
			ProblemID: p.ID,
			Prompt:    p.Prompt,
			Input:     a.Input,
			Answer:    p.Shown(),
			Correct:   a.Correct,
			TimedOut:  a.TimedOut,
			Attempt:   s.Active.Attempts + 1,
			TimeTaken: a.TimeTaken,
			Score:     score,
		})
		s.Session.Score += score
		s.Active.Feedback = a.Feedback
		if a.Correct {
			s.Active.Status = SubCorrect
			s.Active.AskFeedback = false
		} else {
			s.Active.Status = SubWrong
			s.Active.Attempts++
			s.Active.AskFeedback = true
		}
		if a.TimedOut {
			s.Active.Expired = true
			s.Session.TimeLeft = 0
		}

	case ShowSolutionStart:
		if s.Status != StatusIdle || s.Active.Problem == nil {
			return s
		}
		s.Active.UsedSolution = true
		s.Active.Solving = true

	case ShowSolutionSuccess:
		if !s.Active.Solving {
			return s
		}
		s.Active.Solving = false
		s.Active.Steps = append([]string(nil), a.Steps...)

	case NextProblem:
		if s.Status == StatusFinished {
			return s
		}
		s.Active = ActiveProblem{}
		s.Session.Question++
		s.Session.TimeLeft = s.TimeLimit
		if s.Session.Question > s.QuestionCount {
			s.Status = StatusFinished
		} else {
			s.Status = StatusLoading
		}

	case FinishSession:
		s.Status = StatusFinished
		s.Active = ActiveProblem{}

	case TickTimer:
		if s.Status != StatusIdle || s.Active.Status == SubCorrect || s.Active.Expired {
			return s
		}
		s.Session.TimeLeft = max(a.TimeLeft, 0)

	case CloseErrorFeedback:
		s.Active.AskFeedback = false
	}
	return s
}
