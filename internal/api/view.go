package api

import (
	"github.com/abhisek/drillgym/internal/problemgen"
	"github.com/abhisek/drillgym/internal/session"
)

// sessionView is the read model sent to clients. The answer stays hidden
// until the problem is solved, revealed or timed out.
type sessionView struct {
	ID            string           `json:"id"`
	EngineID      string           `json:"engine_id"`
	EngineName    string           `json:"engine_name"`
	Status        session.Status   `json:"status"`
	Level         session.Level    `json:"level"`
	Session       session.Session  `json:"session"`
	Active        *activeView      `json:"active_problem,omitempty"`
	QuestionCount int              `json:"question_count"`
	TimeLimitMS   int64            `json:"time_limit_ms"`
	TimeLeftMS    int64            `json:"time_left_ms"`
	Summary       *session.Summary `json:"summary,omitempty"`
}

type activeView struct {
	ProblemID    string                `json:"problem_id"`
	Prompt       string                `json:"prompt"`
	Context      string                `json:"context,omitempty"`
	Kind         problemgen.AnswerKind `json:"kind"`
	Choices      []string              `json:"choices,omitempty"`
	Answer       string                `json:"answer,omitempty"`
	Explanation  string                `json:"explanation,omitempty"`
	Input        string                `json:"input"`
	Attempts     int                   `json:"attempts"`
	Status       session.SubStatus     `json:"status"`
	Feedback     string                `json:"feedback,omitempty"`
	UsedSolution bool                  `json:"used_solution"`
	Solving      bool                  `json:"solving"`
	Steps        []string              `json:"steps,omitempty"`
	Expired      bool                  `json:"expired,omitempty"`
	AskFeedback  bool                  `json:"ask_feedback,omitempty"`
}

func newSessionView(run *session.Runner) sessionView {
	st := run.State()
	v := sessionView{
		ID:            run.ID(),
		EngineID:      run.EngineID(),
		EngineName:    run.EngineName(),
		Status:        st.Status,
		Level:         st.Level,
		Session:       st.Session,
		QuestionCount: st.QuestionCount,
		TimeLimitMS:   st.TimeLimit.Milliseconds(),
		TimeLeftMS:    st.Session.TimeLeft.Milliseconds(),
	}
	if st.Status == session.StatusFinished {
		sum := run.Summary()
		v.Summary = &sum
	}

	a := st.Active
	if a.Problem == nil {
		return v
	}
	v.Active = &activeView{
		ProblemID:    a.Problem.ID,
		Prompt:       a.Problem.Prompt,
		Context:      a.Problem.Context,
		Kind:         a.Problem.Kind,
		Choices:      a.Problem.Choices,
		Input:        a.Input,
		Attempts:     a.Attempts,
		Status:       a.Status,
		Feedback:     a.Feedback,
		UsedSolution: a.UsedSolution,
		Solving:      a.Solving,
		Steps:        a.Steps,
		Expired:      a.Expired,
		AskFeedback:  a.AskFeedback,
	}
	if a.Status == session.SubCorrect || a.UsedSolution || a.Expired {
		v.Active.Answer = a.Problem.Shown()
		v.Active.Explanation = a.Problem.Explanation
	}
	return v
}
