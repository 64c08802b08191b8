package contentgen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/drillgym/internal/llm"
	"github.com/abhisek/drillgym/internal/problemgen"
)

func TestChemFormula(t *testing.T) {
	tests := []struct{ in, want string }{
		{"H2SO4", "H_{2}SO_{4}"},
		{"Ca(OH)2", "Ca(OH)_{2}"},
		{"CO2 and NaCl", "CO_{2} and NaCl"},
		{"no formula here", "no formula here"},
		{"Fe2O3", "Fe_{2}O_{3}"},
	}
	for _, tt := range tests {
		if got := ChemFormula(tt.in); got != tt.want {
			t.Errorf("ChemFormula(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestChain(t *testing.T) {
	f := Chain(strings.ToUpper, nil, func(s string) string { return s + "!" })
	if got := f("go"); got != "GO!" {
		t.Errorf("Chain() = %q, want %q", got, "GO!")
	}
}

func TestParseBatch(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		count int
		err   bool
	}{
		{"object", `{"problems":[{"question":"q1","answer":"a1"},{"question":"q2","answer":"a2"}]}`, 2, false},
		{"array", `[{"question":"q1","answer":"a1"}]`, 1, false},
		{"single", `{"question":"q1","answer":"a1"}`, 1, false},
		{"fenced", "```json\n{\"problems\":[{\"question\":\"q\",\"answer\":\"a\"}]}\n```", 1, false},
		{"prose around", "Sure! Here you go:\n[{\"question\":\"q\",\"answer\":\"a\"}]\nGood luck.", 1, false},
		{"string literal", `"{\"problems\":[{\"question\":\"q\",\"answer\":\"a\"}]}"`, 1, false},
		{"garbage", "I cannot help with that.", 0, true},
		{"empty", "", 0, true},
		{"broken span", "{ not json ]", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ParseBatch(tt.raw)
			if tt.err {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.NotNil(t, items)
			assert.Len(t, items, tt.count)
		})
	}
}

func TestItemProblem(t *testing.T) {
	it := Item{Question: " Boiling point of water in C? ", Answer: "100", Kind: "numeric"}
	p := it.Problem("ai", 9)
	require.NotNil(t, p)
	assert.Equal(t, "Boiling point of water in C?", p.Prompt)
	assert.Equal(t, problemgen.KindNumeric, p.Kind)
	assert.Equal(t, problemgen.Relative, p.Tolerance.Mode)
	assert.Equal(t, "5", p.Meta("level"))
	assert.True(t, strings.HasPrefix(p.ID, "ai-"))

	assert.Nil(t, Item{Question: "q"}.Problem("ai", 1))

	choice := Item{Question: "q", Answer: "b", Kind: "choice", Choices: []string{"b"}}.Problem("ai", 1)
	assert.Equal(t, problemgen.KindText, choice.Kind, "a single option is not a real choice")
}

func batchJSON(t *testing.T, items ...Item) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(batchOutput{Problems: items})
	require.NoError(t, err)
	return b
}

func TestLLMSource_Fetch(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: batchJSON(t,
			Item{Question: "Symbol for sodium?", Answer: "Na"},
			Item{Question: "", Answer: "skip me"},
		),
	})
	src := NewLLMSource(mock, DefaultConfig(), nil)

	got, err := src.Fetch(context.Background(), Request{
		Topic:      "Chemistry",
		Count:      2,
		Difficulty: 2,
		Exclude:    []string{"Symbol for iron?"},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Na", got[0].Answer)

	require.Equal(t, 1, mock.CallCount())
	call := mock.Calls[0]
	assert.Equal(t, llm.Call{Purpose: llm.PurposeRefill, Subject: "Chemistry"}, call.Call)
	assert.Equal(t, BatchSchema, call.Schema)
	assert.Contains(t, call.Messages[0].Content, "Topic: Chemistry")
	assert.Contains(t, call.Messages[0].Content, "1. Symbol for iron?")
}

func TestLLMSource_SalvagesInvalidResponse(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.ErrInvalidResponse{
			Content: json.RawMessage(`"Here:\n` + "```" + `json\n[{\"question\":\"q\",\"answer\":\"a\"}]\n` + "```" + `"`),
			Err:     errors.New("schema mismatch"),
		},
	})
	got, err := NewLLMSource(mock, DefaultConfig(), nil).Fetch(context.Background(), Request{Topic: "t", Count: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "q", got[0].Prompt)
}

func TestLLMSource_Errors(t *testing.T) {
	t.Run("provider down", func(t *testing.T) {
		mock := llm.NewMockProvider()
		_, err := NewLLMSource(mock, DefaultConfig(), nil).Fetch(context.Background(), Request{Topic: "t"})
		var unavailable *llm.ErrProviderUnavailable
		assert.ErrorAs(t, err, &unavailable)
	})

	t.Run("empty batch", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"problems":[]}`)})
		_, err := NewLLMSource(mock, DefaultConfig(), nil).Fetch(context.Background(), Request{Topic: "t"})
		assert.ErrorIs(t, err, ErrEmptyBatch)
	})
}

func TestSharedProviderRoutesByPurpose(t *testing.T) {
	mock := llm.NewMockProvider().
		Script(llm.PurposeSolve, llm.MockResponse{Content: json.RawMessage(`{"steps":["Na is sodium."]}`)}).
		Script(llm.PurposeRefill, llm.MockResponse{Content: batchJSON(t, Item{Question: "Symbol for iron?", Answer: "Fe"})})

	steps, err := NewStepSolver(mock, DefaultConfig()).Solve(context.Background(), &problemgen.Problem{ID: "na", Prompt: "Symbol for sodium?", Answer: "Na"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Na is sodium."}, steps)

	got, err := NewLLMSource(mock, DefaultConfig(), nil).Fetch(context.Background(), Request{Topic: "Chemistry", Count: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Fe", got[0].Answer)

	require.Len(t, mock.CallsFor(llm.PurposeRefill), 1)
	assert.Equal(t, "Chemistry", mock.CallsFor(llm.PurposeRefill)[0].Subject)
	require.Len(t, mock.CallsFor(llm.PurposeSolve), 1)
	assert.Equal(t, "na", mock.CallsFor(llm.PurposeSolve)[0].Subject)
}

func TestThrottle(t *testing.T) {
	calls := 0
	src := SourceFunc(func(context.Context, Request) ([]*problemgen.Problem, error) {
		calls++
		return nil, nil
	})

	if NewThrottle(src, 0) == nil {
		t.Fatal("NewThrottle(src, 0) returned nil")
	}

	th := NewThrottle(src, 1)
	_, err := th.Fetch(context.Background(), Request{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = th.Fetch(ctx, Request{})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestStepSolver(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"steps":["Write 5/7 as a division.","5 / 7 = 0.714","", "Round: 0.71"]}`),
	})
	s := NewStepSolver(mock, DefaultConfig())

	steps, err := s.Solve(context.Background(), &problemgen.Problem{ID: "frac-5-7", Prompt: "5/7 as decimal", Answer: "0.71"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Write 5/7 as a division.", "5 / 7 = 0.714", "Round: 0.71"}, steps)
	assert.Equal(t, llm.Call{Purpose: llm.PurposeSolve, Subject: "frac-5-7"}, mock.Calls[0].Call)
	assert.Equal(t, StepsSchema, mock.Calls[0].Schema)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "Answer: 0.71")

	_, err = s.Solve(context.Background(), nil)
	assert.Error(t, err)

	_, err = s.Solve(context.Background(), &problemgen.Problem{Prompt: "p", Answer: "a"})
	assert.Error(t, err, "exhausted mock should fail")
}
