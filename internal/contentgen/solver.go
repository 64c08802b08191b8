package contentgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/drillgym/internal/llm"
	"github.com/abhisek/drillgym/internal/problemgen"
)

// StepSolver asks an LLM for a worked solution.
type StepSolver struct {
	provider llm.Provider
	config   Config
}

// NewStepSolver creates a solver backed by the given provider.
func NewStepSolver(provider llm.Provider, cfg Config) *StepSolver {
	return &StepSolver{provider: provider, config: cfg}
}

type stepsOutput struct {
	Steps []string `json:"steps"`
}

// Solve returns ordered solution steps for p.
func (s *StepSolver) Solve(ctx context.Context, p *problemgen.Problem) ([]string, error) {
	if p == nil {
		return nil, errors.New("solve: nil problem")
	}
	ctx = llm.WithCall(ctx, llm.Call{Purpose: llm.PurposeSolve, Subject: p.ID})

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: stepsSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildStepsMessage(p)},
		},
		Schema:      StepsSchema,
		MaxTokens:   s.config.StepsMaxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("solution steps: %w", err)
	}

	var out stepsOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse solution steps: %w", err)
	}

	steps := out.Steps[:0]
	for _, st := range out.Steps {
		if st != "" {
			steps = append(steps, st)
		}
	}
	return steps, nil
}
