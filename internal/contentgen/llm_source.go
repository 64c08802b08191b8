package contentgen

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/drillgym/internal/llm"
	"github.com/abhisek/drillgym/internal/problemgen"
)

// LLMSource implements Source using an LLM provider.
type LLMSource struct {
	provider llm.Provider
	config   Config
	logger   *zap.Logger
}

// NewLLMSource creates a Source backed by the given provider.
func NewLLMSource(provider llm.Provider, cfg Config, logger *zap.Logger) *LLMSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMSource{provider: provider, config: cfg, logger: logger}
}

// Fetch asks the provider for a batch. Output that fails schema
// validation is still salvaged through ParseBatch.
func (s *LLMSource) Fetch(ctx context.Context, req Request) ([]*problemgen.Problem, error) {
	ctx = llm.WithCall(ctx, llm.Call{Purpose: llm.PurposeRefill, Subject: req.Topic})

	if req.Count < 1 {
		req.Count = 1
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System: batchSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildBatchMessage(req, s.config.MaxExcluded)},
		},
		Schema:      BatchSchema,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})

	var raw string
	switch {
	case err == nil:
		raw = string(resp.Content)
	default:
		var inv *llm.ErrInvalidResponse
		var trunc *llm.ErrMaxTokensExceeded
		switch {
		case errors.As(err, &inv) && len(inv.Content) > 0:
			raw = string(inv.Content)
		case errors.As(err, &trunc) && len(trunc.Content) > 0:
			raw = string(trunc.Content)
		default:
			return nil, fmt.Errorf("content generation: %w", err)
		}
		s.logger.Debug("salvaging malformed content batch", zap.String("topic", req.Topic), zap.Error(err))
	}

	items, perr := ParseBatch(raw)
	if perr != nil {
		s.logger.Debug("content batch did not parse", zap.String("topic", req.Topic), zap.Error(perr))
	}

	problems := make([]*problemgen.Problem, 0, len(items))
	for _, it := range items {
		if p := it.Problem("ai", req.Difficulty); p != nil {
			problems = append(problems, p)
		}
	}
	if len(problems) == 0 {
		return nil, ErrEmptyBatch
	}
	return problems, nil
}
