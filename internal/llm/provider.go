package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured content. The drill engine uses it for
// problem batches and worked solutions.
type Provider interface {
	// Generate sends req and returns the output. With req.Schema set the
	// content is JSON that passed validation against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model the provider sends requests to.
	ModelID() string
}

// Request is a single-turn prompt plus its output contract.
type Request struct {
	// System sets the role, e.g. "You write practice problems".
	System string

	// Messages is the conversation. Batches and solutions send one user
	// message.
	Messages []Message

	// Schema switches the provider to its native structured output. Nil
	// asks for plain text.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Message is one turn of a conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema for structured output.
type Schema struct {
	// Name is kebab-case, e.g. "problem-batch". OpenAI sends it as the
	// schema name and validation caches on it.
	Name        string
	Description string
	Definition  map[string]any
}

// Stop reasons, normalized across providers.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Response holds the provider output.
type Response struct {
	// Content is validated JSON when the request had a schema, the raw
	// text otherwise.
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

// Usage reports token consumption for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// finish turns raw provider output into a Response: a cut-off output
// becomes ErrMaxTokensExceeded, and schema output is cleaned and
// validated.
func finish(req Request, content json.RawMessage, stop, model string, usage Usage) (*Response, error) {
	if stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Limit: req.MaxTokens, Content: content}
	}
	content, err := validateResponse(req.Schema, content)
	if err != nil {
		return nil, err
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}
