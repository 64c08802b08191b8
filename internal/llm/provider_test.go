package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestMockProvider_ReturnsCanedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`)},
	)

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 0}},
	)

	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestCallContext(t *testing.T) {
	ctx := context.Background()
	if c := CallFrom(ctx); c.Purpose != PurposeUnknown {
		t.Fatalf("expected unknown purpose, got %q", c.Purpose)
	}

	ctx = WithCall(ctx, Call{Purpose: PurposeRefill, Subject: "Chemistry"})
	c := CallFrom(ctx)
	if c.Purpose != PurposeRefill || c.Subject != "Chemistry" {
		t.Fatalf("unexpected call: %+v", c)
	}
	if c.String() != `content-refill "Chemistry"` {
		t.Fatalf("String() = %q", c.String())
	}

	if c := CallFrom(WithCall(context.Background(), Call{Subject: "x"})); c.Purpose != PurposeUnknown {
		t.Fatalf("empty purpose should become unknown, got %q", c.Purpose)
	}
}

func TestMockProvider_ScriptsByPurpose(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`"default"`)}).
		Script(PurposeSolve, MockResponse{Content: json.RawMessage(`{"steps":["a"]}`)})

	solve := WithCall(context.Background(), Call{Purpose: PurposeSolve, Subject: "p1"})
	refill := WithCall(context.Background(), Call{Purpose: PurposeRefill, Subject: "Chemistry"})

	resp, err := mock.Generate(refill, Request{})
	if err != nil || string(resp.Content) != `"default"` {
		t.Fatalf("refill got %v, %v", resp, err)
	}
	resp, err = mock.Generate(solve, Request{})
	if err != nil || string(resp.Content) != `{"steps":["a"]}` {
		t.Fatalf("solve got %v, %v", resp, err)
	}

	_, err = mock.Generate(solve, Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
	if unavail.Call.Subject != "p1" {
		t.Fatalf("error lost the call: %+v", unavail.Call)
	}

	if got := mock.CallsFor(PurposeSolve); len(got) != 2 || got[0].Subject != "p1" {
		t.Fatalf("CallsFor(solve) = %+v", got)
	}
	if got := mock.CallsFor(PurposeRefill); len(got) != 1 || got[0].Subject != "Chemistry" {
		t.Fatalf("CallsFor(refill) = %+v", got)
	}
}

func TestErrorsNameTheCall(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrInvalidResponse{Err: errors.New("missing property 'answer'")}})
	p := WithLogging(mock, nil)

	ctx := WithCall(context.Background(), Call{Purpose: PurposeRefill, Subject: "Chemistry"})
	_, err := p.Generate(ctx, Request{})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
	if inv.Call.Purpose != PurposeRefill {
		t.Fatalf("call not stamped: %+v", inv.Call)
	}
	if want := `content-refill "Chemistry": invalid LLM response`; !strings.HasPrefix(err.Error(), want) {
		t.Fatalf("error = %q, want prefix %q", err, want)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: "anthropic"},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "openai without key",
			cfg:     Config{Provider: "openai"},
			wantErr: true,
		},
		{
			name:    "openai with key",
			cfg:     Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Provider: "mock"},
			wantErr: false,
		},
		{
			name:    "none disables ai content",
			cfg:     Config{Provider: "none"},
			wantErr: false,
		},
		{
			name:    "openrouter without key",
			cfg:     Config{Provider: "openrouter"},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Discover(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}

	cfg := DefaultConfig()
	if cfg.Discover() {
		t.Fatal("expected no provider without keys")
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	cfg = DefaultConfig()
	if !cfg.Discover() {
		t.Fatal("expected anthropic to be discovered")
	}
	if cfg.Provider != "anthropic" || cfg.Anthropic.APIKey != "sk-ant" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	explicit := DefaultConfig()
	explicit.Provider = "mock"
	if !explicit.Discover() || explicit.Provider != "mock" {
		t.Fatal("explicit provider must win over discovery")
	}
}

func TestNewProvider_None(t *testing.T) {
	p, err := NewProvider(context.Background(), DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil provider for none, got %T", p)
	}
}

func TestLookupCost(t *testing.T) {
	if c := LookupCost("gpt-4o-mini"); c == nil || c.InputPerMTok != 0.15 {
		t.Fatalf("unexpected cost for gpt-4o-mini: %+v", c)
	}
	if c := LookupCost("google/gemini-2.0-flash-001"); c == nil {
		t.Fatal("expected vendor-prefixed id to resolve")
	}
	if c := LookupCost("no-such-model"); c != nil {
		t.Fatalf("expected nil, got %+v", c)
	}
	cost := ModelCost{InputPerMTok: 1, OutputPerMTok: 5}
	if got := cost.Cost(1_000_000, 200_000); got != 2 {
		t.Fatalf("Cost = %v, want 2", got)
	}
}

func TestLoggingProvider_PassesThrough(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"ok":true}`), Usage: Usage{InputTokens: 3, OutputTokens: 4}},
		MockResponse{Err: &ErrProviderUnavailable{}},
	)
	p := WithLogging(mock, nil)

	resp, err := p.Generate(WithCall(context.Background(), Call{Purpose: PurposeRefill}), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"ok":true}` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error to pass through")
	}
	if p.ModelID() != "mock" {
		t.Fatalf("ModelID = %q", p.ModelID())
	}
}
