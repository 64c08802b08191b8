package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func batchSchema() *Schema {
	return &Schema{
		Name:        "test-batch",
		Description: "Practice problems",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"problems": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"question":   map[string]any{"type": "string"},
							"answer":     map[string]any{"type": "string"},
							"difficulty": map[string]any{"type": "integer", "minimum": 1, "maximum": 5},
							"kind":       map[string]any{"type": "string", "enum": []any{"text", "numeric", "choice"}},
						},
						"required": []any{"question", "answer"},
					},
				},
			},
			"required": []any{"problems"},
		},
	}
}

func TestValidateResponse_ValidBatch(t *testing.T) {
	raw := json.RawMessage(`{"problems":[{"question":"Symbol for sodium?","answer":"Na","difficulty":1,"kind":"text"}]}`)
	got, err := validateResponse(batchSchema(), raw)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if string(got) != string(raw) {
		t.Fatalf("content changed: %s", got)
	}
}

func TestValidateResponse_ValidWithoutOptional(t *testing.T) {
	raw := json.RawMessage(`{"problems":[{"question":"7 x 8?","answer":"56"}]}`)
	if _, err := validateResponse(batchSchema(), raw); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateResponse_StripsFence(t *testing.T) {
	raw := json.RawMessage("```json\n{\"problems\":[{\"question\":\"7 x 8?\",\"answer\":\"56\"}]}\n```\n")
	got, err := validateResponse(batchSchema(), raw)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if strings.Contains(string(got), "```") {
		t.Fatalf("fence kept: %s", got)
	}
	var doc map[string]any
	if err := json.Unmarshal(got, &doc); err != nil {
		t.Fatalf("cleaned content is not JSON: %v", err)
	}
}

func TestValidateResponse_ReportsLocation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "missing answer",
			raw:  `{"problems":[{"question":"ok","answer":"a"},{"question":"7 x 8?"}]}`,
			want: []string{"test-batch", "/problems/1", "answer"},
		},
		{
			name: "difficulty as string",
			raw:  `{"problems":[{"question":"q","answer":"a","difficulty":"hard"}]}`,
			want: []string{"/problems/0/difficulty"},
		},
		{
			name: "unknown kind",
			raw:  `{"problems":[{"question":"q","answer":"a","kind":"essay"}]}`,
			want: []string{"/problems/0/kind"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validateResponse(batchSchema(), json.RawMessage(tt.raw))
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T %v", err, err)
			}
			if string(invErr.Content) != tt.raw {
				t.Fatalf("raw content not kept: %s", invErr.Content)
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not mention %q", err, w)
				}
			}
		})
	}
}

func TestValidateResponse_MalformedJSON(t *testing.T) {
	_, err := validateResponse(batchSchema(), json.RawMessage(`{not json}`))
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
	if !strings.Contains(err.Error(), "test-batch") {
		t.Fatalf("error does not name the schema: %v", err)
	}
}

func TestValidateResponse_EmptyResponse(t *testing.T) {
	if _, err := validateResponse(batchSchema(), json.RawMessage(``)); err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	raw := json.RawMessage("Step one: divide.")
	got, err := validateResponse(nil, raw)
	if err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
	if string(got) != string(raw) {
		t.Fatalf("plain text changed: %s", got)
	}
}

func TestFinish(t *testing.T) {
	req := Request{Schema: batchSchema(), MaxTokens: 256}

	_, err := finish(req, json.RawMessage(`{"problems":[`), StopMaxTokens, "m", Usage{})
	var trunc *ErrMaxTokensExceeded
	if !errors.As(err, &trunc) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T", err)
	}
	if trunc.Limit != 256 || string(trunc.Content) != `{"problems":[` {
		t.Fatalf("unexpected truncation error: %+v", trunc)
	}

	resp, err := finish(req, json.RawMessage(`{"problems":[]}`), StopEnd, "m", Usage{InputTokens: 3, OutputTokens: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.TotalTokens != 7 || resp.Model != "m" || resp.StopReason != StopEnd {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
