package contentgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// Item is one problem as returned by the content service.
type Item struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	Accepted    []string `json:"accepted,omitempty"`
	Kind        string   `json:"kind,omitempty"`
	Choices     []string `json:"choices,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Steps       []string `json:"steps,omitempty"`
}

type batchOutput struct {
	Problems []Item `json:"problems"`
}

// ParseBatch extracts items from raw service output. It strips code
// fences, tries a structured parse, then retries on the span between
// the first opening and last closing bracket. When nothing parses it
// returns an empty slice with the last error.
func ParseBatch(raw string) ([]Item, error) {
	s := unquote(strings.TrimSpace(raw))
	s = stripFences(s)

	items, err := decodeItems(s)
	if err == nil {
		return items, nil
	}

	if span, ok := bracketSpan(s); ok {
		if items, spanErr := decodeItems(span); spanErr == nil {
			return items, nil
		}
	}
	return []Item{}, fmt.Errorf("parse content batch: %w", err)
}

// unquote unwraps a JSON string literal, which is how providers return
// unstructured text.
func unquote(s string) string {
	if !strings.HasPrefix(s, `"`) {
		return s
	}
	var text string
	if err := json.Unmarshal([]byte(s), &text); err != nil {
		return s
	}
	return strings.TrimSpace(text)
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the language tag line ("json").
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

func bracketSpan(s string) (string, bool) {
	start := strings.IndexAny(s, "{[")
	end := strings.LastIndexAny(s, "}]")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func decodeItems(s string) ([]Item, error) {
	if s == "" {
		return nil, errors.New("empty content")
	}
	switch s[0] {
	case '[':
		var items []Item
		if err := json.Unmarshal([]byte(s), &items); err != nil {
			return nil, err
		}
		return items, nil
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal([]byte(s), &probe); err != nil {
			return nil, err
		}
		if _, ok := probe["problems"]; ok {
			var out batchOutput
			if err := json.Unmarshal([]byte(s), &out); err != nil {
				return nil, err
			}
			return out.Problems, nil
		}
		var item Item
		if err := json.Unmarshal([]byte(s), &item); err != nil {
			return nil, err
		}
		return []Item{item}, nil
	default:
		return nil, fmt.Errorf("unexpected leading character %q", s[0])
	}
}

// Problem converts an item into a Problem. It returns nil when the item
// lacks a question or an answer.
func (it Item) Problem(prefix string, level int) *problemgen.Problem {
	q := strings.TrimSpace(it.Question)
	a := strings.TrimSpace(it.Answer)
	if q == "" || a == "" {
		return nil
	}

	p := &problemgen.Problem{
		ID:            problemgen.NewID(prefix),
		Prompt:        q,
		Answer:        a,
		Accepted:      it.Accepted,
		Explanation:   it.Explanation,
		SolutionSteps: it.Steps,
		Kind:          problemgen.KindText,
		Metadata: map[string]string{
			"origin": "ai",
			"level":  fmt.Sprint(problemgen.ClampLevel(level)),
		},
	}

	switch problemgen.AnswerKind(it.Kind) {
	case problemgen.KindNumeric:
		p.Kind = problemgen.KindNumeric
		p.Tolerance = problemgen.Tolerance{Mode: problemgen.Relative, Epsilon: 0.1}
	case problemgen.KindChoice:
		if len(it.Choices) > 1 {
			p.Kind = problemgen.KindChoice
			p.Choices = it.Choices
		}
	}
	return p
}
