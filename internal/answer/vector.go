package answer

import (
	"fmt"
	"math"
	"strings"

	"github.com/abhisek/drillgym/internal/problemgen"
)

var yesNo = map[string]string{
	"yes": "yes", "y": "yes", "ja": "yes", "true": "yes",
	"no": "no", "n": "no", "nee": "no", "false": "no",
}

// ParseVector parses "[a, b]", "(a; b)" or "a, b" into its components.
// Components may be expressions such as "sqrt(2)" or "3/2".
func ParseVector(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "["), "(")
	s = strings.TrimSuffix(strings.TrimSuffix(s, "]"), ")")
	parts := splitTopLevel(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty vector")
	}
	out := make([]float64, len(parts))
	for i, part := range parts {
		v, err := EvalNumber(part)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// splitTopLevel splits on commas and semicolons outside parentheses.
// With a semicolon present, commas are treated as decimal separators.
func splitTopLevel(s string) []string {
	sep := ','
	if strings.ContainsRune(s, ';') {
		sep = ';'
	}
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch {
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			depth--
		case r == sep && depth == 0:
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	if last := strings.TrimSpace(s[start:]); last != "" || len(parts) > 0 {
		parts = append(parts, last)
	}
	return parts
}

// CheckVector validates a KindVector problem. Canonical answers of
// "yes" or "no" are compared as text.
func CheckVector(input string, p *problemgen.Problem) problemgen.Verdict {
	wrong := problemgen.Verdict{
		Correct:  false,
		Feedback: fmt.Sprintf("Not quite. The answer was %s.", p.Shown()),
	}

	if want, ok := yesNo[NormalizeText(p.Answer)]; ok {
		if yesNo[NormalizeText(input)] == want {
			return problemgen.Verdict{Correct: true}
		}
		return wrong
	}

	want, err := ParseVector(p.Answer)
	if err != nil {
		return CheckText(input, p)
	}
	got, err := ParseVector(input)
	if err != nil {
		return problemgen.Verdict{Correct: false, Feedback: "Enter a vector like [3, -1]."}
	}
	if len(got) != len(want) {
		return problemgen.Verdict{
			Correct:  false,
			Feedback: fmt.Sprintf("Expected %d components. The answer was %s.", len(want), p.Shown()),
		}
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-6*math.Max(1, math.Abs(want[i])) {
			return wrong
		}
	}
	return problemgen.Verdict{Correct: true}
}
