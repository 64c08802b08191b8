package answer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// CheckChoice validates a KindChoice problem. The learner may answer with
// the option text or its 1-based index.
func CheckChoice(input string, p *problemgen.Problem) problemgen.Verdict {
	in := strings.TrimSpace(input)
	picked := in
	if problemgen.EqualFoldTrim(in, p.Answer) {
		return problemgen.Verdict{Correct: true}
	}
	if idx, err := strconv.Atoi(in); err == nil && idx >= 1 && idx <= len(p.Choices) {
		picked = p.Choices[idx-1]
	}
	if problemgen.EqualFoldTrim(picked, p.Answer) {
		return problemgen.Verdict{Correct: true}
	}
	for _, alt := range p.Accepted {
		if problemgen.EqualFoldTrim(picked, alt) {
			return problemgen.Verdict{Correct: true}
		}
	}
	return problemgen.Verdict{
		Correct:  false,
		Feedback: fmt.Sprintf("Not quite. The answer was %s.", p.Shown()),
	}
}
