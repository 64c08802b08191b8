package answer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// minPartialLen is the shortest input accepted as a partial phrasing of
// the canonical answer.
const minPartialLen = 3

// NormalizeText trims, lowercases, collapses whitespace and strips
// trailing punctuation.
func NormalizeText(s string) string {
	s = problemgen.Normalize(s)
	return strings.TrimRight(s, ".!?;:, ")
}

// MatchText reports whether input matches the canonical answer or one of
// the accepted alternatives. After normalization either side may contain
// the other, which tolerates partial phrasing such as "mitochondria" for
// "the mitochondria".
func MatchText(input, canonical string, accepted []string) bool {
	in := NormalizeText(input)
	if in == "" {
		return false
	}
	for _, cand := range append([]string{canonical}, accepted...) {
		c := NormalizeText(cand)
		if c == "" {
			continue
		}
		if in == c || strings.Contains(in, c) {
			return true
		}
		if utf8.RuneCountInString(in) >= minPartialLen && strings.Contains(c, in) {
			return true
		}
	}
	return false
}

// CheckText validates a KindText problem.
func CheckText(input string, p *problemgen.Problem) problemgen.Verdict {
	if MatchText(input, p.Answer, p.Accepted) {
		return problemgen.Verdict{Correct: true}
	}
	return problemgen.Verdict{
		Correct:  false,
		Feedback: fmt.Sprintf("Not quite. The answer was %s.", p.Shown()),
	}
}

var (
	subscriptRe   = regexp.MustCompile(`_\{([^{}]*)\}`)
	superscriptRe = regexp.MustCompile(`\^\{([^{}]*)\}`)
)

// StripMarkup removes subscript and superscript decoration: "H_{2}O"
// becomes "H2O" and "x^{2}" becomes "x^2".
func StripMarkup(s string) string {
	s = subscriptRe.ReplaceAllString(s, "$1")
	s = superscriptRe.ReplaceAllString(s, "^$1")
	return strings.NewReplacer("_", "", "{", "", "}", "").Replace(s)
}

// MatchPlain compares after normalization and markup stripping, with no
// partial matching.
func MatchPlain(input, canonical string, accepted []string) bool {
	in := problemgen.Normalize(StripMarkup(input))
	if in == "" {
		return false
	}
	for _, cand := range append([]string{canonical}, accepted...) {
		if in == problemgen.Normalize(StripMarkup(cand)) {
			return true
		}
	}
	return false
}
