package problemgen

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Level bounds.
const (
	MinLevel = 1
	MaxLevel = 5
)

// Generator produces practice problems for one subject or skill.
//
// Generate must always terminate and must never fail: internal problems
// degrade to a fallback Problem. Validate must be a pure function of its
// arguments.
type Generator interface {
	// ID is the registry key, e.g. "fractions".
	ID() string

	// Name is the display name, e.g. "Fractions".
	Name() string

	// Generate returns a new problem for the given level. Unsupported
	// levels fall back to level 1.
	Generate(ctx context.Context, level int) *Problem

	// Validate checks the learner's raw input against a problem produced
	// by this generator.
	Validate(input string, p *Problem) Verdict
}

// ClampLevel maps any integer into [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// NewID returns a fresh problem id with the given prefix.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Fallback is the problem served when a generator cannot produce one.
func Fallback(genID string) *Problem {
	return &Problem{
		ID:       NewID(genID + "-fallback"),
		Prompt:   "Type the word: ready",
		Answer:   "ready",
		Context:  "Temporary problem (generator unavailable)",
		Kind:     KindText,
		Metadata: map[string]string{"fallback": "true"},
	}
}

// Safe wraps a Generator so that panics and empty results in Generate
// become a Fallback problem and panics in Validate become an incorrect
// verdict.
func Safe(g Generator, logger *zap.Logger) Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if s, ok := g.(*safeGenerator); ok {
		return s
	}
	return &safeGenerator{inner: g, logger: logger}
}

type safeGenerator struct {
	inner  Generator
	logger *zap.Logger
}

func (s *safeGenerator) ID() string   { return s.inner.ID() }
func (s *safeGenerator) Name() string { return s.inner.Name() }

func (s *safeGenerator) Generate(ctx context.Context, level int) (p *Problem) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("generator panicked",
				zap.String("generator", s.inner.ID()),
				zap.String("panic", fmt.Sprint(r)))
			p = Fallback(s.inner.ID())
		}
	}()

	p = s.inner.Generate(ctx, ClampLevel(level))
	if p == nil || p.Prompt == "" || p.Answer == "" {
		s.logger.Warn("generator returned an empty problem", zap.String("generator", s.inner.ID()))
		return Fallback(s.inner.ID())
	}
	return p
}

func (s *safeGenerator) Validate(input string, p *Problem) (v Verdict) {
	if p == nil {
		return Verdict{Correct: false, Feedback: "No active problem."}
	}
	if p.Meta("fallback") == "true" {
		return ValidateFallback(input, p)
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("validator panicked",
				zap.String("generator", s.inner.ID()),
				zap.String("panic", fmt.Sprint(r)))
			v = Verdict{Correct: false, Feedback: "Could not check this answer."}
		}
	}()
	return s.inner.Validate(input, p)
}

// ValidateFallback checks a Fallback problem.
func ValidateFallback(input string, p *Problem) Verdict {
	if EqualFoldTrim(input, p.Answer) {
		return Verdict{Correct: true}
	}
	return Verdict{Correct: false, Feedback: fmt.Sprintf("The answer was %s.", p.Shown())}
}
