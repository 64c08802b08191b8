package session

import (
	"context"
	"time"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// DefaultCategory is the progress key used when an engine has no skill
// breakdown.
const DefaultCategory = "general"

// Error types recorded with wrong answers.
const (
	ErrorWrongAnswer = "wrong_answer"
	ErrorTimeout     = "timeout"
)

// Record is one result as handed to the Repository.
type Record struct {
	EngineID  string
	Category  string
	Correct   bool
	TimeTaken time.Duration
	Score     int
	Metrics   map[string]string
}

// Feedback is the learner's classification of a mistake.
type Feedback struct {
	EngineID  string
	ProblemID string
	Kind      string
	Sentiment string
}

// Repository persists progress.
type Repository interface {
	// Level returns the stored level for an engine.
	Level(ctx context.Context, engineID string) (Level, error)

	// SaveResult records one submission and updates progression.
	SaveResult(ctx context.Context, r Record) error
}

// FeedbackSaver is implemented by repositories that keep mistake
// classifications.
type FeedbackSaver interface {
	SaveFeedback(ctx context.Context, f Feedback) error
}

// Solver produces worked solutions for problems without their own steps.
type Solver interface {
	Solve(ctx context.Context, p *problemgen.Problem) ([]string, error)
}

// Lookup resolves engine ids to generators.
type Lookup interface {
	Get(id string) (problemgen.Generator, bool)
}
