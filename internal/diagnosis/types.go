// Package diagnosis guesses why an answer was wrong from cheap signals:
// response time, closeness to the answer and the learner's standing.
package diagnosis

import (
	"time"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// Pattern names the likely cause of a wrong answer.
type Pattern string

const (
	PatternSpeedRush Pattern = "speed-rush"
	PatternNearMiss  Pattern = "near-miss"
	PatternCareless  Pattern = "careless"
)

// Input holds the context of one wrong answer.
type Input struct {
	Problem   *problemgen.Problem
	Answer    string
	TimeTaken time.Duration

	// Level is the learner's current box for the engine.
	Level int
}
