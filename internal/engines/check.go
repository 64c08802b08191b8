package engines

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/drillgym/internal/problemgen"
)

// Failure is one self-consistency violation.
type Failure struct {
	Engine    string `json:"engine"`
	Level     int    `json:"level"`
	ProblemID string `json:"problem_id,omitempty"`
	Prompt    string `json:"prompt,omitempty"`
	Answer    string `json:"answer,omitempty"`
	Reason    string `json:"reason"`
}

func (f Failure) String() string {
	return fmt.Sprintf("%s L%d %s: %s (prompt %q, answer %q)", f.Engine, f.Level, f.ProblemID, f.Reason, f.Prompt, f.Answer)
}

// Check generates trials problems per level for every generator and
// verifies that each one is well formed and accepts its own answer.
// Generators run concurrently, at most parallel at a time.
func Check(ctx context.Context, gens []problemgen.Generator, trials, parallel int) ([]Failure, error) {
	if parallel < 1 {
		parallel = 1
	}

	var (
		mu       sync.Mutex
		failures []Failure
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for _, gen := range gens {
		g.Go(func() error {
			fs, err := checkOne(ctx, gen, trials)
			mu.Lock()
			failures = append(failures, fs...)
			mu.Unlock()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return failures, err
	}

	sort.SliceStable(failures, func(i, j int) bool {
		if failures[i].Engine != failures[j].Engine {
			return failures[i].Engine < failures[j].Engine
		}
		return failures[i].Level < failures[j].Level
	})
	return failures, nil
}

func checkOne(ctx context.Context, gen problemgen.Generator, trials int) ([]Failure, error) {
	var out []Failure
	for level := problemgen.MinLevel; level <= problemgen.MaxLevel; level++ {
		for range trials {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			if f, bad := checkProblem(ctx, gen, level); bad {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

func checkProblem(ctx context.Context, gen problemgen.Generator, level int) (f Failure, bad bool) {
	f = Failure{Engine: gen.ID(), Level: level}
	defer func() {
		if r := recover(); r != nil {
			f.Reason = fmt.Sprintf("panic: %v", r)
			bad = true
		}
	}()

	p := gen.Generate(ctx, level)
	switch {
	case p == nil:
		f.Reason = "nil problem"
		return f, true
	case p.Prompt == "" || p.Answer == "":
		f.ProblemID, f.Reason = p.ID, "empty prompt or answer"
		return f, true
	}
	f.ProblemID, f.Prompt, f.Answer = p.ID, p.Prompt, p.Answer

	if v := gen.Validate(p.Answer, p); !v.Correct {
		f.Reason = "rejects its own answer: " + v.Feedback
		return f, true
	}
	return f, false
}
