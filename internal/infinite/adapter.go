// Package infinite serves problems from an AI-refilled cache, falling
// back to a bundled backup pool when the cache is dry.
package infinite

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/drillgym/internal/answer"
	"github.com/abhisek/drillgym/internal/contentgen"
	"github.com/abhisek/drillgym/internal/metrics"
	"github.com/abhisek/drillgym/internal/problemgen"
)

// ErrNoBackup is returned when an adapter is built without backup problems.
var ErrNoBackup = errors.New("infinite: backup pool is empty")

// OfflineContext marks problems served from the backup pool.
const OfflineContext = "(offline)"

// Config controls refill behavior.
type Config struct {
	// Topic and Context describe the content to request.
	Topic   string
	Context string

	// LowWater triggers a refill when the queue is shorter than this.
	LowWater int

	// Batch is the number of problems requested per refill.
	Batch int

	// Timeout bounds one refill. Refills are detached from the caller's
	// context, so this is their only deadline.
	Timeout time.Duration

	// Format is applied to the text of every fetched problem.
	Format contentgen.Formatter
}

// DefaultConfig returns the recommended refill settings.
func DefaultConfig() Config {
	return Config{LowWater: 3, Batch: 5, Timeout: 45 * time.Second}
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter's logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// WithConfig replaces the refill settings. Zero fields keep defaults.
func WithConfig(c Config) Option {
	return func(a *Adapter) {
		d := a.cfg
		if c.LowWater > 0 {
			d.LowWater = c.LowWater
		}
		if c.Batch > 0 {
			d.Batch = c.Batch
		}
		if c.Timeout > 0 {
			d.Timeout = c.Timeout
		}
		d.Topic, d.Context, d.Format = c.Topic, c.Context, c.Format
		a.cfg = d
	}
}

// Adapter is a Generator backed by a queue of fetched problems.
//
// Generate never blocks on the content source: when the queue runs low
// it starts a detached refill and serves from whatever is available.
// At most one refill is in flight per adapter. A refill may outlive the
// session that triggered it; its results simply stay queued.
type Adapter struct {
	id     string
	name   string
	backup []*problemgen.Problem
	source contentgen.Source
	cfg    Config
	logger *zap.Logger

	mu    sync.Mutex
	queue []*problemgen.Problem

	inFlight atomic.Bool
	wg       sync.WaitGroup
}

// New builds an adapter seeded with shuffled copies of backup. A nil
// source disables refills.
func New(id, name string, backup []*problemgen.Problem, source contentgen.Source, opts ...Option) (*Adapter, error) {
	if len(backup) == 0 {
		return nil, ErrNoBackup
	}
	a := &Adapter{
		id:     id,
		name:   name,
		backup: backup,
		source: source,
		cfg:    DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(a)
	}
	if a.cfg.Topic == "" {
		a.cfg.Topic = name
	}

	a.queue = make([]*problemgen.Problem, 0, len(backup))
	for _, i := range rand.Perm(len(backup)) {
		a.queue = append(a.queue, a.fresh(backup[i]))
	}
	metrics.QueueDepth.WithLabelValues(id).Set(float64(len(a.queue)))
	return a, nil
}

func (a *Adapter) ID() string   { return a.id }
func (a *Adapter) Name() string { return a.name }

// Generate pops the next cached problem, or a backup copy marked offline.
func (a *Adapter) Generate(_ context.Context, level int) *problemgen.Problem {
	a.mu.Lock()
	low := len(a.queue) < a.cfg.LowWater
	var p *problemgen.Problem
	if len(a.queue) > 0 {
		p = a.queue[0]
		a.queue[0] = nil
		a.queue = a.queue[1:]
	}
	depth := len(a.queue)
	a.mu.Unlock()

	if low {
		a.refill(level)
	}
	metrics.QueueDepth.WithLabelValues(a.id).Set(float64(depth))

	if p != nil {
		metrics.ServedTotal.WithLabelValues(a.id, "cache").Inc()
		return p
	}

	metrics.ServedTotal.WithLabelValues(a.id, "backup").Inc()
	b := a.fresh(a.backup[rand.IntN(len(a.backup))])
	if b.Context == "" {
		b.Context = OfflineContext
	} else {
		b.Context += " " + OfflineContext
	}
	return b
}

// Validate compares normalized text, ignoring sub/superscript markup,
// against the answer and its accepted alternatives. Numeric and choice
// problems also go through the checker for their kind, so tolerances and
// answers by option number count.
func (a *Adapter) Validate(input string, p *problemgen.Problem) problemgen.Verdict {
	if answer.MatchPlain(input, p.Answer, p.Accepted) {
		return problemgen.Verdict{Correct: true}
	}
	if p.Kind != "" && p.Kind != problemgen.KindText {
		if v := answer.Check(input, p); v.Correct {
			return v
		}
	}
	return problemgen.Verdict{Correct: false, Feedback: "Correct answer: " + p.Shown()}
}

// QueueLen reports the number of cached problems.
func (a *Adapter) QueueLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

// Refilling reports whether a refill is in flight.
func (a *Adapter) Refilling() bool { return a.inFlight.Load() }

// Wait blocks until in-flight refills finish. Used by tests and shutdown.
func (a *Adapter) Wait() { a.wg.Wait() }

// refill starts a detached fetch unless one is already running.
func (a *Adapter) refill(level int) {
	if a.source == nil || !a.inFlight.CompareAndSwap(false, true) {
		return
	}
	req := contentgen.Request{
		Topic:      a.cfg.Topic,
		Context:    a.cfg.Context,
		Count:      a.cfg.Batch,
		Difficulty: problemgen.ClampLevel(level),
		Exclude:    a.queuedPrompts(),
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer a.inFlight.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Timeout)
		defer cancel()

		start := time.Now()
		problems, err := a.fetch(ctx, req)
		metrics.RefillDuration.WithLabelValues(a.id).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.RefillTotal.WithLabelValues(a.id, "error").Inc()
			a.logger.Warn("content refill failed", zap.String("engine", a.id), zap.Error(err))
			return
		}

		added := a.enqueue(problems)
		metrics.RefillTotal.WithLabelValues(a.id, "ok").Inc()
		metrics.RefillProblems.WithLabelValues(a.id).Add(float64(added))
		a.logger.Debug("content refill complete",
			zap.String("engine", a.id),
			zap.Int("added", added),
			zap.Duration("latency", time.Since(start)))
	}()
}

// fetch calls the source, converting a panic into an error.
func (a *Adapter) fetch(ctx context.Context, req contentgen.Request) (ps []*problemgen.Problem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("content source panicked")
		}
	}()
	return a.source.Fetch(ctx, req)
}

func (a *Adapter) enqueue(problems []*problemgen.Problem) int {
	format := contentgen.Chain(strings.TrimSpace, a.cfg.Format)
	ready := make([]*problemgen.Problem, 0, len(problems))
	for _, p := range problems {
		if p == nil || p.Prompt == "" || p.Answer == "" {
			continue
		}
		c := p.Clone()
		if c.ID == "" {
			c.ID = problemgen.NewID(a.id)
		}
		c.Prompt = format(c.Prompt)
		c.Answer = format(c.Answer)
		c.Explanation = format(c.Explanation)
		if c.DisplayAnswer != "" {
			c.DisplayAnswer = format(c.DisplayAnswer)
		}
		for i := range c.Accepted {
			c.Accepted[i] = format(c.Accepted[i])
		}
		ready = append(ready, c)
	}

	a.mu.Lock()
	a.queue = append(a.queue, ready...)
	depth := len(a.queue)
	a.mu.Unlock()

	metrics.QueueDepth.WithLabelValues(a.id).Set(float64(depth))
	return len(ready)
}

func (a *Adapter) queuedPrompts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.queue))
	for _, p := range a.queue {
		out = append(out, p.Prompt)
	}
	return out
}

func (a *Adapter) fresh(p *problemgen.Problem) *problemgen.Problem {
	c := p.Clone()
	c.ID = problemgen.NewID(a.id)
	return c
}
