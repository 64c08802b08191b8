package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/drillgym/internal/diagnosis"
	"github.com/abhisek/drillgym/internal/metrics"
	"github.com/abhisek/drillgym/internal/problemgen"
)

var (
	// ErrUnknownEngine is returned when the engine id is not registered.
	ErrUnknownEngine = errors.New("session: unknown engine")

	// ErrClosed is returned by every intent after Close.
	ErrClosed = errors.New("session: closed")

	// ErrNotAccepting is returned when an intent does not apply to the
	// current state, e.g. editing the input after a correct answer.
	ErrNotAccepting = errors.New("session: action not allowed now")
)

// Config controls a Runner.
type Config struct {
	QuestionCount int
	TimeLimit     time.Duration

	// AdvanceDelay is the pause after a correct answer before the next
	// problem loads. Zero or negative disables auto-advance.
	AdvanceDelay time.Duration

	// TickInterval is how often the timer recomputes the remaining time.
	// Zero or negative disables the timer goroutine.
	TickInterval time.Duration

	MaxDuplicateAttempts int
	Category             string

	// SaveTimeout and SolveTimeout bound background work.
	SaveTimeout  time.Duration
	SolveTimeout time.Duration
}

// DefaultConfig returns the standard run settings.
func DefaultConfig() Config {
	return Config{
		QuestionCount:        DefaultQuestionCount,
		TimeLimit:            DefaultTimeLimit,
		AdvanceDelay:         time.Second,
		TickInterval:         100 * time.Millisecond,
		MaxDuplicateAttempts: MaxDuplicateAttempts,
		Category:             DefaultCategory,
		SaveTimeout:          5 * time.Second,
		SolveTimeout:         30 * time.Second,
	}
}

// Option configures a Runner.
type Option func(*Runner)

// WithConfig replaces the run settings.
func WithConfig(c Config) Option { return func(r *Runner) { r.cfg = c } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(r *Runner) { r.logger = l } }

// WithSolver sets the solver used for problems without solution steps.
func WithSolver(s Solver) Option { return func(r *Runner) { r.solver = s } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(r *Runner) { r.now = now } }

// Runner drives one session: it owns the state, pulls problems from the
// engine, runs the timer and persists results. All state changes go
// through Reduce under a single lock.
type Runner struct {
	id       string
	engineID string
	gen      problemgen.Generator
	repo     Repository
	solver   Solver
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	state   State
	seen    map[string]bool
	loading bool
	started bool
	closed  bool
	advance *time.Timer

	stop chan struct{}
	wg   sync.WaitGroup

	// saves run one at a time in submission order: the store's box
	// update reads the previous box.
	saveMu   sync.Mutex
	saves    []func(ctx context.Context) error
	draining bool
}

// New creates a runner for the given engine. repo may be nil.
func New(engineID string, engines Lookup, repo Repository, opts ...Option) (*Runner, error) {
	gen, ok := engines.Get(engineID)
	if !ok || gen == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engineID)
	}

	r := &Runner{
		id:       uuid.NewString(),
		engineID: engineID,
		repo:     repo,
		cfg:      DefaultConfig(),
		logger:   zap.NewNop(),
		now:      time.Now,
		seen:     make(map[string]bool),
		stop:     make(chan struct{}),
	}
	for _, o := range opts {
		o(r)
	}

	if r.cfg.MaxDuplicateAttempts < 1 {
		r.cfg.MaxDuplicateAttempts = 1
	}
	if r.cfg.Category == "" {
		r.cfg.Category = DefaultCategory
	}
	if r.cfg.SaveTimeout <= 0 {
		r.cfg.SaveTimeout = DefaultConfig().SaveTimeout
	}
	if r.cfg.SolveTimeout <= 0 {
		r.cfg.SolveTimeout = DefaultConfig().SolveTimeout
	}
	r.logger = r.logger.With(zap.String("session", r.id), zap.String("engine", engineID))
	r.gen = problemgen.Safe(gen, r.logger)
	r.state = NewState(r.cfg.QuestionCount, r.cfg.TimeLimit)
	r.cfg.QuestionCount, r.cfg.TimeLimit = r.state.QuestionCount, r.state.TimeLimit
	return r, nil
}

// ID returns the session id.
func (r *Runner) ID() string { return r.id }

// EngineID returns the engine this session drills.
func (r *Runner) EngineID() string { return r.engineID }

// EngineName returns the engine's display name.
func (r *Runner) EngineName() string { return r.gen.Name() }

// State returns a snapshot of the read model.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// Summary condenses the run so far.
func (r *Runner) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return BuildSummary(r.state, r.now())
}

// Start loads the stored level, initializes the session and puts the
// first problem on screen.
func (r *Runner) Start(ctx context.Context) error {
	level := Level{Current: problemgen.MinLevel, Highest: problemgen.MinLevel}
	if r.repo != nil {
		lvl, err := r.repo.Level(ctx, r.engineID)
		if err != nil {
			r.logger.Warn("loading level failed, starting at level 1", zap.Error(err))
		} else {
			level = lvl
		}
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = true
	r.apply(InitSession{SessionID: r.id, Level: level, Now: r.now()})
	if r.cfg.TickInterval > 0 {
		r.wg.Add(1)
		go r.timerLoop()
	}
	r.mu.Unlock()

	metrics.SessionsActive.Inc()
	r.logger.Debug("session started", zap.Int("level", level.Current))
	return r.load(ctx)
}

// SetInput replaces the answer text.
func (r *Runner) SetInput(value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if !r.state.canEdit() {
		return ErrNotAccepting
	}
	r.apply(SetInput{Value: value})
	return nil
}

// Submit validates the current input against the active problem.
func (r *Runner) Submit() (problemgen.Verdict, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return problemgen.Verdict{}, ErrClosed
	}
	if !r.state.canEdit() {
		return problemgen.Verdict{}, ErrNotAccepting
	}

	p := r.state.Active.Problem
	input := r.state.Active.Input
	taken := r.now().Sub(r.state.Active.StartedAt)

	v := r.gen.Validate(input, p)
	if v.Feedback == "" {
		if v.Correct {
			v.Feedback = "Correct!"
		} else {
			v.Feedback = "Not quite."
		}
	}
	r.submit(v.Correct, v.Feedback, taken, false)
	return v, nil
}

// ShowSolution reveals the answer. Steps come from the problem itself,
// else from the solver in the background, else from the explanation.
func (r *Runner) ShowSolution() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.state.Status != StatusIdle || r.state.Active.Problem == nil {
		r.mu.Unlock()
		return ErrNotAccepting
	}
	if r.state.Active.Solving {
		r.mu.Unlock()
		return nil
	}
	r.apply(ShowSolutionStart{})
	p := r.state.Active.Problem

	if len(p.SolutionSteps) > 0 || r.solver == nil {
		var steps []string
		switch {
		case len(p.SolutionSteps) > 0:
			steps = p.SolutionSteps
		case p.Explanation != "":
			steps = []string{p.Explanation}
		}
		r.apply(ShowSolutionSuccess{Steps: steps})
		r.mu.Unlock()
		return nil
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.SolveTimeout)
		defer cancel()

		steps, err := r.solver.Solve(ctx, p)
		if err != nil {
			r.logger.Warn("solving problem failed", zap.String("problem", p.ID), zap.Error(err))
			steps = nil
			if p.Explanation != "" {
				steps = []string{p.Explanation}
			}
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if !r.closed && r.state.Active.Problem == p {
			r.apply(ShowSolutionSuccess{Steps: steps})
		}
	}()
	return nil
}

// Next moves on to the next problem, or finishes the run.
func (r *Runner) Next(ctx context.Context) error {
	return r.advanceFrom(ctx, "")
}

// SubmitFeedback records the learner's classification of a mistake and
// closes the feedback prompt.
func (r *Runner) SubmitFeedback(kind, sentiment string) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if !r.state.Active.AskFeedback {
		r.mu.Unlock()
		return ErrNotAccepting
	}
	fb := Feedback{EngineID: r.engineID, Kind: kind, Sentiment: sentiment}
	if p := r.state.Active.Problem; p != nil {
		fb.ProblemID = p.ID
	}
	r.apply(CloseErrorFeedback{})
	if fs, ok := r.repo.(FeedbackSaver); ok {
		r.background(func(ctx context.Context) error { return fs.SaveFeedback(ctx, fb) })
	}
	r.mu.Unlock()

	r.logger.Info("mistake feedback", zap.String("kind", kind), zap.String("sentiment", sentiment))
	return nil
}

// Close stops the timer and drops every later intent. Background saves
// and solves already started are allowed to finish.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	started := r.started
	r.stopAdvance()
	r.mu.Unlock()

	close(r.stop)
	if started {
		metrics.SessionsActive.Dec()
	}
	r.logger.Debug("session closed")
}

// Wait blocks until background work has finished. Call after Close.
func (r *Runner) Wait() { r.wg.Wait() }

// apply runs the reducer. Callers hold r.mu.
func (r *Runner) apply(a Action) {
	r.state = Reduce(r.state, a)
}

// submit records a verdict for the active problem. Callers hold r.mu.
func (r *Runner) submit(correct bool, feedback string, taken time.Duration, timedOut bool) {
	p := r.state.Active.Problem
	input := r.state.Active.Input

	var score int
	if correct {
		score = Points(r.state.TimeLimit-taken, taken)
	}
	r.apply(SubmitResult{
		Correct:   correct,
		Feedback:  feedback,
		Input:     input,
		TimeTaken: taken,
		Score:     score,
		TimedOut:  timedOut,
	})
	awarded := r.state.Session.Results[len(r.state.Session.Results)-1].Score

	outcome := "wrong"
	switch {
	case correct:
		outcome = "correct"
	case timedOut:
		outcome = "timeout"
	}
	metrics.SubmissionsTotal.WithLabelValues(r.engineID, outcome).Inc()
	if correct {
		metrics.ScoreAwarded.WithLabelValues(r.engineID).Observe(float64(awarded))
	}

	rec := Record{
		EngineID:  r.engineID,
		Category:  r.cfg.Category,
		Correct:   correct,
		TimeTaken: taken,
		Score:     awarded,
		Metrics: map[string]string{
			"question": p.Prompt,
			"answer":   p.Shown(),
			"input":    input,
		},
	}
	if !correct {
		rec.Metrics["errorType"] = ErrorWrongAnswer
		if timedOut {
			rec.Metrics["errorType"] = ErrorTimeout
		} else if pattern, conf, _ := diagnosis.Run(diagnosis.DefaultClassifiers(), &diagnosis.Input{
			Problem:   p,
			Answer:    input,
			TimeTaken: taken,
			Level:     r.state.Level.Current,
		}); pattern != "" {
			rec.Metrics["pattern"] = string(pattern)
			r.logger.Debug("wrong answer classified",
				zap.String("pattern", string(pattern)),
				zap.Float64("confidence", conf))
		}
	}
	if r.repo != nil {
		r.background(func(ctx context.Context) error { return r.repo.SaveResult(ctx, rec) })
	}

	if correct && r.cfg.AdvanceDelay > 0 {
		r.stopAdvance()
		id := p.ID
		r.advance = time.AfterFunc(r.cfg.AdvanceDelay, func() {
			if err := r.advanceFrom(context.Background(), id); err != nil && !errors.Is(err, ErrClosed) {
				r.logger.Debug("auto-advance skipped", zap.Error(err))
			}
		})
	}
}

// advanceFrom dispatches NextProblem and loads. A non-empty problemID
// makes the advance conditional on that problem still being on screen
// and answered correctly.
func (r *Runner) advanceFrom(ctx context.Context, problemID string) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.state.Status != StatusIdle {
		r.mu.Unlock()
		return ErrNotAccepting
	}
	if problemID != "" {
		p := r.state.Active.Problem
		if p == nil || p.ID != problemID || r.state.Active.Status != SubCorrect {
			r.mu.Unlock()
			return nil
		}
	}
	r.stopAdvance()
	r.apply(NextProblem{})
	if r.state.Status == StatusFinished {
		r.logger.Info("session finished",
			zap.Int("score", r.state.Session.Score),
			zap.Int("results", len(r.state.Session.Results)))
	}
	r.mu.Unlock()

	return r.load(ctx)
}

// load generates the next problem when the state is loading.
func (r *Runner) load(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if r.state.Status != StatusLoading || r.loading {
		r.mu.Unlock()
		return nil
	}
	if r.state.Session.Question > r.state.QuestionCount {
		r.apply(FinishSession{})
		r.mu.Unlock()
		return nil
	}
	r.loading = true
	level := r.state.Level.Current
	r.mu.Unlock()

	p := r.generate(ctx, level)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	if r.closed {
		return ErrClosed
	}
	r.apply(LoadProblemSuccess{Problem: p, Now: r.now()})
	return nil
}

// generate retries while the engine repeats prompts seen this session,
// accepting a duplicate once the attempt budget is spent.
func (r *Runner) generate(ctx context.Context, level int) *problemgen.Problem {
	var p *problemgen.Problem
	dup := false
	for range r.cfg.MaxDuplicateAttempts {
		p = r.gen.Generate(ctx, level)
		r.mu.Lock()
		dup = r.seen[p.Prompt]
		r.mu.Unlock()
		if !dup {
			break
		}
	}
	if dup {
		r.logger.Debug("accepting duplicate prompt", zap.Int("attempts", r.cfg.MaxDuplicateAttempts))
	}

	r.mu.Lock()
	r.seen[p.Prompt] = true
	r.mu.Unlock()
	return p
}

func (r *Runner) timerLoop() {
	defer r.wg.Done()
	t := time.NewTicker(r.cfg.TickInterval)
	defer t.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-t.C:
			r.tick()
		}
	}
}

// tick recomputes the remaining time from the problem's start time, so
// a suspended process catches up on resume. Reaching zero submits a
// forced wrong answer without validating.
func (r *Runner) tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	a := r.state.Active
	if r.state.Status != StatusIdle || a.Problem == nil || a.Status == SubCorrect || a.Expired {
		return
	}

	elapsed := r.now().Sub(a.StartedAt)
	remaining := r.state.TimeLimit - elapsed
	if remaining <= 0 {
		r.submit(false, "Time is up!", elapsed, true)
		return
	}
	r.apply(TickTimer{TimeLeft: remaining})
}

// stopAdvance cancels a pending auto-advance. Callers hold r.mu.
func (r *Runner) stopAdvance() {
	if r.advance != nil {
		r.advance.Stop()
		r.advance = nil
	}
}

// background queues a fire-and-forget write. Writes run in the order
// they were queued on a single goroutine that exits once the queue is
// empty. Callers hold r.mu and have checked r.closed.
func (r *Runner) background(fn func(ctx context.Context) error) {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()
	r.saves = append(r.saves, fn)
	if r.draining {
		return
	}
	r.draining = true
	r.wg.Add(1)
	go r.drainSaves()
}

func (r *Runner) drainSaves() {
	defer r.wg.Done()
	for {
		r.saveMu.Lock()
		if len(r.saves) == 0 {
			r.draining = false
			r.saveMu.Unlock()
			return
		}
		fn := r.saves[0]
		r.saves[0] = nil
		r.saves = r.saves[1:]
		r.saveMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.SaveTimeout)
		if err := fn(ctx); err != nil {
			r.logger.Error("saving progress failed", zap.Error(err))
		}
		cancel()
	}
}
