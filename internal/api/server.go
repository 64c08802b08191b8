// Package api exposes drill sessions over HTTP: the session read model
// plus the intents a consumer can dispatch.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/abhisek/drillgym/internal/problemgen"
	"github.com/abhisek/drillgym/internal/session"
	"github.com/abhisek/drillgym/internal/spacedrep"
)

// Catalog lists and resolves engines.
type Catalog interface {
	session.Lookup
	All() []problemgen.Generator
}

// StatsReader serves progress analytics. Optional.
type StatsReader interface {
	TotalXP(ctx context.Context) (int, error)
	AllProgress(ctx context.Context) ([]spacedrep.ReviewState, error)
	DueItems(ctx context.Context, limit int) ([]spacedrep.ReviewState, error)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.logger = l } }

// WithSolver attaches an AI step solver to new sessions.
func WithSolver(sv session.Solver) Option { return func(s *Server) { s.solver = sv } }

// WithSessionConfig sets the configuration of new sessions.
func WithSessionConfig(c session.Config) Option { return func(s *Server) { s.cfg = c } }

// WithStats enables the progress endpoints.
func WithStats(st StatsReader) Option { return func(s *Server) { s.stats = st } }

// WithEviction sets how long a finished session stays readable and how
// long an untouched session lives. Zero disables the respective rule.
func WithEviction(retention, idle time.Duration) Option {
	return func(s *Server) { s.retention, s.idle = retention, idle }
}

// Server owns the live sessions.
type Server struct {
	engines   Catalog
	repo      session.Repository
	solver    session.Solver
	stats     StatsReader
	cfg       session.Config
	logger    *zap.Logger
	validate  *validator.Validate
	retention time.Duration
	idle      time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry

	stop     chan struct{}
	stopOnce sync.Once
	reaper   sync.WaitGroup
}

// entry tracks a live session for eviction.
type entry struct {
	run        *session.Runner
	touched    time.Time
	finishedAt time.Time
}

// New creates a Server. repo may be nil. Unless eviction is disabled a
// reaper goroutine runs until Close.
func New(engines Catalog, repo session.Repository, opts ...Option) *Server {
	s := &Server{
		engines:   engines,
		repo:      repo,
		cfg:       session.DefaultConfig(),
		logger:    zap.NewNop(),
		validate:  validator.New(),
		retention: 10 * time.Minute,
		idle:      time.Hour,
		now:       time.Now,
		sessions:  make(map[string]*entry),
		stop:      make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if every := sweepInterval(s.retention, s.idle); every > 0 {
		s.reaper.Add(1)
		go s.reap(every)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/engines", s.listEngines)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.withRunner(s.getSession))
				r.Delete("/", s.deleteSession)
				r.Post("/input", s.withRunner(s.setInput))
				r.Post("/submit", s.withRunner(s.submit))
				r.Post("/solution", s.withRunner(s.showSolution))
				r.Post("/next", s.withRunner(s.next))
				r.Post("/feedback", s.withRunner(s.feedback))
			})
		})

		if s.stats != nil {
			r.Get("/progress", s.progress)
			r.Get("/due", s.due)
		}
	})
	return r
}

// Close stops the reaper, ends every live session and waits for their
// background work.
func (s *Server) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.reaper.Wait()

	s.mu.Lock()
	runners := make([]*session.Runner, 0, len(s.sessions))
	for id, e := range s.sessions {
		runners = append(runners, e.run)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, run := range runners {
		run.Close()
	}
	for _, run := range runners {
		run.Wait()
	}
}

func (s *Server) add(run *session.Runner) {
	s.mu.Lock()
	s.sessions[run.ID()] = &entry{run: run, touched: s.now()}
	s.mu.Unlock()
}

func (s *Server) lookup(id string) (*session.Runner, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.touched = s.now()
	return e.run, true
}

func (s *Server) remove(id string) (*session.Runner, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	delete(s.sessions, id)
	return e.run, true
}

func sweepInterval(retention, idle time.Duration) time.Duration {
	every := retention
	if every <= 0 || (idle > 0 && idle < every) {
		every = idle
	}
	return min(every, time.Minute)
}

func (s *Server) reap(every time.Duration) {
	defer s.reaper.Done()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.sweep()
		}
	}
}

// sweep closes sessions that finished more than retention ago or were
// not touched for idle, and returns their ids.
func (s *Server) sweep() []string {
	now := s.now()

	s.mu.Lock()
	var (
		ids     []string
		expired []*session.Runner
	)
	for id, e := range s.sessions {
		if e.finishedAt.IsZero() && e.run.State().Status == session.StatusFinished {
			e.finishedAt = now
		}
		finished := s.retention > 0 && !e.finishedAt.IsZero() && now.Sub(e.finishedAt) >= s.retention
		abandoned := s.idle > 0 && now.Sub(e.touched) >= s.idle
		if finished || abandoned {
			ids = append(ids, id)
			expired = append(expired, e.run)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for i, run := range expired {
		run.Close()
		s.logger.Info("session evicted",
			zap.String("session", ids[i]),
			zap.String("engine", run.EngineID()))
	}
	return ids
}
