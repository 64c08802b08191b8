package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhisek/drillgym/internal/session"
)

type engineView struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Sources []string `json:"sources,omitempty"`
}

// composite is implemented by engines that draw from other engines.
type composite interface {
	Sources() []string
}

type createSessionRequest struct {
	EngineID string `json:"engine_id" validate:"required"`
}

type inputRequest struct {
	Value string `json:"value"`
}

type feedbackRequest struct {
	Kind      string `json:"kind" validate:"required,max=64"`
	Sentiment string `json:"sentiment" validate:"required,max=64"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decode reads a JSON body into v and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) listEngines(w http.ResponseWriter, r *http.Request) {
	gens := s.engines.All()
	out := make([]engineView, len(gens))
	for i, g := range gens {
		out[i] = engineView{ID: g.ID(), Name: g.Name()}
		if c, ok := g.(composite); ok {
			out[i].Sources = c.Sources()
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !s.decode(w, r, &req) {
		return
	}

	opts := []session.Option{
		session.WithConfig(s.cfg),
		session.WithLogger(s.logger),
	}
	if s.solver != nil {
		opts = append(opts, session.WithSolver(s.solver))
	}
	run, err := session.New(req.EngineID, s.engines, s.repo, opts...)
	if errors.Is(err, session.ErrUnknownEngine) {
		s.logger.Warn("unknown engine requested", zap.String("engine", req.EngineID))
		writeError(w, http.StatusNotFound, "unknown engine: "+req.EngineID)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := run.Start(r.Context()); err != nil {
		run.Close()
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.add(run)
	writeJSON(w, http.StatusCreated, newSessionView(run))
}

// withRunner resolves the {id} path parameter.
func (s *Server) withRunner(fn func(w http.ResponseWriter, r *http.Request, run *session.Runner)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := s.lookup(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		fn(w, r, run)
	}
}

// respond maps a runner error to a status, or writes the read model.
func respond(w http.ResponseWriter, run *session.Runner, err error) {
	switch {
	case errors.Is(err, session.ErrNotAccepting):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrClosed):
		writeError(w, http.StatusGone, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, newSessionView(run))
	}
}

func (s *Server) getSession(w http.ResponseWriter, _ *http.Request, run *session.Runner) {
	respond(w, run, nil)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	run, ok := s.remove(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	run.Close()
	writeJSON(w, http.StatusOK, run.Summary())
}

func (s *Server) setInput(w http.ResponseWriter, r *http.Request, run *session.Runner) {
	var req inputRequest
	if !s.decode(w, r, &req) {
		return
	}
	respond(w, run, run.SetInput(req.Value))
}

func (s *Server) submit(w http.ResponseWriter, _ *http.Request, run *session.Runner) {
	_, err := run.Submit()
	respond(w, run, err)
}

func (s *Server) showSolution(w http.ResponseWriter, _ *http.Request, run *session.Runner) {
	respond(w, run, run.ShowSolution())
}

func (s *Server) next(w http.ResponseWriter, r *http.Request, run *session.Runner) {
	respond(w, run, run.Next(r.Context()))
}

func (s *Server) feedback(w http.ResponseWriter, r *http.Request, run *session.Runner) {
	var req feedbackRequest
	if !s.decode(w, r, &req) {
		return
	}
	respond(w, run, run.SubmitFeedback(req.Kind, req.Sentiment))
}

type progressResponse struct {
	TotalXP  int             `json:"total_xp"`
	Progress []progressEntry `json:"progress"`
}

type progressEntry struct {
	EngineID   string `json:"engine_id"`
	Box        int    `json:"box"`
	HighestBox int    `json:"highest_box"`
	NextReview string `json:"next_review"`
}

func (s *Server) progress(w http.ResponseWriter, r *http.Request) {
	xp, err := s.stats.TotalXP(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rows, err := s.stats.AllProgress(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := progressResponse{TotalXP: xp, Progress: make([]progressEntry, len(rows))}
	for i, rs := range rows {
		resp.Progress[i] = progressEntry{
			EngineID:   rs.EngineID,
			Box:        rs.Box,
			HighestBox: rs.HighestBox,
			NextReview: rs.NextReview.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) due(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	rows, err := s.stats.DueItems(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]progressEntry, len(rows))
	for i, rs := range rows {
		out[i] = progressEntry{
			EngineID:   rs.EngineID,
			Box:        rs.Box,
			HighestBox: rs.HighestBox,
			NextReview: rs.NextReview.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	writeJSON(w, http.StatusOK, out)
}
