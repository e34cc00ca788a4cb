package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/speedwagon-io/labelscore/internal/config"
	"github.com/speedwagon-io/labelscore/internal/lib/logger/sl"
	"github.com/speedwagon-io/labelscore/internal/model"
	"github.com/speedwagon-io/labelscore/internal/provider"
)

// ThresholdStore is what the service publishes: single lookups plus a full
// listing.
type ThresholdStore interface {
	GetThresholds(ctx context.Context, key model.ThresholdKey) (model.Thresholds, error)
	List(ctx context.Context) ([]model.ThresholdRule, error)
}

type Server struct {
	log      *slog.Logger
	cfg      config.ServerConfig
	store    ThresholdStore
	server   *http.Server
	checkers []HealthChecker
	mu       sync.RWMutex
}

func New(log *slog.Logger, cfg config.ServerConfig, store ThresholdStore) *Server {
	return &Server{
		log:      log,
		cfg:      cfg,
		store:    store,
		checkers: make([]HealthChecker, 0),
	}
}

func (s *Server) AddChecker(checker HealthChecker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers = append(s.checkers, checker)
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/thresholds", s.handleList)
	r.Get("/thresholds/{nutrient}/{unit}", s.handleGet)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/live", s.handleLive)

	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.log.Info("starting threshold server", slog.String("address", s.cfg.Address))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("threshold server error", sl.Err(err))
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	n, err := model.ParseNutrient(chi.URLParam(r, "nutrient"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	u, err := model.ParseUnit(chi.URLParam(r, "unit"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	key := model.NewThresholdKey(n, u)
	t, err := s.store.GetThresholds(r.Context(), key)
	switch {
	case errors.Is(err, model.ErrThresholdsNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	case err != nil:
		s.log.Error("threshold lookup failed",
			slog.String("key", key.String()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			sl.Err(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "lookup failed"})
		return
	}

	writeJSON(w, http.StatusOK, provider.NewRuleResponse(model.ThresholdRule{Key: key, Thresholds: t}))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	rules, err := s.store.List(r.Context())
	if err != nil {
		s.log.Error("threshold listing failed", sl.Err(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "listing failed"})
		return
	}

	out := make([]provider.RuleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, provider.NewRuleResponse(rule))
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	checkers := make([]HealthChecker, len(s.checkers))
	copy(checkers, s.checkers)
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:     StatusHealthy,
		Components: make([]ComponentHealth, 0, len(checkers)),
		Timestamp:  time.Now().UTC(),
	}

	for _, checker := range checkers {
		status, message := checker.Check(ctx)
		response.Components = append(response.Components, ComponentHealth{
			Name:    checker.Name(),
			Status:  status,
			Message: message,
		})

		if status == StatusUnhealthy {
			response.Status = StatusUnhealthy
		} else if status == StatusDegraded && response.Status == StatusHealthy {
			response.Status = StatusDegraded
		}
	}

	statusCode := http.StatusOK
	if response.Status == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, response)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
