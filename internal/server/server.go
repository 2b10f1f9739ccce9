// Package server exposes the planner over HTTP: clients submit a route
// and datasets, and receive a filtered, cost-ordered option set they can
// fetch again later by plan ID.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/corriander/channelhop/pkg/cache"
	"github.com/corriander/channelhop/pkg/dataset"
	"github.com/corriander/channelhop/pkg/errors"
	"github.com/corriander/channelhop/pkg/pipeline"
	"github.com/corriander/channelhop/pkg/place"
	"github.com/corriander/channelhop/pkg/tripfile"
)

// Server routes HTTP requests to the planning pipeline and plan store.
type Server struct {
	router chi.Router
	runner *pipeline.Runner
	store  Store
	logger *log.Logger
}

// New assembles a server around a pipeline runner and a plan store.
func New(runner *pipeline.Runner, store Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner: runner,
		store:  store,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/plans", s.createPlan)
		r.Get("/plans/{id}", s.getPlan)
		r.Get("/network", s.network)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// NewCache builds the plan cache the configuration asks for: Redis when
// configured, a file cache when a directory is given, otherwise none.
func NewCache(ctx context.Context, cfg Config) (cache.Cache, error) {
	switch {
	case cfg.RedisAddr != "":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	case cfg.CacheDir != "":
		return cache.NewFileCache(cfg.CacheDir)
	default:
		return cache.NewNullCache(), nil
	}
}

// NewStore builds the plan store the configuration asks for: MongoDB
// when configured, otherwise in-memory.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	if cfg.MongoURI != "" {
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	}
	return NewMemoryStore(), nil
}

// planRequest is the POST /api/plans payload.
type planRequest struct {
	Origin      place.Location              `json:"origin"`
	Destination place.Location              `json:"destination"`
	Crossings   place.CrossingTable         `json:"crossings,omitempty"`
	Roads       []dataset.RoadLeg           `json:"roads"`
	Ferries     []dataset.FerryCrossing     `json:"ferries"`
	Constraints tripfile.ConstraintSection  `json:"constraints"`
	Refresh     bool                        `json:"refresh,omitempty"`
}

func (s *Server) createPlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest,
			errors.Wrap(errors.ErrCodeConfiguration, err, "decoding request"))
		return
	}

	constraints, err := req.Constraints.Constraints()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	p, err := s.runner.Execute(r.Context(), pipeline.Options{
		Origin:      req.Origin,
		Destination: req.Destination,
		Crossings:   req.Crossings,
		Roads:       req.Roads,
		Ferries:     req.Ferries,
		Constraints: constraints,
		Refresh:     req.Refresh,
		Logger:      s.logger,
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	if err := s.store.SavePlan(r.Context(), p); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.logger.Info("plan created",
		"id", p.ID,
		"origin", p.Origin.String(),
		"destination", p.Destination.String(),
		"options", len(p.Options))

	s.writeJSON(w, http.StatusCreated, p)
}

func (s *Server) getPlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.store.Plan(r.Context(), id)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// networkResponse describes the built-in port network.
type networkResponse struct {
	Crossings place.CrossingTable `json:"crossings"`
	Ports     []place.Location    `json:"ports"`
}

func (s *Server) network(w http.ResponseWriter, r *http.Request) {
	table := place.ChannelCrossings()
	s.writeJSON(w, http.StatusOK, networkResponse{
		Crossings: table,
		Ports:     table.Ports(),
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "err", err)
	}
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfiguration, errors.ErrCodeUnknownLocation,
		errors.ErrCodeInvalidTripFile, errors.ErrCodeInvalidRecord,
		errors.ErrCodeData:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodePlanNotFound:
		return http.StatusNotFound
	case errors.ErrCodeFanoutExceeded:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
