// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	defaultMaxBodyBytes   = 1 << 20
	defaultMaxUploadBytes = 5 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CategoryDependencies
	SkillDependencies
	UploadDependencies
	SummaryDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	categoriesHandler *CategoriesHandler
	skillsHandler     *SkillsHandler
	uploadsHandler    *UploadsHandler
	summaryHandler    *SummaryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := options{maxBodyBytes: defaultMaxBodyBytes, maxUploadBytes: defaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		categoriesHandler: NewCategoriesHandler(deps, o.maxBodyBytes),
		skillsHandler:     NewSkillsHandler(deps, o.maxBodyBytes),
		uploadsHandler:    NewUploadsHandler(deps, o.maxUploadBytes),
		summaryHandler:    NewSummaryHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /categories", MetricsMiddleware(s.categoriesHandler.HandleList, "categories"))
	mux.HandleFunc("POST /score", MetricsMiddleware(s.categoriesHandler.HandleScore, "score"))
	mux.HandleFunc("POST /skills", MetricsMiddleware(s.skillsHandler.HandleCreate, "skills_create"))
	mux.HandleFunc("GET /skills", MetricsMiddleware(s.skillsHandler.HandleList, "skills_list"))
	mux.HandleFunc("GET /skills/{id}", MetricsMiddleware(s.skillsHandler.HandleOpen, "skills_open"))
	mux.HandleFunc("POST /skills/{id}/decisions", MetricsMiddleware(s.skillsHandler.HandleDecide, "skills_decide"))
	mux.HandleFunc("POST /uploads", MetricsMiddleware(s.uploadsHandler.HandleUpload, "uploads"))
	mux.HandleFunc("GET /summary", MetricsMiddleware(s.summaryHandler.HandleSummary, "summary"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure translates err into its status and code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}

// decodeJSON reads a single JSON document of at most limit bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return fmt.Errorf("%w: limit %d bytes", ErrTooLarge, maxBytes.Limit)
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
