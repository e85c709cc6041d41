package api

import (
	"context"
	"net/http"

	"github.com/okian/skillcat/internal/domain/types"
)

// SummaryDependencies defines the dashboard aggregates.
type SummaryDependencies interface {
	Summary(ctx context.Context) types.Summary
}

// SummaryHandler serves the dashboard aggregates.
type SummaryHandler struct {
	deps SummaryDependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// HandleSummary handles GET /summary requests.
func (h *SummaryHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Summary(r.Context()))
}
