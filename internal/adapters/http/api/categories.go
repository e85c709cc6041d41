package api

import (
	"context"
	"net/http"

	"github.com/okian/skillcat/internal/domain/model"
)

// CategoryDependencies defines the catalog and scoring operations.
type CategoryDependencies interface {
	Categories(ctx context.Context) []model.Category
	Score(ctx context.Context, description string) ([]model.MatchResult, error)
}

// CategoriesHandler serves the taxonomy and ad-hoc scoring.
type CategoriesHandler struct {
	deps         CategoryDependencies
	maxBodyBytes int64
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(deps CategoryDependencies, maxBodyBytes int64) *CategoriesHandler {
	return &CategoriesHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

type categoriesResponse struct {
	Categories []model.Category `json:"categories"`
}

type scoreRequest struct {
	Description string `json:"description"`
}

type scoreResponse struct {
	Matches []model.MatchResult `json:"matches"`
}

// HandleList handles GET /categories requests.
func (h *CategoriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: h.deps.Categories(r.Context())})
}

// HandleScore handles POST /score requests. Nothing is stored.
func (h *CategoriesHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	var req scoreRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	matches, err := h.deps.Score(r.Context(), req.Description)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{Matches: matches})
}
