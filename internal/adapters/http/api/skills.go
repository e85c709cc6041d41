package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/skillcat/internal/domain/model"
	"github.com/okian/skillcat/internal/domain/types"
)

// SkillDependencies defines the skill review operations.
type SkillDependencies interface {
	CreateSkill(ctx context.Context, in types.SkillInput) (types.Ingested, error)
	ListSkills(ctx context.Context, f model.SkillFilter) (types.SkillList, error)
	OpenSkill(ctx context.Context, skillID string) (types.Review, error)
	Decide(ctx context.Context, skillID string, d types.Decision) (model.ProvenanceEntry, error)
}

// SkillsHandler handles skill ingestion, listing and review.
type SkillsHandler struct {
	deps         SkillDependencies
	maxBodyBytes int64
}

// NewSkillsHandler creates a new skills handler.
func NewSkillsHandler(deps SkillDependencies, maxBodyBytes int64) *SkillsHandler {
	return &SkillsHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleCreate handles POST /skills requests. The skill is scored and
// proposed before the response is written.
func (h *SkillsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_skill"
	var in types.SkillInput
	if err := decodeJSON(w, r, h.maxBodyBytes, &in); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	out, err := h.deps.CreateSkill(r.Context(), in)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// HandleList handles GET /skills?run_id=&search= requests.
func (h *SkillsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.deps.ListSkills(r.Context(), model.SkillFilter{
		RunID:  strings.TrimSpace(q.Get("run_id")),
		Search: strings.TrimSpace(q.Get("search")),
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleOpen handles GET /skills/{id} requests and puts the skill under review.
func (h *SkillsHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	review, err := h.deps.OpenSkill(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// HandleDecide handles POST /skills/{id}/decisions requests.
func (h *SkillsHandler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	const op = "api.decide"
	var d types.Decision
	if err := decodeJSON(w, r, h.maxBodyBytes, &d); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(d.Category) == "" {
		writeFailure(w, NewKind(op+": missing category", ErrBadRequest))
		return
	}
	entry, err := h.deps.Decide(r.Context(), r.PathValue("id"), d)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
