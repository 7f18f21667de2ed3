package parent

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/auth"
	"github.com/herohabits/platform/internal/domain"
	"github.com/herohabits/platform/internal/handler"
	"github.com/herohabits/platform/internal/repository"
	"github.com/herohabits/platform/internal/workflow"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CompletionHandler handles the parent review queue: pending submissions,
// accept/deny, and the bulk variants.
type CompletionHandler struct {
	pool        *pgxpool.Pool
	completions repository.CompletionRepository
	workflow    *workflow.CompletionWorkflow
}

// NewCompletionHandler creates a new CompletionHandler.
func NewCompletionHandler(pool *pgxpool.Pool, completions repository.CompletionRepository, wf *workflow.CompletionWorkflow) *CompletionHandler {
	return &CompletionHandler{pool: pool, completions: completions, workflow: wf}
}

// ListPending handles GET /parent/completions/pending.
func (h *CompletionHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	pending, err := h.completions.ListPendingByParent(r.Context(), h.pool, actor.ID)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("list pending completions", err))
		return
	}
	if pending == nil {
		pending = []domain.QuestCompletion{}
	}

	handler.RespondJSON(w, http.StatusOK, pending)
}

// Accept handles POST /parent/completions/{id}/accept.
func (h *CompletionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid completion id"))
		return
	}

	result, err := h.workflow.Accept(r.Context(), actor, id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, result)
}

// Deny handles POST /parent/completions/{id}/deny.
func (h *CompletionHandler) Deny(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid completion id"))
		return
	}

	completion, err := h.workflow.Deny(r.Context(), actor, id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, completion)
}

type bulkInput struct {
	CompletionIDs []uuid.UUID `json:"completion_ids"`
}

// BulkAccept handles POST /parent/completions/bulk-accept.
func (h *CompletionHandler) BulkAccept(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	var input bulkInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if len(input.CompletionIDs) == 0 {
		handler.RespondError(w, domain.ErrValidation("completion_ids must not be empty"))
		return
	}

	result, err := h.workflow.BulkAccept(r.Context(), actor, input.CompletionIDs)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, result)
}

// BulkDeny handles POST /parent/completions/bulk-deny.
func (h *CompletionHandler) BulkDeny(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	var input bulkInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if len(input.CompletionIDs) == 0 {
		handler.RespondError(w, domain.ErrValidation("completion_ids must not be empty"))
		return
	}

	result, err := h.workflow.BulkDeny(r.Context(), actor, input.CompletionIDs)
	if err != nil {
		handler.RespondError(w, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, result)
}
