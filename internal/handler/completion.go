package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/auth"
	"github.com/herohabits/platform/internal/domain"
	"github.com/herohabits/platform/internal/guard"
	"github.com/herohabits/platform/internal/repository"
	"github.com/herohabits/platform/internal/workflow"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CompletionHandler handles quest completion submission and history for
// signed-in characters.
type CompletionHandler struct {
	pool        *pgxpool.Pool
	completions repository.CompletionRepository
	workflow    *workflow.CompletionWorkflow
	limiter     *guard.RateLimiter
}

// NewCompletionHandler creates a new CompletionHandler.
func NewCompletionHandler(pool *pgxpool.Pool, completions repository.CompletionRepository, wf *workflow.CompletionWorkflow, limiter *guard.RateLimiter) *CompletionHandler {
	return &CompletionHandler{pool: pool, completions: completions, workflow: wf, limiter: limiter}
}

// Submit handles POST /completions — a character reports a quest done today.
func (h *CompletionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	var input struct {
		QuestID uuid.UUID `json:"quest_id"`
		Date    string    `json:"date,omitempty"`
	}
	if err := DecodeJSON(r, &input); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "VALIDATION_ERROR",
			"message": "invalid request body",
		})
		return
	}

	if result := h.limiter.Check(r.Context(), actor.ID.String()); !result.Allowed {
		RespondJSON(w, http.StatusTooManyRequests, map[string]string{
			"code":    "RATE_LIMITED",
			"message": result.Reason,
		})
		return
	}

	day := time.Now()
	if input.Date != "" {
		parsed, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			RespondError(w, domain.ErrValidation("date must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	completion, err := h.workflow.Submit(r.Context(), actor, input.QuestID, actor.ID, day)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, completion)
}

// History handles GET /completions — the character's recent submissions.
func (h *CompletionHandler) History(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	completions, err := h.completions.ListByCharacter(r.Context(), h.pool, actor.ID, 50)
	if err != nil {
		RespondError(w, domain.ErrInternal("list completions", err))
		return
	}
	if completions == nil {
		completions = []domain.QuestCompletion{}
	}

	RespondJSON(w, http.StatusOK, completions)
}
