package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/auth"
	"github.com/herohabits/platform/internal/domain"
	"github.com/herohabits/platform/internal/repository"
	"github.com/herohabits/platform/internal/workflow"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TreasureHandler handles the treasure shop for signed-in characters.
type TreasureHandler struct {
	pool       *pgxpool.Pool
	characters repository.CharacterRepository
	treasures  repository.TreasureRepository
	workflow   *workflow.PurchaseWorkflow
}

// NewTreasureHandler creates a new TreasureHandler.
func NewTreasureHandler(pool *pgxpool.Pool, characters repository.CharacterRepository, treasures repository.TreasureRepository, wf *workflow.PurchaseWorkflow) *TreasureHandler {
	return &TreasureHandler{pool: pool, characters: characters, treasures: treasures, workflow: wf}
}

// ListAvailable handles GET /treasures — what the character's family has on
// offer right now.
func (h *TreasureHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	character, err := h.characters.FindByID(r.Context(), h.pool, actor.ID)
	if err != nil {
		RespondError(w, domain.ErrInternal("find character", err))
		return
	}
	if character == nil {
		RespondError(w, domain.ErrNotFound("character", actor.ID.String()))
		return
	}

	treasures, err := h.treasures.ListAvailableByParent(r.Context(), h.pool, character.ParentID)
	if err != nil {
		RespondError(w, domain.ErrInternal("list treasures", err))
		return
	}
	if treasures == nil {
		treasures = []domain.Treasure{}
	}

	RespondJSON(w, http.StatusOK, treasures)
}

// Purchase handles POST /treasures/{id}/purchase.
func (h *TreasureHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	treasureID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid treasure id"))
		return
	}

	result, err := h.workflow.Purchase(r.Context(), actor, treasureID, actor.ID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, result)
}

// PurchaseHistory handles GET /purchases — the character's past purchases.
func (h *TreasureHandler) PurchaseHistory(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	purchases, err := h.treasures.ListPurchasesByCharacter(r.Context(), h.pool, actor.ID)
	if err != nil {
		RespondError(w, domain.ErrInternal("list purchases", err))
		return
	}
	if purchases == nil {
		purchases = []domain.TreasurePurchase{}
	}

	RespondJSON(w, http.StatusOK, purchases)
}
