package parent

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/auth"
	"github.com/herohabits/platform/internal/domain"
	"github.com/herohabits/platform/internal/handler"
	"github.com/herohabits/platform/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TreasureHandler handles parent treasure management.
type TreasureHandler struct {
	pool      *pgxpool.Pool
	treasures repository.TreasureRepository
}

// NewTreasureHandler creates a new TreasureHandler.
func NewTreasureHandler(pool *pgxpool.Pool, treasures repository.TreasureRepository) *TreasureHandler {
	return &TreasureHandler{pool: pool, treasures: treasures}
}

// List handles GET /parent/treasures.
func (h *TreasureHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	treasures, err := h.treasures.ListByParent(r.Context(), h.pool, actor.ID)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("list treasures", err))
		return
	}
	if treasures == nil {
		treasures = []domain.Treasure{}
	}

	handler.RespondJSON(w, http.StatusOK, treasures)
}

type treasureInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	GoldCost    int64  `json:"gold_cost"`
}

func (in treasureInput) validate() error {
	if err := domain.ValidateTitle(in.Title); err != nil {
		return domain.ErrValidation(err.Error())
	}
	if err := domain.ValidatePositiveAmount(in.GoldCost); err != nil {
		return domain.ErrValidation("gold_cost " + err.Error())
	}
	return nil
}

// Create handles POST /parent/treasures.
func (h *TreasureHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	var input treasureInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if err := input.validate(); err != nil {
		handler.RespondError(w, err)
		return
	}

	treasure := &domain.Treasure{
		ID:          uuid.New(),
		ParentID:    actor.ID,
		Title:       input.Title,
		Description: input.Description,
		GoldCost:    input.GoldCost,
		Available:   true,
		CreatedAt:   time.Now(),
	}
	if err := h.treasures.Create(r.Context(), h.pool, treasure); err != nil {
		handler.RespondError(w, domain.ErrInternal("create treasure", err))
		return
	}

	handler.RespondJSON(w, http.StatusCreated, treasure)
}

// Update handles PUT /parent/treasures/{id}.
func (h *TreasureHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	treasure, ok := h.ownedTreasure(w, r, actor)
	if !ok {
		return
	}

	var input treasureInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if err := input.validate(); err != nil {
		handler.RespondError(w, err)
		return
	}

	treasure.Title = input.Title
	treasure.Description = input.Description
	treasure.GoldCost = input.GoldCost
	if err := h.treasures.Update(r.Context(), h.pool, treasure); err != nil {
		handler.RespondError(w, domain.ErrInternal("update treasure", err))
		return
	}

	handler.RespondJSON(w, http.StatusOK, treasure)
}

// Toggle handles PATCH /parent/treasures/{id}/toggle.
func (h *TreasureHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	treasure, ok := h.ownedTreasure(w, r, actor)
	if !ok {
		return
	}

	if err := h.treasures.SetAvailable(r.Context(), h.pool, treasure.ID, !treasure.Available); err != nil {
		handler.RespondError(w, domain.ErrInternal("toggle treasure", err))
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id":        treasure.ID,
		"available": !treasure.Available,
	})
}

// Delete handles DELETE /parent/treasures/{id}.
func (h *TreasureHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	treasure, ok := h.ownedTreasure(w, r, actor)
	if !ok {
		return
	}

	if err := h.treasures.Delete(r.Context(), h.pool, treasure.ID); err != nil {
		handler.RespondError(w, domain.ErrInternal("delete treasure", err))
		return
	}

	handler.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *TreasureHandler) ownedTreasure(w http.ResponseWriter, r *http.Request, actor domain.Actor) (*domain.Treasure, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid treasure id"))
		return nil, false
	}

	treasure, err := h.treasures.FindByID(r.Context(), h.pool, id)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("find treasure", err))
		return nil, false
	}
	if treasure == nil || treasure.ParentID != actor.ID {
		handler.RespondError(w, domain.ErrNotFound("treasure", id.String()))
		return nil, false
	}
	return treasure, true
}
