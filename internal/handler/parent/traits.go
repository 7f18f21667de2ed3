package parent

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/herohabits/platform/internal/domain"
	"github.com/herohabits/platform/internal/handler"
	"github.com/herohabits/platform/internal/leveling"
	"github.com/herohabits/platform/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TraitHandler serves the global trait catalog.
type TraitHandler struct {
	pool   *pgxpool.Pool
	traits repository.TraitRepository
}

// NewTraitHandler creates a new TraitHandler.
func NewTraitHandler(pool *pgxpool.Pool, traits repository.TraitRepository) *TraitHandler {
	return &TraitHandler{pool: pool, traits: traits}
}

// List handles GET /parent/traits.
func (h *TraitHandler) List(w http.ResponseWriter, r *http.Request) {
	definitions, err := h.traits.ListDefinitions(r.Context(), h.pool)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("list traits", err))
		return
	}
	if definitions == nil {
		definitions = []domain.TraitDefinition{}
	}

	handler.RespondJSON(w, http.StatusOK, definitions)
}

// LevelHandler manages the level threshold table.
type LevelHandler struct {
	pool   *pgxpool.Pool
	levels repository.LevelRepository
	table  *leveling.Table
}

// NewLevelHandler creates a new LevelHandler.
func NewLevelHandler(pool *pgxpool.Pool, levels repository.LevelRepository, table *leveling.Table) *LevelHandler {
	return &LevelHandler{pool: pool, levels: levels, table: table}
}

// List handles GET /parent/levels.
func (h *LevelHandler) List(w http.ResponseWriter, r *http.Request) {
	thresholds, err := h.levels.List(r.Context(), h.pool)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("list level thresholds", err))
		return
	}
	if thresholds == nil {
		thresholds = []domain.LevelThreshold{}
	}

	handler.RespondJSON(w, http.StatusOK, thresholds)
}

// Upsert handles PUT /parent/levels — insert or replace one threshold.
func (h *LevelHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var input domain.LevelThreshold
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if input.Level < 1 {
		handler.RespondError(w, domain.ErrValidation("level must be >= 1"))
		return
	}
	if err := domain.ValidateNonNegativeAmount(input.ExperienceRequired); err != nil {
		handler.RespondError(w, domain.ErrValidation("experience_required "+err.Error()))
		return
	}
	if input.Level == 1 && input.ExperienceRequired != 0 {
		handler.RespondError(w, domain.ErrValidation("level 1 must require 0 experience"))
		return
	}

	// Thresholds must stay strictly increasing or the award loop would
	// stop short of levels the XP already covers.
	existing, err := h.levels.List(r.Context(), h.pool)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("list level thresholds", err))
		return
	}
	if err := domain.ValidateThresholdPlacement(existing, input); err != nil {
		handler.RespondError(w, domain.ErrValidation(err.Error()))
		return
	}

	if err := h.levels.Upsert(r.Context(), h.pool, input); err != nil {
		handler.RespondError(w, domain.ErrInternal("upsert level threshold", err))
		return
	}
	h.table.Invalidate()

	handler.RespondJSON(w, http.StatusOK, input)
}

// Delete handles DELETE /parent/levels/{level}.
func (h *LevelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil || level < 2 {
		handler.RespondError(w, domain.ErrValidation("level must be an integer >= 2"))
		return
	}

	if err := h.levels.Delete(r.Context(), h.pool, level); err != nil {
		handler.RespondError(w, domain.ErrInternal("delete level threshold", err))
		return
	}
	h.table.Invalidate()

	handler.RespondJSON(w, http.StatusNoContent, nil)
}
