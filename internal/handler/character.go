package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/auth"
	"github.com/herohabits/platform/internal/domain"
	"github.com/herohabits/platform/internal/leveling"
	"github.com/herohabits/platform/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CharacterHandler serves the signed-in character's own sheet.
type CharacterHandler struct {
	pool       *pgxpool.Pool
	characters repository.CharacterRepository
	traits     repository.TraitRepository
	engine     *leveling.Engine
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(pool *pgxpool.Pool, characters repository.CharacterRepository, traits repository.TraitRepository, engine *leveling.Engine) *CharacterHandler {
	return &CharacterHandler{pool: pool, characters: characters, traits: traits, engine: engine}
}

type traitSheet struct {
	TraitID          uuid.UUID `json:"trait_id"`
	Level            int       `json:"level"`
	ExperiencePoints int64     `json:"experience_points"`
	XPToNext         int64     `json:"xp_to_next_level"`
	ProgressPercent  float64   `json:"progress_percent"`
}

type characterSheet struct {
	ID               uuid.UUID    `json:"id"`
	Name             string       `json:"name"`
	Level            int          `json:"level"`
	ExperiencePoints int64        `json:"experience_points"`
	XPToNext         int64        `json:"xp_to_next_level"`
	ProgressPercent  float64      `json:"progress_percent"`
	GoldBalance      int64        `json:"gold_balance"`
	Traits           []traitSheet `json:"traits"`
	CreatedAt        time.Time    `json:"created_at"`
}

// Me handles GET /characters/me — the signed-in character's sheet with
// level progress and per-trait progress.
func (h *CharacterHandler) Me(w http.ResponseWriter, r *http.Request) {
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

	toNext, err := h.engine.XPToNextLevel(r.Context(), &character.ProgressTrack)
	if err != nil {
		RespondError(w, domain.ErrInternal("level lookup", err))
		return
	}
	pct, err := h.engine.ProgressPercentage(r.Context(), &character.ProgressTrack)
	if err != nil {
		RespondError(w, domain.ErrInternal("level lookup", err))
		return
	}

	progress, err := h.traits.ListProgressByCharacter(r.Context(), h.pool, character.ID)
	if err != nil {
		RespondError(w, domain.ErrInternal("list trait progress", err))
		return
	}

	sheet := characterSheet{
		ID:               character.ID,
		Name:             character.Name,
		Level:            character.Level,
		ExperiencePoints: character.ExperiencePoints,
		XPToNext:         toNext,
		ProgressPercent:  pct,
		GoldBalance:      character.GoldBalance,
		Traits:           make([]traitSheet, 0, len(progress)),
		CreatedAt:        character.CreatedAt,
	}

	for _, p := range progress {
		track := p.ProgressTrack
		traitToNext, err := h.engine.XPToNextLevel(r.Context(), &track)
		if err != nil {
			RespondError(w, domain.ErrInternal("level lookup", err))
			return
		}
		traitPct, err := h.engine.ProgressPercentage(r.Context(), &track)
		if err != nil {
			RespondError(w, domain.ErrInternal("level lookup", err))
			return
		}
		sheet.Traits = append(sheet.Traits, traitSheet{
			TraitID:          p.TraitID,
			Level:            p.Level,
			ExperiencePoints: p.ExperiencePoints,
			XPToNext:         traitToNext,
			ProgressPercent:  traitPct,
		})
	}

	RespondJSON(w, http.StatusOK, sheet)
}
