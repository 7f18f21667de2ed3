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
	"golang.org/x/crypto/bcrypt"
)

// CharacterHandler handles parent character management.
type CharacterHandler struct {
	pool       *pgxpool.Pool
	characters repository.CharacterRepository
	traits     repository.TraitRepository
	outbox     repository.OutboxRepository
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(pool *pgxpool.Pool, characters repository.CharacterRepository, traits repository.TraitRepository, outbox repository.OutboxRepository) *CharacterHandler {
	return &CharacterHandler{pool: pool, characters: characters, traits: traits, outbox: outbox}
}

// List handles GET /parent/characters.
func (h *CharacterHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	characters, err := h.characters.ListByParent(r.Context(), h.pool, actor.ID)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("list characters", err))
		return
	}
	if characters == nil {
		characters = []domain.Character{}
	}

	handler.RespondJSON(w, http.StatusOK, characters)
}

// Create handles POST /parent/characters.
func (h *CharacterHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	var input struct {
		Name string `json:"name"`
		PIN  string `json:"pin"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if err := domain.ValidateCharacterName(input.Name); err != nil {
		handler.RespondError(w, domain.ErrValidation(err.Error()))
		return
	}
	if err := domain.ValidatePIN(input.PIN); err != nil {
		handler.RespondError(w, domain.ErrValidation(err.Error()))
		return
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte(input.PIN), bcrypt.DefaultCost)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("hash pin", err))
		return
	}

	now := time.Now()
	character := &domain.Character{
		ID:            uuid.New(),
		ParentID:      actor.ID,
		Name:          input.Name,
		PINHash:       string(pinHash),
		ProgressTrack: domain.ProgressTrack{Level: 1},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("begin tx", err))
		return
	}
	defer tx.Rollback(r.Context())

	if err := h.characters.Create(r.Context(), tx, character); err != nil {
		handler.RespondError(w, domain.ErrInternal("create character", err))
		return
	}
	draft := domain.NewCharacterCreatedEvent(character.ID, character.ParentID, character.Name)
	if err := h.outbox.Insert(r.Context(), tx, draft); err != nil {
		handler.RespondError(w, domain.ErrInternal("write outbox", err))
		return
	}
	if err := tx.Commit(r.Context()); err != nil {
		handler.RespondError(w, domain.ErrInternal("commit", err))
		return
	}

	handler.RespondJSON(w, http.StatusCreated, character)
}

// Get handles GET /parent/characters/{id} — the character plus its trait
// progress rows.
func (h *CharacterHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	character, ok := h.ownedCharacter(w, r, actor)
	if !ok {
		return
	}

	progress, err := h.traits.ListProgressByCharacter(r.Context(), h.pool, character.ID)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("list trait progress", err))
		return
	}
	if progress == nil {
		progress = []domain.TraitProgress{}
	}

	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"character": character,
		"traits":    progress,
	})
}

// SetPIN handles PATCH /parent/characters/{id}/pin.
func (h *CharacterHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	character, ok := h.ownedCharacter(w, r, actor)
	if !ok {
		return
	}

	var input struct {
		PIN string `json:"pin"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if err := domain.ValidatePIN(input.PIN); err != nil {
		handler.RespondError(w, domain.ErrValidation(err.Error()))
		return
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte(input.PIN), bcrypt.DefaultCost)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("hash pin", err))
		return
	}

	_, err = h.pool.Exec(r.Context(),
		`UPDATE characters SET pin_hash = $2, updated_at = now() WHERE id = $1`,
		character.ID, string(pinHash))
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("update pin", err))
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete handles DELETE /parent/characters/{id}.
func (h *CharacterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	character, ok := h.ownedCharacter(w, r, actor)
	if !ok {
		return
	}

	if err := h.characters.Delete(r.Context(), h.pool, character.ID); err != nil {
		handler.RespondError(w, domain.ErrInternal("delete character", err))
		return
	}

	handler.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *CharacterHandler) ownedCharacter(w http.ResponseWriter, r *http.Request, actor domain.Actor) (*domain.Character, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid character id"))
		return nil, false
	}

	character, err := h.characters.FindByID(r.Context(), h.pool, id)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("find character", err))
		return nil, false
	}
	if character == nil || character.ParentID != actor.ID {
		handler.RespondError(w, domain.ErrNotFound("character", id.String()))
		return nil, false
	}
	return character, true
}
