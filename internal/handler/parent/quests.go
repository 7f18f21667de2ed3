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

// QuestHandler handles parent quest management.
type QuestHandler struct {
	pool   *pgxpool.Pool
	quests repository.QuestRepository
	traits repository.TraitRepository
}

// NewQuestHandler creates a new QuestHandler.
func NewQuestHandler(pool *pgxpool.Pool, quests repository.QuestRepository, traits repository.TraitRepository) *QuestHandler {
	return &QuestHandler{pool: pool, quests: quests, traits: traits}
}

// List handles GET /parent/quests.
func (h *QuestHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	quests, err := h.quests.ListByParent(r.Context(), h.pool, actor.ID)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("list quests", err))
		return
	}
	if quests == nil {
		quests = []domain.Quest{}
	}

	handler.RespondJSON(w, http.StatusOK, quests)
}

type questInput struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	GoldReward  int64       `json:"gold_reward"`
	TraitIDs    []uuid.UUID `json:"trait_ids"`
}

func (in questInput) validate() error {
	if err := domain.ValidateTitle(in.Title); err != nil {
		return domain.ErrValidation(err.Error())
	}
	if err := domain.ValidatePositiveAmount(in.GoldReward); err != nil {
		return domain.ErrValidation("gold_reward " + err.Error())
	}
	return nil
}

// Create handles POST /parent/quests.
func (h *QuestHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	var input questInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if err := input.validate(); err != nil {
		handler.RespondError(w, err)
		return
	}

	quest := &domain.Quest{
		ID:          uuid.New(),
		ParentID:    actor.ID,
		Title:       input.Title,
		Description: input.Description,
		GoldReward:  input.GoldReward,
		Active:      true,
		CreatedAt:   time.Now(),
	}
	if err := h.quests.Create(r.Context(), h.pool, quest); err != nil {
		handler.RespondError(w, domain.ErrInternal("create quest", err))
		return
	}

	if len(input.TraitIDs) > 0 {
		if err := h.quests.SetTraits(r.Context(), h.pool, quest.ID, input.TraitIDs); err != nil {
			handler.RespondError(w, domain.ErrInternal("set quest traits", err))
			return
		}
	}

	handler.RespondJSON(w, http.StatusCreated, quest)
}

// Update handles PUT /parent/quests/{id}.
func (h *QuestHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	quest, ok := h.ownedQuest(w, r, actor)
	if !ok {
		return
	}

	var input questInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	if err := input.validate(); err != nil {
		handler.RespondError(w, err)
		return
	}

	quest.Title = input.Title
	quest.Description = input.Description
	quest.GoldReward = input.GoldReward
	if err := h.quests.Update(r.Context(), h.pool, quest); err != nil {
		handler.RespondError(w, domain.ErrInternal("update quest", err))
		return
	}

	if input.TraitIDs != nil {
		if err := h.quests.SetTraits(r.Context(), h.pool, quest.ID, input.TraitIDs); err != nil {
			handler.RespondError(w, domain.ErrInternal("set quest traits", err))
			return
		}
	}

	handler.RespondJSON(w, http.StatusOK, quest)
}

// Toggle handles PATCH /parent/quests/{id}/toggle.
func (h *QuestHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	quest, ok := h.ownedQuest(w, r, actor)
	if !ok {
		return
	}

	if err := h.quests.SetActive(r.Context(), h.pool, quest.ID, !quest.Active); err != nil {
		handler.RespondError(w, domain.ErrInternal("toggle quest", err))
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id":     quest.ID,
		"active": !quest.Active,
	})
}

// Delete handles DELETE /parent/quests/{id}.
func (h *QuestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	quest, ok := h.ownedQuest(w, r, actor)
	if !ok {
		return
	}

	if err := h.quests.Delete(r.Context(), h.pool, quest.ID); err != nil {
		handler.RespondError(w, domain.ErrInternal("delete quest", err))
		return
	}

	handler.RespondJSON(w, http.StatusNoContent, nil)
}

// Traits handles GET /parent/quests/{id}/traits.
func (h *QuestHandler) Traits(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())

	quest, ok := h.ownedQuest(w, r, actor)
	if !ok {
		return
	}

	tags, err := h.traits.ListByQuest(r.Context(), h.pool, quest.ID)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("list quest traits", err))
		return
	}
	if tags == nil {
		tags = []domain.TraitDefinition{}
	}

	handler.RespondJSON(w, http.StatusOK, tags)
}

// ownedQuest loads the quest from the URL and checks the caller owns it.
// Unowned quests read as not found so quest IDs cannot be probed.
func (h *QuestHandler) ownedQuest(w http.ResponseWriter, r *http.Request, actor domain.Actor) (*domain.Quest, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid quest id"))
		return nil, false
	}

	quest, err := h.quests.FindByID(r.Context(), h.pool, id)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("find quest", err))
		return nil, false
	}
	if quest == nil || quest.ParentID != actor.ID {
		handler.RespondError(w, domain.ErrNotFound("quest", id.String()))
		return nil, false
	}
	return quest, true
}
