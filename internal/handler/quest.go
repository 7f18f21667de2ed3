package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/auth"
	"github.com/herohabits/platform/internal/domain"
	"github.com/herohabits/platform/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestHandler serves the quest board for signed-in characters.
type QuestHandler struct {
	pool       *pgxpool.Pool
	characters repository.CharacterRepository
	quests     repository.QuestRepository
	traits     repository.TraitRepository
}

// NewQuestHandler creates a new QuestHandler.
func NewQuestHandler(pool *pgxpool.Pool, characters repository.CharacterRepository, quests repository.QuestRepository, traits repository.TraitRepository) *QuestHandler {
	return &QuestHandler{pool: pool, characters: characters, quests: quests, traits: traits}
}

type questBoardEntry struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	GoldReward  int64     `json:"gold_reward"`
	Traits      []string  `json:"traits"`
}

// ListActive handles GET /quests — the active quests the character's family
// has posted, with the traits each quest trains.
func (h *QuestHandler) ListActive(w http.ResponseWriter, r *http.Request) {
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

	quests, err := h.quests.ListActiveByParent(r.Context(), h.pool, character.ParentID)
	if err != nil {
		RespondError(w, domain.ErrInternal("list quests", err))
		return
	}

	board := make([]questBoardEntry, 0, len(quests))
	for _, q := range quests {
		tags, err := h.traits.ListByQuest(r.Context(), h.pool, q.ID)
		if err != nil {
			RespondError(w, domain.ErrInternal("list quest traits", err))
			return
		}
		names := make([]string, 0, len(tags))
		for _, t := range tags {
			names = append(names, t.Name)
		}
		board = append(board, questBoardEntry{
			ID:          q.ID,
			Title:       q.Title,
			Description: q.Description,
			GoldReward:  q.GoldReward,
			Traits:      names,
		})
	}

	RespondJSON(w, http.StatusOK, board)
}
