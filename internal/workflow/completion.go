// Package workflow orchestrates the quest-completion and treasure-purchase
// lifecycles. Every operation is a single bounded transaction: it either
// fully commits (status change, gold, XP, outbox events together) or fully
// rolls back.
package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/domain"
	"github.com/herohabits/platform/internal/gold"
	"github.com/herohabits/platform/internal/leveling"
	"github.com/herohabits/platform/internal/repository"
	"github.com/jackc/pgx/v5"
)

// DB is the handle workflows open transactions on. *pgxpool.Pool satisfies
// it.
type DB interface {
	repository.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AcceptResult reports what a parent's approval produced, for caller
// notification (new balance, level-up banners).
type AcceptResult struct {
	Completion       *domain.QuestCompletion `json:"completion"`
	NewBalance       int64                   `json:"new_balance"`
	XPAwarded        int64                   `json:"xp_awarded"`
	CharacterLevelUp leveling.Result         `json:"character_level_up"`
	TraitLevelUps    []leveling.TraitResult  `json:"trait_level_ups"`
}

// BulkResult summarizes a bulk accept/deny pass.
type BulkResult struct {
	ProcessedCount int                    `json:"processed_count"`
	LevelUps       []leveling.Result      `json:"level_ups,omitempty"`
	TraitLevelUps  []leveling.TraitResult `json:"trait_level_ups,omitempty"`
}

// CompletionWorkflow is the state machine for a quest completion:
// Pending -> Accepted | Denied, both terminal.
type CompletionWorkflow struct {
	db          DB
	characters  repository.CharacterRepository
	quests      repository.QuestRepository
	completions repository.CompletionRepository
	traits      repository.TraitRepository
	outbox      repository.OutboxRepository
	ledger      *gold.Ledger
	engine      *leveling.Engine
	distributor *leveling.Distributor
	logger      *slog.Logger
}

// NewCompletionWorkflow wires the completion state machine.
func NewCompletionWorkflow(
	db DB,
	characters repository.CharacterRepository,
	quests repository.QuestRepository,
	completions repository.CompletionRepository,
	traits repository.TraitRepository,
	outbox repository.OutboxRepository,
	ledger *gold.Ledger,
	engine *leveling.Engine,
	distributor *leveling.Distributor,
	logger *slog.Logger,
) *CompletionWorkflow {
	return &CompletionWorkflow{
		db:          db,
		characters:  characters,
		quests:      quests,
		completions: completions,
		traits:      traits,
		outbox:      outbox,
		ledger:      ledger,
		engine:      engine,
		distributor: distributor,
		logger:      logger,
	}
}

// Submit creates a Pending completion for (quest, character, day). The gold
// reward is snapshotted at submission time so later quest edits don't
// rewrite history. A second submission for the same day fails with
// ALREADY_COMPLETED regardless of the existing completion's status; the
// unique index on (quest_id, character_id, completion_date) backs the
// in-transaction check.
func (w *CompletionWorkflow) Submit(ctx context.Context, actor domain.Actor, questID, characterID uuid.UUID, day time.Time) (*domain.QuestCompletion, error) {
	day = domain.CompletionDay(day)

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	character, err := w.characters.FindByID(ctx, tx, characterID)
	if err != nil {
		return nil, domain.ErrInternal("find character", err)
	}
	if character == nil {
		return nil, domain.ErrNotFound("character", characterID.String())
	}
	if err := authorizeCharacterAction(actor, character); err != nil {
		return nil, err
	}

	quest, err := w.quests.FindByID(ctx, tx, questID)
	if err != nil {
		return nil, domain.ErrInternal("find quest", err)
	}
	if quest == nil || quest.ParentID != character.ParentID {
		return nil, domain.ErrNotFound("quest", questID.String())
	}
	if !quest.Active {
		return nil, domain.ErrQuestInactive(questID.String())
	}

	existing, err := w.completions.FindForDate(ctx, tx, questID, characterID, day)
	if err != nil {
		return nil, domain.ErrInternal("check existing completion", err)
	}
	if existing != nil {
		return nil, domain.ErrAlreadyCompleted(existing.Status)
	}

	completion := &domain.QuestCompletion{
		ID:             uuid.New(),
		QuestID:        questID,
		CharacterID:    characterID,
		CompletionDate: day,
		GoldEarned:     quest.GoldReward,
		Status:         domain.CompletionPending,
		CompletedAt:    time.Now(),
	}
	if err := w.completions.Insert(ctx, tx, completion); err != nil {
		return nil, domain.ErrInternal("insert completion", err)
	}
	if err := w.outbox.Insert(ctx, tx, domain.NewCompletionSubmittedEvent(completion)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	w.logger.Info("completion submitted",
		"completion_id", completion.ID,
		"quest_id", questID,
		"character_id", characterID,
		"gold_earned", completion.GoldEarned,
	)
	return completion, nil
}

// Accept transitions a Pending completion to Accepted and applies its
// effects atomically: gold credit, character XP at the fixed 10:1 ratio,
// and trait XP distribution. The completion and character rows are locked
// and the Pending guard re-checked after the lock.
func (w *CompletionWorkflow) Accept(ctx context.Context, approver domain.Actor, completionID uuid.UUID) (*AcceptResult, error) {
	if !approver.IsParent() {
		return nil, domain.ErrForbidden("only a parent can accept completions")
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	result, err := w.acceptLocked(ctx, tx, approver, completionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	w.logger.Info("completion accepted",
		"completion_id", completionID,
		"character_id", result.Completion.CharacterID,
		"gold_credited", result.Completion.GoldEarned,
		"xp_awarded", result.XPAwarded,
		"leveled_up", result.CharacterLevelUp.LeveledUp,
	)
	return result, nil
}

// acceptLocked performs the accept inside the caller's transaction.
// Pattern: lock -> re-check guard -> apply effects -> outbox.
func (w *CompletionWorkflow) acceptLocked(ctx context.Context, tx pgx.Tx, approver domain.Actor, completionID uuid.UUID) (*AcceptResult, error) {
	completion, err := w.completions.LockForUpdate(ctx, tx, completionID)
	if err != nil {
		return nil, domain.ErrInternal("lock completion", err)
	}
	if completion == nil {
		return nil, domain.ErrNotFound("completion", completionID.String())
	}

	quest, err := w.quests.FindByID(ctx, tx, completion.QuestID)
	if err != nil {
		return nil, domain.ErrInternal("find quest", err)
	}
	if quest == nil || quest.ParentID != approver.ID {
		return nil, domain.ErrNotFound("completion", completionID.String())
	}

	if !completion.IsPending() {
		return nil, domain.ErrAlreadyProcessed(completion.Status)
	}

	completion, err = w.completions.UpdateStatus(ctx, tx, completionID, domain.CompletionAccepted, approver.ID, time.Now())
	if err != nil {
		return nil, domain.ErrInternal("update completion status", err)
	}

	character, err := w.characters.LockForUpdate(ctx, tx, completion.CharacterID)
	if err != nil {
		return nil, domain.ErrInternal("lock character", err)
	}
	if character == nil {
		return nil, domain.ErrNotFound("character", completion.CharacterID.String())
	}

	updated, err := w.ledger.Credit(ctx, tx, character.ID, completion.GoldEarned)
	if err != nil {
		return nil, err
	}

	xp := completion.GoldEarned * domain.XPPerGold
	track := character.ProgressTrack
	levelUp, err := w.engine.Award(ctx, &track, xp)
	if err != nil {
		return nil, domain.ErrInternal("award character xp", err)
	}
	if _, err := w.characters.UpdateProgress(ctx, tx, character.ID, track); err != nil {
		return nil, domain.ErrInternal("persist character progress", err)
	}

	questTraits, err := w.traits.ListByQuest(ctx, tx, quest.ID)
	if err != nil {
		return nil, domain.ErrInternal("list quest traits", err)
	}
	traitResults, err := w.distributor.Distribute(ctx, tx, character.ID, questTraits, xp)
	if err != nil {
		return nil, domain.ErrInternal("distribute trait xp", err)
	}

	drafts := []domain.OutboxDraft{domain.NewCompletionAcceptedEvent(completion, updated.GoldBalance)}
	if levelUp.LeveledUp {
		drafts = append(drafts, domain.NewLevelUpEvent(character.ID, character.Name, levelUp.OldLevel, levelUp.NewLevel, false))
	}
	traitLevelUps := make([]leveling.TraitResult, 0)
	for _, tr := range traitResults {
		if tr.LeveledUp {
			traitLevelUps = append(traitLevelUps, tr)
			drafts = append(drafts, domain.NewLevelUpEvent(character.ID, tr.TraitName, tr.OldLevel, tr.NewLevel, true))
		}
	}
	for _, draft := range drafts {
		if err := w.outbox.Insert(ctx, tx, draft); err != nil {
			return nil, domain.ErrInternal("insert outbox event", err)
		}
	}

	return &AcceptResult{
		Completion:       completion,
		NewBalance:       updated.GoldBalance,
		XPAwarded:        xp,
		CharacterLevelUp: levelUp,
		TraitLevelUps:    traitLevelUps,
	}, nil
}

// Deny transitions a Pending completion to Denied. No gold or XP effects.
func (w *CompletionWorkflow) Deny(ctx context.Context, approver domain.Actor, completionID uuid.UUID) (*domain.QuestCompletion, error) {
	if !approver.IsParent() {
		return nil, domain.ErrForbidden("only a parent can deny completions")
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	completion, err := w.denyLocked(ctx, tx, approver, completionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	w.logger.Info("completion denied", "completion_id", completionID, "character_id", completion.CharacterID)
	return completion, nil
}

func (w *CompletionWorkflow) denyLocked(ctx context.Context, tx pgx.Tx, approver domain.Actor, completionID uuid.UUID) (*domain.QuestCompletion, error) {
	completion, err := w.completions.LockForUpdate(ctx, tx, completionID)
	if err != nil {
		return nil, domain.ErrInternal("lock completion", err)
	}
	if completion == nil {
		return nil, domain.ErrNotFound("completion", completionID.String())
	}

	quest, err := w.quests.FindByID(ctx, tx, completion.QuestID)
	if err != nil {
		return nil, domain.ErrInternal("find quest", err)
	}
	if quest == nil || quest.ParentID != approver.ID {
		return nil, domain.ErrNotFound("completion", completionID.String())
	}

	if !completion.IsPending() {
		return nil, domain.ErrAlreadyProcessed(completion.Status)
	}

	completion, err = w.completions.UpdateStatus(ctx, tx, completionID, domain.CompletionDenied, approver.ID, time.Now())
	if err != nil {
		return nil, domain.ErrInternal("update completion status", err)
	}
	if err := w.outbox.Insert(ctx, tx, domain.NewCompletionDeniedEvent(completion)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}
	return completion, nil
}

// BulkAccept accepts every listed completion that is still Pending and
// owned by the approver, inside one enclosing transaction. Rows already
// processed, missing, or not owned are skipped, not errored.
func (w *CompletionWorkflow) BulkAccept(ctx context.Context, approver domain.Actor, completionIDs []uuid.UUID) (*BulkResult, error) {
	if !approver.IsParent() {
		return nil, domain.ErrForbidden("only a parent can accept completions")
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	result := &BulkResult{}
	for _, id := range completionIDs {
		res, err := w.acceptLocked(ctx, tx, approver, id)
		if err != nil {
			if isSkippable(err) {
				continue
			}
			return nil, err
		}
		result.ProcessedCount++
		if res.CharacterLevelUp.LeveledUp {
			result.LevelUps = append(result.LevelUps, res.CharacterLevelUp)
		}
		result.TraitLevelUps = append(result.TraitLevelUps, res.TraitLevelUps...)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	w.logger.Info("bulk accept", "requested", len(completionIDs), "accepted", result.ProcessedCount)
	return result, nil
}

// BulkDeny is the deny analogue of BulkAccept.
func (w *CompletionWorkflow) BulkDeny(ctx context.Context, approver domain.Actor, completionIDs []uuid.UUID) (*BulkResult, error) {
	if !approver.IsParent() {
		return nil, domain.ErrForbidden("only a parent can deny completions")
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	result := &BulkResult{}
	for _, id := range completionIDs {
		if _, err := w.denyLocked(ctx, tx, approver, id); err != nil {
			if isSkippable(err) {
				continue
			}
			return nil, err
		}
		result.ProcessedCount++
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	w.logger.Info("bulk deny", "requested", len(completionIDs), "denied", result.ProcessedCount)
	return result, nil
}

// isSkippable reports whether a per-row failure should be skipped during
// bulk processing: already-processed rows and rows the approver can't see.
func isSkippable(err error) bool {
	appErr, ok := err.(*domain.AppError)
	if !ok {
		return false
	}
	return appErr.Code == "ALREADY_PROCESSED" || appErr.Code == "NOT_FOUND"
}

// authorizeCharacterAction checks that the actor may act for the character:
// a child only for itself, a parent only for its own children. Unowned
// characters surface as NOT_FOUND rather than FORBIDDEN so IDs can't be
// probed.
func authorizeCharacterAction(actor domain.Actor, character *domain.Character) error {
	switch actor.Role {
	case domain.RoleChild:
		if actor.ID != character.ID {
			return domain.ErrForbidden("character does not belong to this session")
		}
	case domain.RoleParent:
		if actor.ID != character.ParentID {
			return domain.ErrNotFound("character", character.ID.String())
		}
	default:
		return domain.ErrForbidden("unknown actor role")
	}
	return nil
}
