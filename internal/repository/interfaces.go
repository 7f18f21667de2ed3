package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// CharacterRepository provides access to characters.
type CharacterRepository interface {
	// FindByID returns a character by ID, nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Character, error)

	// ListByParent returns all characters owned by a parent account.
	ListByParent(ctx context.Context, db DBTX, parentID uuid.UUID) ([]domain.Character, error)

	// Create inserts a new character.
	Create(ctx context.Context, db DBTX, c *domain.Character) error

	// Delete removes a character; quests history, trait progress and
	// purchases cascade at the schema level.
	Delete(ctx context.Context, db DBTX, id uuid.UUID) error

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and
	// returns the character. Must be called within a transaction.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Character, error)

	// ApplyGold atomically adjusts the gold balance using server-side
	// arithmetic and returns the updated row.
	ApplyGold(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int64) (*domain.Character, error)

	// UpdateProgress persists the character's level and cumulative XP.
	UpdateProgress(ctx context.Context, tx pgx.Tx, id uuid.UUID, track domain.ProgressTrack) (*domain.Character, error)
}

// QuestRepository provides access to quests and their trait tags.
type QuestRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Quest, error)
	ListByParent(ctx context.Context, db DBTX, parentID uuid.UUID) ([]domain.Quest, error)
	ListActiveByParent(ctx context.Context, db DBTX, parentID uuid.UUID) ([]domain.Quest, error)
	Create(ctx context.Context, db DBTX, q *domain.Quest) error
	Update(ctx context.Context, db DBTX, q *domain.Quest) error
	SetActive(ctx context.Context, db DBTX, id uuid.UUID, active bool) error
	Delete(ctx context.Context, db DBTX, id uuid.UUID) error

	// SetTraits replaces the quest's trait tags.
	SetTraits(ctx context.Context, db DBTX, questID uuid.UUID, traitIDs []uuid.UUID) error
}

// TraitRepository provides access to trait_definitions and trait_progress.
type TraitRepository interface {
	ListDefinitions(ctx context.Context, db DBTX) ([]domain.TraitDefinition, error)
	FindDefinition(ctx context.Context, db DBTX, id uuid.UUID) (*domain.TraitDefinition, error)

	// ListByQuest returns the trait definitions tagged on a quest, ordered
	// by sort order.
	ListByQuest(ctx context.Context, db DBTX, questID uuid.UUID) ([]domain.TraitDefinition, error)

	// LockProgressForUpdate locks and returns one character×trait progress
	// row, or nil when the trait has never earned XP for that character.
	LockProgressForUpdate(ctx context.Context, tx pgx.Tx, characterID, traitID uuid.UUID) (*domain.TraitProgress, error)

	// CreateProgress inserts a lazily-created progress row.
	CreateProgress(ctx context.Context, tx pgx.Tx, p *domain.TraitProgress) error

	// UpdateProgress persists a trait track's level and cumulative XP.
	UpdateProgress(ctx context.Context, tx pgx.Tx, characterID, traitID uuid.UUID, track domain.ProgressTrack) (*domain.TraitProgress, error)

	ListProgressByCharacter(ctx context.Context, db DBTX, characterID uuid.UUID) ([]domain.TraitProgress, error)
}

// CompletionRepository provides access to quest_completions.
type CompletionRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.QuestCompletion, error)

	// LockForUpdate acquires a row-level lock on one completion.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.QuestCompletion, error)

	// FindForDate returns the completion for (quest, character, day), nil
	// if none exists. Day must be a UTC calendar day.
	FindForDate(ctx context.Context, db DBTX, questID, characterID uuid.UUID, day time.Time) (*domain.QuestCompletion, error)

	Insert(ctx context.Context, db DBTX, c *domain.QuestCompletion) error

	// UpdateStatus transitions a completion to a terminal status and stamps
	// the approver.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.CompletionStatus, approvedBy uuid.UUID, approvedAt time.Time) (*domain.QuestCompletion, error)

	// ListPendingByParent returns pending completions for quests owned by
	// the parent, oldest first.
	ListPendingByParent(ctx context.Context, db DBTX, parentID uuid.UUID) ([]domain.QuestCompletion, error)

	ListByCharacter(ctx context.Context, db DBTX, characterID uuid.UUID, limit int) ([]domain.QuestCompletion, error)
}

// TreasureRepository provides access to treasures and treasure_purchases.
type TreasureRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Treasure, error)
	ListByParent(ctx context.Context, db DBTX, parentID uuid.UUID) ([]domain.Treasure, error)
	ListAvailableByParent(ctx context.Context, db DBTX, parentID uuid.UUID) ([]domain.Treasure, error)
	Create(ctx context.Context, db DBTX, t *domain.Treasure) error
	Update(ctx context.Context, db DBTX, t *domain.Treasure) error
	SetAvailable(ctx context.Context, db DBTX, id uuid.UUID, available bool) error
	Delete(ctx context.Context, db DBTX, id uuid.UUID) error

	// InsertPurchase records a purchase row (same transaction as the debit).
	InsertPurchase(ctx context.Context, tx pgx.Tx, p *domain.TreasurePurchase) error

	ListPurchasesByCharacter(ctx context.Context, db DBTX, characterID uuid.UUID) ([]domain.TreasurePurchase, error)
}

// LevelRepository provides access to level_thresholds.
type LevelRepository interface {
	// ExperienceForLevel returns the cumulative XP required to reach the
	// level; found is false when the level has no defined threshold.
	ExperienceForLevel(ctx context.Context, db DBTX, level int) (xp int64, found bool, err error)

	List(ctx context.Context, db DBTX) ([]domain.LevelThreshold, error)
	Upsert(ctx context.Context, db DBTX, t domain.LevelThreshold) error
	Delete(ctx context.Context, db DBTX, level int) error
}

// ParentAccountRepository provides access to parent_accounts.
type ParentAccountRepository interface {
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.ParentAccount, error)
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.ParentAccount, error)
	Create(ctx context.Context, db DBTX, a *domain.ParentAccount) error
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the
	// state change it describes).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events for the outbox poller.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	// MarkPublished stamps events as published.
	MarkPublished(ctx context.Context, db DBTX, ids []uuid.UUID) error
}
