package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/domain"
	"github.com/herohabits/platform/internal/gold"
	"github.com/herohabits/platform/internal/repository"
)

// PurchaseResult reports a successful treasure redemption.
type PurchaseResult struct {
	Purchase   *domain.TreasurePurchase `json:"purchase"`
	NewBalance int64                    `json:"new_balance"`
}

// PurchaseWorkflow debits gold and records treasure purchases, enforcing
// affordability under a row lock.
type PurchaseWorkflow struct {
	db         DB
	characters repository.CharacterRepository
	treasures  repository.TreasureRepository
	outbox     repository.OutboxRepository
	ledger     *gold.Ledger
	logger     *slog.Logger
}

// NewPurchaseWorkflow wires the treasure purchase workflow.
func NewPurchaseWorkflow(
	db DB,
	characters repository.CharacterRepository,
	treasures repository.TreasureRepository,
	outbox repository.OutboxRepository,
	ledger *gold.Ledger,
	logger *slog.Logger,
) *PurchaseWorkflow {
	return &PurchaseWorkflow{
		db:         db,
		characters: characters,
		treasures:  treasures,
		outbox:     outbox,
		ledger:     ledger,
		logger:     logger,
	}
}

// Purchase atomically debits the treasure's cost and records a purchase row
// with the cost snapshotted. The debit locks the character row and
// re-checks affordability, so concurrent purchases against a balance
// sufficient for only one of them produce exactly one success.
func (w *PurchaseWorkflow) Purchase(ctx context.Context, actor domain.Actor, treasureID, characterID uuid.UUID) (*PurchaseResult, error) {
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

	treasure, err := w.treasures.FindByID(ctx, tx, treasureID)
	if err != nil {
		return nil, domain.ErrInternal("find treasure", err)
	}
	if treasure == nil || treasure.ParentID != character.ParentID {
		return nil, domain.ErrNotFound("treasure", treasureID.String())
	}
	if !treasure.Available {
		return nil, domain.ErrTreasureUnavailable(treasureID.String())
	}

	updated, err := w.ledger.Debit(ctx, tx, characterID, treasure.GoldCost)
	if err != nil {
		return nil, err
	}

	purchase := &domain.TreasurePurchase{
		ID:          uuid.New(),
		TreasureID:  treasureID,
		CharacterID: characterID,
		GoldSpent:   treasure.GoldCost,
		PurchasedAt: time.Now(),
	}
	if err := w.treasures.InsertPurchase(ctx, tx, purchase); err != nil {
		return nil, domain.ErrInternal("insert purchase", err)
	}
	if err := w.outbox.Insert(ctx, tx, domain.NewTreasurePurchasedEvent(purchase, updated.GoldBalance)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	w.logger.Info("treasure purchased",
		"purchase_id", purchase.ID,
		"treasure_id", treasureID,
		"character_id", characterID,
		"gold_spent", purchase.GoldSpent,
		"new_balance", updated.GoldBalance,
	)
	return &PurchaseResult{Purchase: purchase, NewBalance: updated.GoldBalance}, nil
}
