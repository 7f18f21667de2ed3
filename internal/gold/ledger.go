// Package gold implements the atomic credit/debit operations on a
// character's gold balance.
package gold

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/domain"
	"github.com/herohabits/platform/internal/repository"
	"github.com/jackc/pgx/v5"
)

// Ledger performs gold balance mutations. All writes use server-side
// arithmetic inside the caller's transaction; Debit additionally takes a
// row lock and re-checks affordability after acquiring it, so two
// concurrent purchases can never both pass a stale balance check.
type Ledger struct {
	characters repository.CharacterRepository
}

// NewLedger creates a gold ledger over the character repository.
func NewLedger(characters repository.CharacterRepository) *Ledger {
	return &Ledger{characters: characters}
}

// Credit adds amount to the character's balance unconditionally and returns
// the updated character. Must be called within a transaction.
func (l *Ledger) Credit(ctx context.Context, tx pgx.Tx, characterID uuid.UUID, amount int64) (*domain.Character, error) {
	if err := domain.ValidateNonNegativeAmount(amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	character, err := l.characters.ApplyGold(ctx, tx, characterID, amount)
	if err != nil {
		return nil, fmt.Errorf("credit gold: %w", err)
	}
	if character == nil {
		return nil, domain.ErrNotFound("character", characterID.String())
	}
	return character, nil
}

// Debit subtracts amount only if the balance covers it. The character row is
// locked and the balance re-read before the subtraction; an insufficient
// balance is a no-op returning ErrInsufficientGold with the shortfall.
func (l *Ledger) Debit(ctx context.Context, tx pgx.Tx, characterID uuid.UUID, amount int64) (*domain.Character, error) {
	if err := domain.ValidateNonNegativeAmount(amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	character, err := l.characters.LockForUpdate(ctx, tx, characterID)
	if err != nil {
		return nil, fmt.Errorf("lock character: %w", err)
	}
	if character == nil {
		return nil, domain.ErrNotFound("character", characterID.String())
	}
	if character.GoldBalance < amount {
		return nil, domain.ErrInsufficientGold(amount, character.GoldBalance)
	}

	updated, err := l.characters.ApplyGold(ctx, tx, characterID, -amount)
	if err != nil {
		return nil, fmt.Errorf("debit gold: %w", err)
	}
	return updated, nil
}

// HasSufficientFunds is a read-only affordability check. It is advisory
// only: callers must still go through Debit, which re-checks under a lock.
func (l *Ledger) HasSufficientFunds(ctx context.Context, db repository.DBTX, characterID uuid.UUID, amount int64) (bool, error) {
	character, err := l.characters.FindByID(ctx, db, characterID)
	if err != nil {
		return false, err
	}
	if character == nil {
		return false, domain.ErrNotFound("character", characterID.String())
	}
	return character.GoldBalance >= amount, nil
}
