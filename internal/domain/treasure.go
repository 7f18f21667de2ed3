package domain

import (
	"time"

	"github.com/google/uuid"
)

// Treasure is a purchasable reward a parent defines with a gold cost.
type Treasure struct {
	ID          uuid.UUID `json:"id"`
	ParentID    uuid.UUID `json:"parent_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	GoldCost    int64     `json:"gold_cost"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
}

// TreasurePurchase records a redeemed treasure. GoldSpent is snapshotted
// from the treasure's cost at purchase time; rows are immutable once created.
type TreasurePurchase struct {
	ID          uuid.UUID `json:"id"`
	TreasureID  uuid.UUID `json:"treasure_id"`
	CharacterID uuid.UUID `json:"character_id"`
	GoldSpent   int64     `json:"gold_spent"`
	PurchasedAt time.Time `json:"purchased_at"`
}
