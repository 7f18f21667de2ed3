package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProgressTrack is the leveled progression state shared by a character and
// its per-trait progress rows. ExperiencePoints is cumulative over the
// track's whole lifetime and never resets on level-up; Level is always the
// highest level whose cumulative threshold is <= ExperiencePoints.
type ProgressTrack struct {
	Level            int   `json:"level"`
	ExperiencePoints int64 `json:"experience_points"`
}

// Character is a child profile: a gold balance plus a progression track,
// owned by a parent account.
type Character struct {
	ID       uuid.UUID `json:"id"`
	ParentID uuid.UUID `json:"parent_id"`
	Name     string    `json:"name"`
	PINHash  string    `json:"-"`
	ProgressTrack
	GoldBalance int64     `json:"gold_balance"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TraitDefinition is a global character-growth axis (e.g. "Discipline").
// Reference data, not owned by any character.
type TraitDefinition struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	SortOrder   int       `json:"sort_order"`
}

// TraitProgress tracks one character's leveling on one trait. Rows are
// created lazily the first time a trait earns XP for the character,
// defaulting to level 1 / 0 XP.
type TraitProgress struct {
	CharacterID uuid.UUID `json:"character_id"`
	TraitID     uuid.UUID `json:"trait_id"`
	ProgressTrack
	UpdatedAt time.Time `json:"updated_at"`
}

// LevelThreshold holds the cumulative XP required to reach a level.
// Immutable reference data; thresholds strictly increase with level and
// level 1 requires 0 XP.
type LevelThreshold struct {
	Level              int   `json:"level"`
	ExperienceRequired int64 `json:"experience_required"`
}

// XPPerGold is the fixed XP-to-gold ratio applied when a completion is
// accepted: each gold piece earned awards 10 experience points.
const XPPerGold = 10

// ParentAccount holds credentials for a parent from parent_accounts.
type ParentAccount struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
