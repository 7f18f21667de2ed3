package domain

import (
	"time"

	"github.com/google/uuid"
)

// Quest is a recurring chore a parent defines with a gold reward, optionally
// tagged with traits that earn XP when the quest is accepted.
type Quest struct {
	ID          uuid.UUID `json:"id"`
	ParentID    uuid.UUID `json:"parent_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	GoldReward  int64     `json:"gold_reward"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// CompletionStatus is the state of a quest completion.
// Pending transitions exactly once to Accepted or Denied; both are terminal.
type CompletionStatus string

const (
	CompletionPending  CompletionStatus = "pending"
	CompletionAccepted CompletionStatus = "accepted"
	CompletionDenied   CompletionStatus = "denied"
)

// QuestCompletion is one instance of a character finishing a quest on a
// given date. GoldEarned is snapshotted from the quest's reward at
// submission time so later quest edits don't rewrite history. At most one
// completion exists per (quest, character, completion date).
type QuestCompletion struct {
	ID             uuid.UUID        `json:"id"`
	QuestID        uuid.UUID        `json:"quest_id"`
	CharacterID    uuid.UUID        `json:"character_id"`
	CompletionDate time.Time        `json:"completion_date"`
	GoldEarned     int64            `json:"gold_earned"`
	Status         CompletionStatus `json:"status"`
	ApprovedBy     *uuid.UUID       `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time       `json:"approved_at,omitempty"`
	CompletedAt    time.Time        `json:"completed_at"`
}

// IsPending reports whether the completion can still be accepted or denied.
func (c *QuestCompletion) IsPending() bool {
	return c.Status == CompletionPending
}

// CompletionDay normalizes a timestamp to the calendar day (UTC) used for
// the one-completion-per-day rule.
func CompletionDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
