package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventCharacterCreated    EventType = "hh.character.created"
	EventCompletionSubmitted EventType = "hh.completion.submitted"
	EventCompletionAccepted  EventType = "hh.completion.accepted"
	EventCompletionDenied    EventType = "hh.completion.denied"
	EventLevelUp             EventType = "hh.character.levelup"
	EventTraitLevelUp        EventType = "hh.trait.levelup"
	EventTreasurePurchased   EventType = "hh.treasure.purchased"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateCharacter  AggregateType = "character"
	AggregateCompletion AggregateType = "completion"
	AggregateTreasure   AggregateType = "treasure"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

func newDraft(agg AggregateType, aggID string, evt EventType, payload []byte) OutboxDraft {
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: agg,
		AggregateID:   aggID,
		EventType:     evt,
		PartitionKey:  aggID,
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewCompletionSubmittedEvent records a new pending completion.
func NewCompletionSubmittedEvent(c *QuestCompletion) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"completion_id": c.ID.String(),
		"quest_id":      c.QuestID.String(),
		"character_id":  c.CharacterID.String(),
		"gold_earned":   c.GoldEarned,
	})
	return newDraft(AggregateCompletion, c.CharacterID.String(), EventCompletionSubmitted, payload)
}

// NewCompletionAcceptedEvent records an accepted completion with the gold
// and XP it produced.
func NewCompletionAcceptedEvent(c *QuestCompletion, newBalance int64) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"completion_id": c.ID.String(),
		"quest_id":      c.QuestID.String(),
		"character_id":  c.CharacterID.String(),
		"gold_earned":   c.GoldEarned,
		"xp_awarded":    c.GoldEarned * XPPerGold,
		"new_balance":   newBalance,
	})
	return newDraft(AggregateCompletion, c.CharacterID.String(), EventCompletionAccepted, payload)
}

// NewCompletionDeniedEvent records a denied completion.
func NewCompletionDeniedEvent(c *QuestCompletion) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"completion_id": c.ID.String(),
		"quest_id":      c.QuestID.String(),
		"character_id":  c.CharacterID.String(),
	})
	return newDraft(AggregateCompletion, c.CharacterID.String(), EventCompletionDenied, payload)
}

// NewLevelUpEvent records a character or trait level-up. Track is the
// character ID for character level-ups, or the trait name for trait
// level-ups.
func NewLevelUpEvent(characterID uuid.UUID, track string, oldLevel, newLevel int, trait bool) OutboxDraft {
	evt := EventLevelUp
	if trait {
		evt = EventTraitLevelUp
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"character_id": characterID.String(),
		"track":        track,
		"old_level":    oldLevel,
		"new_level":    newLevel,
	})
	return newDraft(AggregateCharacter, characterID.String(), evt, payload)
}

// NewTreasurePurchasedEvent records a treasure purchase.
func NewTreasurePurchasedEvent(p *TreasurePurchase, newBalance int64) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"purchase_id":  p.ID.String(),
		"treasure_id":  p.TreasureID.String(),
		"character_id": p.CharacterID.String(),
		"gold_spent":   p.GoldSpent,
		"new_balance":  newBalance,
	})
	return newDraft(AggregateTreasure, p.CharacterID.String(), EventTreasurePurchased, payload)
}

// NewCharacterCreatedEvent records a character lifecycle event.
func NewCharacterCreatedEvent(characterID, parentID uuid.UUID, name string) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"character_id": characterID.String(),
		"parent_id":    parentID.String(),
		"name":         name,
	})
	return newDraft(AggregateCharacter, characterID.String(), EventCharacterCreated, payload)
}
