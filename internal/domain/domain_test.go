package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("parent@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("missing@tld"))
}

func TestValidatePIN(t *testing.T) {
	assert.NoError(t, ValidatePIN("1234"))
	assert.NoError(t, ValidatePIN("123456"))
	assert.Error(t, ValidatePIN(""))
	assert.Error(t, ValidatePIN("123"))
	assert.Error(t, ValidatePIN("1234567"))
	assert.Error(t, ValidatePIN("12ab"))
}

func TestValidateAmounts(t *testing.T) {
	assert.NoError(t, ValidatePositiveAmount(1))
	assert.Error(t, ValidatePositiveAmount(0))
	assert.Error(t, ValidatePositiveAmount(-5))

	assert.NoError(t, ValidateNonNegativeAmount(0))
	assert.Error(t, ValidateNonNegativeAmount(-1))
}

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle("Make the bed"))
	assert.Error(t, ValidateTitle(""))
	assert.Error(t, ValidateTitle("   "))

	long := make([]byte, 121)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateTitle(string(long)))
}

func TestValidateThresholdPlacement_StrictlyIncreasing(t *testing.T) {
	existing := []LevelThreshold{
		{Level: 1, ExperienceRequired: 0},
		{Level: 2, ExperienceRequired: 100},
		{Level: 4, ExperienceRequired: 475},
	}

	// Fits between the neighbors.
	assert.NoError(t, ValidateThresholdPlacement(existing, LevelThreshold{Level: 3, ExperienceRequired: 250}))

	// Below a preceding level: a character with 60 XP would sit at level 1
	// while level 3's threshold is already covered.
	err := ValidateThresholdPlacement(existing, LevelThreshold{Level: 3, ExperienceRequired: 50})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "greater than 100")

	// Equal to a preceding level is not strictly increasing either.
	assert.Error(t, ValidateThresholdPlacement(existing, LevelThreshold{Level: 3, ExperienceRequired: 100}))

	// At or above a following level.
	assert.Error(t, ValidateThresholdPlacement(existing, LevelThreshold{Level: 3, ExperienceRequired: 475}))
	assert.Error(t, ValidateThresholdPlacement(existing, LevelThreshold{Level: 3, ExperienceRequired: 500}))
}

func TestValidateThresholdPlacement_ReplacesOwnLevel(t *testing.T) {
	existing := []LevelThreshold{
		{Level: 2, ExperienceRequired: 100},
		{Level: 3, ExperienceRequired: 250},
		{Level: 4, ExperienceRequired: 475},
	}

	// Rewriting level 3 compares against its neighbors, not its old value.
	assert.NoError(t, ValidateThresholdPlacement(existing, LevelThreshold{Level: 3, ExperienceRequired: 300}))
	assert.Error(t, ValidateThresholdPlacement(existing, LevelThreshold{Level: 3, ExperienceRequired: 90}))
}

func TestValidateThresholdPlacement_AppendBeyondTable(t *testing.T) {
	existing := []LevelThreshold{
		{Level: 2, ExperienceRequired: 100},
		{Level: 3, ExperienceRequired: 250},
	}

	assert.NoError(t, ValidateThresholdPlacement(existing, LevelThreshold{Level: 4, ExperienceRequired: 475}))
	assert.Error(t, ValidateThresholdPlacement(existing, LevelThreshold{Level: 4, ExperienceRequired: 250}))
	assert.NoError(t, ValidateThresholdPlacement(nil, LevelThreshold{Level: 2, ExperienceRequired: 100}))
}

func TestCompletionDay_NormalizesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 02:30 on Jan 2 in UTC+5 is 21:30 on Jan 1 UTC.
	local := time.Date(2026, 1, 2, 2, 30, 0, 0, loc)

	day := CompletionDay(local)

	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), day)
}

func TestCompletionDay_Idempotent(t *testing.T) {
	now := time.Now()
	assert.Equal(t, CompletionDay(now), CompletionDay(CompletionDay(now)))
}

func TestIsPending(t *testing.T) {
	c := &QuestCompletion{Status: CompletionPending}
	assert.True(t, c.IsPending())

	c.Status = CompletionAccepted
	assert.False(t, c.IsPending())

	c.Status = CompletionDenied
	assert.False(t, c.IsPending())
}

func TestErrInsufficientGold_ReportsShortfall(t *testing.T) {
	err := ErrInsufficientGold(100, 30)

	assert.Equal(t, "INSUFFICIENT_GOLD", err.Code)
	assert.Equal(t, 400, err.Status)
	assert.Equal(t, int64(100), err.Details["required"])
	assert.Equal(t, int64(30), err.Details["available"])
	assert.Equal(t, int64(70), err.Details["shortfall"])
}

func TestErrAlreadyCompleted_IncludesStatus(t *testing.T) {
	err := ErrAlreadyCompleted(CompletionDenied)

	assert.Equal(t, "ALREADY_COMPLETED", err.Code)
	assert.Equal(t, "denied", err.Details["status"])
}

func TestErrInternal_WrapsCause(t *testing.T) {
	cause := assert.AnError
	err := ErrInternal("query failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "INTERNAL_ERROR")
}

func TestNewCompletionAcceptedEvent(t *testing.T) {
	c := &QuestCompletion{
		ID:          uuid.New(),
		QuestID:     uuid.New(),
		CharacterID: uuid.New(),
		GoldEarned:  15,
		Status:      CompletionAccepted,
	}

	draft := NewCompletionAcceptedEvent(c, 115)

	assert.Equal(t, EventCompletionAccepted, draft.EventType)
	assert.Equal(t, AggregateCompletion, draft.AggregateType)
	assert.Equal(t, c.CharacterID.String(), draft.AggregateID)
	require.NotEmpty(t, draft.Payload)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(draft.Payload, &payload))
	assert.EqualValues(t, 115, payload["new_balance"])
}

func TestXPPerGoldRatio(t *testing.T) {
	// One gold piece is worth exactly ten experience points.
	assert.Equal(t, 10, XPPerGold)
	assert.Equal(t, int64(150), int64(15)*XPPerGold)
}
