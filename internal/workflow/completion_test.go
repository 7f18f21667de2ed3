package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submit(t *testing.T, f *fixture) *domain.QuestCompletion {
	t.Helper()
	completion, err := f.completionWf.Submit(context.Background(), f.asChild(),
		f.quest.ID, f.character.ID, time.Now())
	require.NoError(t, err)
	return completion
}

func TestSubmit_CreatesPendingCompletion(t *testing.T) {
	f := newFixture(15)

	completion := submit(t, f)

	assert.Equal(t, domain.CompletionPending, completion.Status)
	assert.Equal(t, int64(15), completion.GoldEarned)
	assert.Equal(t, domain.CompletionDay(time.Now()), completion.CompletionDate)
	assert.Nil(t, completion.ApprovedBy)

	// No gold or XP before approval.
	stored := f.characters.characters[f.character.ID]
	assert.Equal(t, int64(0), stored.GoldBalance)
	assert.Equal(t, int64(0), stored.ExperiencePoints)

	assert.Equal(t, []domain.EventType{domain.EventCompletionSubmitted}, f.outbox.eventTypes())
}

func TestSubmit_SameDayDuplicateRejected(t *testing.T) {
	f := newFixture(15)
	submit(t, f)

	_, err := f.completionWf.Submit(context.Background(), f.asChild(),
		f.quest.ID, f.character.ID, time.Now())
	require.Error(t, err)

	appErr := err.(*domain.AppError)
	assert.Equal(t, "ALREADY_COMPLETED", appErr.Code)
	assert.Equal(t, "pending", appErr.Details["status"])
}

func TestSubmit_DeniedCompletionStillBlocksTheDay(t *testing.T) {
	f := newFixture(15)
	completion := submit(t, f)

	_, err := f.completionWf.Deny(context.Background(), f.asParent(), completion.ID)
	require.NoError(t, err)

	_, err = f.completionWf.Submit(context.Background(), f.asChild(),
		f.quest.ID, f.character.ID, time.Now())
	require.Error(t, err)

	appErr := err.(*domain.AppError)
	assert.Equal(t, "ALREADY_COMPLETED", appErr.Code)
	assert.Equal(t, "denied", appErr.Details["status"])
}

func TestSubmit_DifferentDaysAllowed(t *testing.T) {
	f := newFixture(15)
	submit(t, f)

	_, err := f.completionWf.Submit(context.Background(), f.asChild(),
		f.quest.ID, f.character.ID, time.Now().Add(24*time.Hour))
	require.NoError(t, err)
}

func TestSubmit_InactiveQuestRejected(t *testing.T) {
	f := newFixture(15)
	f.quest.Active = false
	f.quests.quests[f.quest.ID] = f.quest

	_, err := f.completionWf.Submit(context.Background(), f.asChild(),
		f.quest.ID, f.character.ID, time.Now())
	require.Error(t, err)
	assert.Equal(t, "QUEST_INACTIVE", err.(*domain.AppError).Code)
}

func TestSubmit_ChildCannotSubmitForSibling(t *testing.T) {
	f := newFixture(15)
	sibling := &domain.Character{ID: uuid.New(), ParentID: f.parentID, Name: "Bo",
		ProgressTrack: domain.ProgressTrack{Level: 1}}
	f.characters.characters[sibling.ID] = sibling

	_, err := f.completionWf.Submit(context.Background(), f.asChild(),
		f.quest.ID, sibling.ID, time.Now())
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", err.(*domain.AppError).Code)
}

func TestSubmit_OtherFamilysQuestReadsAsNotFound(t *testing.T) {
	f := newFixture(15)
	otherQuest := &domain.Quest{ID: uuid.New(), ParentID: uuid.New(),
		Title: "Other family's quest", GoldReward: 5, Active: true}
	f.quests.quests[otherQuest.ID] = otherQuest

	_, err := f.completionWf.Submit(context.Background(), f.asChild(),
		otherQuest.ID, f.character.ID, time.Now())
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", err.(*domain.AppError).Code)
}

func TestAccept_CreditsGoldAndAwardsXP(t *testing.T) {
	// 15 gold at the fixed 10:1 ratio is 150 XP; the level 2 threshold is
	// 100, so accepting levels the character up.
	f := newFixture(15, "Discipline", "Kindness")
	completion := submit(t, f)

	result, err := f.completionWf.Accept(context.Background(), f.asParent(), completion.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.CompletionAccepted, result.Completion.Status)
	assert.Equal(t, int64(15), result.NewBalance)
	assert.Equal(t, int64(150), result.XPAwarded)
	assert.True(t, result.CharacterLevelUp.LeveledUp)
	assert.Equal(t, 2, result.CharacterLevelUp.NewLevel)

	stored := f.characters.characters[f.character.ID]
	assert.Equal(t, int64(15), stored.GoldBalance)
	assert.Equal(t, int64(150), stored.ExperiencePoints)
	assert.Equal(t, 2, stored.Level)
}

func TestAccept_SplitsXPAcrossTraits(t *testing.T) {
	f := newFixture(15, "Discipline", "Kindness")
	completion := submit(t, f)

	_, err := f.completionWf.Accept(context.Background(), f.asParent(), completion.ID)
	require.NoError(t, err)

	// 150 XP over two traits: 75 each.
	for _, def := range f.traits.byQuest[f.quest.ID] {
		p := f.traits.progress[progressKey{f.character.ID, def.ID}]
		require.NotNil(t, p, "progress row for %s", def.Name)
		assert.Equal(t, int64(75), p.ExperiencePoints)
		assert.Equal(t, 1, p.Level)
	}
}

func TestAccept_TraitRemainderDropped(t *testing.T) {
	// 10 gold = 100 XP over three traits: 33 each, 1 dropped.
	f := newFixture(10, "Discipline", "Kindness", "Health")
	completion := submit(t, f)

	result, err := f.completionWf.Accept(context.Background(), f.asParent(), completion.ID)
	require.NoError(t, err)

	var total int64
	for _, def := range f.traits.byQuest[f.quest.ID] {
		total += f.traits.progress[progressKey{f.character.ID, def.ID}].ExperiencePoints
	}
	assert.Equal(t, int64(99), total)
	assert.Empty(t, result.TraitLevelUps)
}

func TestAccept_NoTraitsTagged(t *testing.T) {
	f := newFixture(15)
	completion := submit(t, f)

	result, err := f.completionWf.Accept(context.Background(), f.asParent(), completion.ID)
	require.NoError(t, err)

	assert.Empty(t, result.TraitLevelUps)
	assert.Empty(t, f.traits.progress)
}

func TestAccept_EmitsLevelUpEvents(t *testing.T) {
	f := newFixture(15, "Discipline")
	completion := submit(t, f)

	// 150 XP to the single trait levels it up too.
	_, err := f.completionWf.Accept(context.Background(), f.asParent(), completion.ID)
	require.NoError(t, err)

	types := f.outbox.eventTypes()
	assert.Contains(t, types, domain.EventCompletionAccepted)
	assert.Contains(t, types, domain.EventLevelUp)
	assert.Contains(t, types, domain.EventTraitLevelUp)
}

func TestAccept_AlreadyProcessedRejected(t *testing.T) {
	f := newFixture(15)
	completion := submit(t, f)

	_, err := f.completionWf.Accept(context.Background(), f.asParent(), completion.ID)
	require.NoError(t, err)

	_, err = f.completionWf.Accept(context.Background(), f.asParent(), completion.ID)
	require.Error(t, err)

	appErr := err.(*domain.AppError)
	assert.Equal(t, "ALREADY_PROCESSED", appErr.Code)
	assert.Equal(t, "accepted", appErr.Details["status"])

	// Effects applied exactly once.
	assert.Equal(t, int64(15), f.characters.characters[f.character.ID].GoldBalance)
}

func TestAccept_ChildCannotApprove(t *testing.T) {
	f := newFixture(15)
	completion := submit(t, f)

	_, err := f.completionWf.Accept(context.Background(), f.asChild(), completion.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", err.(*domain.AppError).Code)
}

func TestAccept_OtherParentReadsAsNotFound(t *testing.T) {
	f := newFixture(15)
	completion := submit(t, f)

	stranger := domain.Actor{ID: uuid.New(), Role: domain.RoleParent}
	_, err := f.completionWf.Accept(context.Background(), stranger, completion.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", err.(*domain.AppError).Code)
}

func TestDeny_NoGoldOrXPEffects(t *testing.T) {
	f := newFixture(15, "Discipline")
	completion := submit(t, f)

	denied, err := f.completionWf.Deny(context.Background(), f.asParent(), completion.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.CompletionDenied, denied.Status)
	require.NotNil(t, denied.ApprovedBy)
	assert.Equal(t, f.parentID, *denied.ApprovedBy)

	stored := f.characters.characters[f.character.ID]
	assert.Equal(t, int64(0), stored.GoldBalance)
	assert.Equal(t, int64(0), stored.ExperiencePoints)
	assert.Empty(t, f.traits.progress)
}

func TestDeny_TerminalStateCannotFlip(t *testing.T) {
	f := newFixture(15)
	completion := submit(t, f)

	_, err := f.completionWf.Deny(context.Background(), f.asParent(), completion.ID)
	require.NoError(t, err)

	_, err = f.completionWf.Accept(context.Background(), f.asParent(), completion.ID)
	require.Error(t, err)
	assert.Equal(t, "ALREADY_PROCESSED", err.(*domain.AppError).Code)
}

func TestBulkAccept_ProcessesAllPending(t *testing.T) {
	f := newFixture(5)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		c, err := f.completionWf.Submit(context.Background(), f.asChild(),
			f.quest.ID, f.character.ID, time.Now().Add(time.Duration(i)*24*time.Hour))
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	result, err := f.completionWf.BulkAccept(context.Background(), f.asParent(), ids)
	require.NoError(t, err)

	assert.Equal(t, 3, result.ProcessedCount)
	assert.Equal(t, int64(15), f.characters.characters[f.character.ID].GoldBalance)
	// 3 * 50 XP, level 2 threshold is 100.
	assert.Len(t, result.LevelUps, 1)
}

func TestBulkAccept_SkipsProcessedAndMissing(t *testing.T) {
	f := newFixture(5)
	first := submit(t, f)
	second, err := f.completionWf.Submit(context.Background(), f.asChild(),
		f.quest.ID, f.character.ID, time.Now().Add(24*time.Hour))
	require.NoError(t, err)

	_, err = f.completionWf.Deny(context.Background(), f.asParent(), first.ID)
	require.NoError(t, err)

	result, err := f.completionWf.BulkAccept(context.Background(), f.asParent(),
		[]uuid.UUID{first.ID, second.ID, uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, 1, result.ProcessedCount)
	assert.Equal(t, int64(5), f.characters.characters[f.character.ID].GoldBalance)
}

func TestBulkDeny_ProcessesAllPending(t *testing.T) {
	f := newFixture(5)
	var ids []uuid.UUID
	for i := 0; i < 2; i++ {
		c, err := f.completionWf.Submit(context.Background(), f.asChild(),
			f.quest.ID, f.character.ID, time.Now().Add(time.Duration(i)*24*time.Hour))
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	result, err := f.completionWf.BulkDeny(context.Background(), f.asParent(), ids)
	require.NoError(t, err)

	assert.Equal(t, 2, result.ProcessedCount)
	assert.Equal(t, int64(0), f.characters.characters[f.character.ID].GoldBalance)
}
