package leveling

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/domain"
	"github.com/herohabits/platform/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressKey struct {
	characterID uuid.UUID
	traitID     uuid.UUID
}

// fakeTraitRepo keeps trait progress in a map and ignores the tx handle.
type fakeTraitRepo struct {
	progress map[progressKey]*domain.TraitProgress
	created  int
}

func newFakeTraitRepo() *fakeTraitRepo {
	return &fakeTraitRepo{progress: make(map[progressKey]*domain.TraitProgress)}
}

func (f *fakeTraitRepo) ListDefinitions(context.Context, repository.DBTX) ([]domain.TraitDefinition, error) {
	return nil, nil
}

func (f *fakeTraitRepo) FindDefinition(context.Context, repository.DBTX, uuid.UUID) (*domain.TraitDefinition, error) {
	return nil, nil
}

func (f *fakeTraitRepo) ListByQuest(context.Context, repository.DBTX, uuid.UUID) ([]domain.TraitDefinition, error) {
	return nil, nil
}

func (f *fakeTraitRepo) LockProgressForUpdate(_ context.Context, _ pgx.Tx, characterID, traitID uuid.UUID) (*domain.TraitProgress, error) {
	p, ok := f.progress[progressKey{characterID, traitID}]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeTraitRepo) CreateProgress(_ context.Context, _ pgx.Tx, p *domain.TraitProgress) error {
	cp := *p
	f.progress[progressKey{p.CharacterID, p.TraitID}] = &cp
	f.created++
	return nil
}

func (f *fakeTraitRepo) UpdateProgress(_ context.Context, _ pgx.Tx, characterID, traitID uuid.UUID, track domain.ProgressTrack) (*domain.TraitProgress, error) {
	p := f.progress[progressKey{characterID, traitID}]
	p.ProgressTrack = track
	cp := *p
	return &cp, nil
}

func (f *fakeTraitRepo) ListProgressByCharacter(_ context.Context, _ repository.DBTX, characterID uuid.UUID) ([]domain.TraitProgress, error) {
	var out []domain.TraitProgress
	for k, p := range f.progress {
		if k.characterID == characterID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func traitDefs(names ...string) []domain.TraitDefinition {
	defs := make([]domain.TraitDefinition, 0, len(names))
	for _, n := range names {
		defs = append(defs, domain.TraitDefinition{ID: uuid.New(), Name: n})
	}
	return defs
}

func TestSplitXP_EvenSplit(t *testing.T) {
	assert.Equal(t, int64(75), SplitXP(150, 2))
}

func TestSplitXP_RemainderDropped(t *testing.T) {
	// 100 / 3 = 33, remainder 1 is dropped, not redistributed.
	assert.Equal(t, int64(33), SplitXP(100, 3))
}

func TestSplitXP_NoTraits(t *testing.T) {
	assert.Equal(t, int64(0), SplitXP(100, 0))
	assert.Equal(t, int64(0), SplitXP(100, -1))
}

func TestDistribute_EmptyTraitsIsNoOp(t *testing.T) {
	repo := newFakeTraitRepo()
	d := NewDistributor(repo, NewEngine(defaultCurve()))

	results, err := d.Distribute(context.Background(), nil, uuid.New(), nil, 150)
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Zero(t, repo.created)
}

func TestDistribute_LazilyCreatesProgressRows(t *testing.T) {
	repo := newFakeTraitRepo()
	d := NewDistributor(repo, NewEngine(defaultCurve()))
	characterID := uuid.New()
	defs := traitDefs("Discipline", "Kindness")

	results, err := d.Distribute(context.Background(), nil, characterID, defs, 150)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, 2, repo.created)
	for _, r := range results {
		assert.Equal(t, int64(75), r.XPAwarded)
		assert.Equal(t, int64(75), r.CurrentXP)
		assert.False(t, r.LeveledUp)
	}
}

func TestDistribute_TraitLevelUp(t *testing.T) {
	repo := newFakeTraitRepo()
	d := NewDistributor(repo, NewEngine(defaultCurve()))
	characterID := uuid.New()
	defs := traitDefs("Discipline")

	repo.progress[progressKey{characterID, defs[0].ID}] = &domain.TraitProgress{
		CharacterID:   characterID,
		TraitID:       defs[0].ID,
		ProgressTrack: domain.ProgressTrack{Level: 1, ExperiencePoints: 90},
	}

	results, err := d.Distribute(context.Background(), nil, characterID, defs, 20)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.True(t, results[0].LeveledUp)
	assert.Equal(t, 2, results[0].NewLevel)

	persisted := repo.progress[progressKey{characterID, defs[0].ID}]
	assert.Equal(t, 2, persisted.Level)
	assert.Equal(t, int64(110), persisted.ExperiencePoints)
}

func TestDistribute_ResultsCoverAllTraits(t *testing.T) {
	// Distribute reports every trait touched, leveled or not; callers
	// filter for level-ups themselves.
	repo := newFakeTraitRepo()
	d := NewDistributor(repo, NewEngine(defaultCurve()))
	characterID := uuid.New()
	defs := traitDefs("Discipline", "Kindness", "Health")

	results, err := d.Distribute(context.Background(), nil, characterID, defs, 100)
	require.NoError(t, err)

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, defs[i].ID, r.TraitID)
		assert.Equal(t, int64(33), r.XPAwarded)
	}
}
