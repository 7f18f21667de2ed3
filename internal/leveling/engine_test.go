package leveling

import (
	"context"
	"testing"

	"github.com/herohabits/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLevelSource serves thresholds from a map; missing levels read as 0
// (max level), same contract as the real Table.
type fakeLevelSource struct {
	thresholds map[int]int64
}

func (f *fakeLevelSource) ExperienceForLevel(_ context.Context, level int) (int64, error) {
	if level <= 1 {
		return 0, nil
	}
	return f.thresholds[level], nil
}

func defaultCurve() *fakeLevelSource {
	return &fakeLevelSource{thresholds: map[int]int64{
		2: 100,
		3: 250,
		4: 475,
	}}
}

func TestAward_NoLevelUp(t *testing.T) {
	engine := NewEngine(defaultCurve())
	track := domain.ProgressTrack{Level: 1, ExperiencePoints: 0}

	res, err := engine.Award(context.Background(), &track, 50)
	require.NoError(t, err)

	assert.False(t, res.LeveledUp)
	assert.Equal(t, 1, track.Level)
	assert.Equal(t, int64(50), track.ExperiencePoints)
	assert.Equal(t, int64(50), res.XPToNext)
}

func TestAward_SingleLevelUp(t *testing.T) {
	engine := NewEngine(defaultCurve())
	track := domain.ProgressTrack{Level: 1, ExperiencePoints: 0}

	res, err := engine.Award(context.Background(), &track, 150)
	require.NoError(t, err)

	assert.True(t, res.LeveledUp)
	assert.Equal(t, 1, res.OldLevel)
	assert.Equal(t, 2, res.NewLevel)
	assert.Equal(t, 1, res.LevelsGained)
	assert.Equal(t, int64(150), track.ExperiencePoints)
	assert.Equal(t, int64(100), res.XPToNext) // 250 - 150
}

func TestAward_MultipleLevelsInOneAward(t *testing.T) {
	engine := NewEngine(defaultCurve())
	track := domain.ProgressTrack{Level: 1, ExperiencePoints: 0}

	res, err := engine.Award(context.Background(), &track, 300)
	require.NoError(t, err)

	assert.Equal(t, 3, track.Level)
	assert.Equal(t, 2, res.LevelsGained)
	assert.Equal(t, int64(300), track.ExperiencePoints)
}

func TestAward_ExactThresholdLevels(t *testing.T) {
	engine := NewEngine(defaultCurve())
	track := domain.ProgressTrack{Level: 1, ExperiencePoints: 0}

	res, err := engine.Award(context.Background(), &track, 100)
	require.NoError(t, err)

	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, track.Level)
}

func TestAward_MissingThresholdIsMaxLevel(t *testing.T) {
	// No threshold for level 5: reaching level 4 stops leveling even
	// with a huge XP surplus.
	engine := NewEngine(defaultCurve())
	track := domain.ProgressTrack{Level: 1, ExperiencePoints: 0}

	res, err := engine.Award(context.Background(), &track, 1_000_000)
	require.NoError(t, err)

	assert.Equal(t, 4, track.Level)
	assert.Equal(t, int64(1_000_000), track.ExperiencePoints)
	assert.Equal(t, int64(0), res.XPToNext)
}

func TestAward_XPNeverResetsOnLevelUp(t *testing.T) {
	engine := NewEngine(defaultCurve())
	track := domain.ProgressTrack{Level: 1, ExperiencePoints: 90}

	_, err := engine.Award(context.Background(), &track, 20)
	require.NoError(t, err)

	assert.Equal(t, 2, track.Level)
	assert.Equal(t, int64(110), track.ExperiencePoints)
}

func TestXPToNextLevel_AtMaxLevel(t *testing.T) {
	engine := NewEngine(defaultCurve())
	track := domain.ProgressTrack{Level: 4, ExperiencePoints: 500}

	toNext, err := engine.XPToNextLevel(context.Background(), &track)
	require.NoError(t, err)
	assert.Equal(t, int64(0), toNext)
}

func TestProgressPercentage_MidLevel(t *testing.T) {
	engine := NewEngine(defaultCurve())
	// Level 2 spans 100..250; 175 is halfway.
	track := domain.ProgressTrack{Level: 2, ExperiencePoints: 175}

	pct, err := engine.ProgressPercentage(context.Background(), &track)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, pct, 0.001)
}

func TestProgressPercentage_MaxLevelIsFull(t *testing.T) {
	engine := NewEngine(defaultCurve())
	track := domain.ProgressTrack{Level: 4, ExperiencePoints: 9999}

	pct, err := engine.ProgressPercentage(context.Background(), &track)
	require.NoError(t, err)
	assert.Equal(t, 100.0, pct)
}
