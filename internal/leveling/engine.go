package leveling

import (
	"context"

	"github.com/herohabits/platform/internal/domain"
)

// Result describes the outcome of one XP award on a progression track.
type Result struct {
	LeveledUp    bool  `json:"leveled_up"`
	LevelsGained int   `json:"levels_gained"`
	OldLevel     int   `json:"old_level"`
	NewLevel     int   `json:"new_level"`
	CurrentXP    int64 `json:"current_xp"`
	XPToNext     int64 `json:"xp_to_next_level"`
}

// Engine converts XP awards into level-ups for a single progression track.
// The same engine serves characters and trait progress; both are a
// domain.ProgressTrack.
type Engine struct {
	levels LevelSource
}

// NewEngine creates an experience engine over the given threshold source.
func NewEngine(levels LevelSource) *Engine {
	return &Engine{levels: levels}
}

// Award adds xp to the track and applies any level-ups. The caller persists
// the mutated track; Award itself touches no storage beyond threshold
// lookups.
//
// The loop stops when the next threshold is 0 (max level or a gap in the
// table) so malformed threshold data can never spin forever.
func (e *Engine) Award(ctx context.Context, track *domain.ProgressTrack, xp int64) (Result, error) {
	oldLevel := track.Level
	track.ExperiencePoints += xp

	for {
		next, err := e.levels.ExperienceForLevel(ctx, track.Level+1)
		if err != nil {
			return Result{}, err
		}
		if next == 0 || track.ExperiencePoints < next {
			break
		}
		track.Level++
	}

	toNext, err := e.XPToNextLevel(ctx, track)
	if err != nil {
		return Result{}, err
	}

	return Result{
		LeveledUp:    track.Level > oldLevel,
		LevelsGained: track.Level - oldLevel,
		OldLevel:     oldLevel,
		NewLevel:     track.Level,
		CurrentXP:    track.ExperiencePoints,
		XPToNext:     toNext,
	}, nil
}

// XPToNextLevel returns how much XP the track still needs for the next
// level, or 0 at max level.
func (e *Engine) XPToNextLevel(ctx context.Context, track *domain.ProgressTrack) (int64, error) {
	next, err := e.levels.ExperienceForLevel(ctx, track.Level+1)
	if err != nil {
		return 0, err
	}
	if next == 0 {
		return 0, nil
	}
	if remaining := next - track.ExperiencePoints; remaining > 0 {
		return remaining, nil
	}
	return 0, nil
}

// ProgressPercentage reports how far into the current level's XP span the
// track is, in [0,100]. Returns 100 at max level and 0 when the span has
// zero width.
func (e *Engine) ProgressPercentage(ctx context.Context, track *domain.ProgressTrack) (float64, error) {
	next, err := e.levels.ExperienceForLevel(ctx, track.Level+1)
	if err != nil {
		return 0, err
	}
	if next == 0 {
		return 100, nil
	}

	current, err := e.levels.ExperienceForLevel(ctx, track.Level)
	if err != nil {
		return 0, err
	}

	span := next - current
	if span <= 0 {
		return 0, nil
	}

	pct := float64(track.ExperiencePoints-current) / float64(span) * 100
	if pct < 0 {
		return 0, nil
	}
	if pct > 100 {
		return 100, nil
	}
	return pct, nil
}
