package leveling

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/herohabits/platform/internal/repository"
)

// LevelSource supplies cumulative XP thresholds to the experience engine.
// A zero return for any level above 1 means "no further leveling" (max
// level), never "free level".
type LevelSource interface {
	ExperienceForLevel(ctx context.Context, level int) (int64, error)
}

// Table is the threshold lookup backed by level_thresholds, with an LRU
// cache keyed by level. Thresholds are stable reference data; the cache is
// purged when a parent edits thresholds so staleness only ever affects
// display timing, not gold or XP arithmetic.
type Table struct {
	db     repository.DBTX
	levels repository.LevelRepository
	cache  *lru.Cache
}

// NewTable creates a threshold table over the given handle.
func NewTable(db repository.DBTX, levels repository.LevelRepository) (*Table, error) {
	cache, err := lru.New(256)
	if err != nil {
		return nil, fmt.Errorf("create level cache: %w", err)
	}
	return &Table{db: db, levels: levels, cache: cache}, nil
}

// ExperienceForLevel returns the cumulative XP required to reach level.
// Level 1 and below require 0 XP; levels with no defined threshold return 0,
// which callers must treat as "max level reached".
func (t *Table) ExperienceForLevel(ctx context.Context, level int) (int64, error) {
	if level <= 1 {
		return 0, nil
	}
	if v, ok := t.cache.Get(level); ok {
		return v.(int64), nil
	}

	xp, found, err := t.levels.ExperienceForLevel(ctx, t.db, level)
	if err != nil {
		return 0, err
	}
	if !found {
		xp = 0
	}
	t.cache.Add(level, xp)
	return xp, nil
}

// Invalidate drops all cached thresholds. Called after admin-side threshold
// edits.
func (t *Table) Invalidate() {
	t.cache.Purge()
}
