package repository

import (
	"context"
	"fmt"

	"github.com/herohabits/platform/internal/domain"
	"github.com/jackc/pgx/v5"
)

type levelRepo struct{}

// NewLevelRepository returns a pgx-backed LevelRepository.
func NewLevelRepository() LevelRepository {
	return &levelRepo{}
}

func (r *levelRepo) ExperienceForLevel(ctx context.Context, db DBTX, level int) (int64, bool, error) {
	var xp int64
	err := db.QueryRow(ctx, `
		SELECT experience_required FROM level_thresholds WHERE level = $1`, level).Scan(&xp)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("query level threshold: %w", err)
	}
	return xp, true, nil
}

func (r *levelRepo) List(ctx context.Context, db DBTX) ([]domain.LevelThreshold, error) {
	rows, err := db.Query(ctx, `
		SELECT level, experience_required FROM level_thresholds ORDER BY level ASC`)
	if err != nil {
		return nil, fmt.Errorf("list level thresholds: %w", err)
	}
	defer rows.Close()

	var out []domain.LevelThreshold
	for rows.Next() {
		var t domain.LevelThreshold
		if err := rows.Scan(&t.Level, &t.ExperienceRequired); err != nil {
			return nil, fmt.Errorf("scan level threshold: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *levelRepo) Upsert(ctx context.Context, db DBTX, t domain.LevelThreshold) error {
	_, err := db.Exec(ctx, `
		INSERT INTO level_thresholds (level, experience_required)
		VALUES ($1, $2)
		ON CONFLICT (level) DO UPDATE SET experience_required = EXCLUDED.experience_required`,
		t.Level, t.ExperienceRequired)
	if err != nil {
		return fmt.Errorf("upsert level threshold: %w", err)
	}
	return nil
}

func (r *levelRepo) Delete(ctx context.Context, db DBTX, level int) error {
	_, err := db.Exec(ctx, `DELETE FROM level_thresholds WHERE level = $1`, level)
	if err != nil {
		return fmt.Errorf("delete level threshold: %w", err)
	}
	return nil
}
