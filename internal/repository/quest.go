package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/domain"
	"github.com/jackc/pgx/v5"
)

type questRepo struct{}

// NewQuestRepository returns a pgx-backed QuestRepository.
func NewQuestRepository() QuestRepository {
	return &questRepo{}
}

const questColumns = `id, parent_id, title, description, gold_reward, active, created_at`

func (r *questRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Quest, error) {
	row := db.QueryRow(ctx, `
		SELECT `+questColumns+`
		FROM quests WHERE id = $1`, id)
	return scanQuest(row)
}

func (r *questRepo) ListByParent(ctx context.Context, db DBTX, parentID uuid.UUID) ([]domain.Quest, error) {
	return r.list(ctx, db, `
		SELECT `+questColumns+`
		FROM quests WHERE parent_id = $1
		ORDER BY created_at ASC`, parentID)
}

func (r *questRepo) ListActiveByParent(ctx context.Context, db DBTX, parentID uuid.UUID) ([]domain.Quest, error) {
	return r.list(ctx, db, `
		SELECT `+questColumns+`
		FROM quests WHERE parent_id = $1 AND active = true
		ORDER BY created_at ASC`, parentID)
}

func (r *questRepo) list(ctx context.Context, db DBTX, sql string, args ...interface{}) ([]domain.Quest, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list quests: %w", err)
	}
	defer rows.Close()

	var out []domain.Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func (r *questRepo) Create(ctx context.Context, db DBTX, q *domain.Quest) error {
	_, err := db.Exec(ctx, `
		INSERT INTO quests (id, parent_id, title, description, gold_reward, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		q.ID, q.ParentID, q.Title, q.Description, q.GoldReward, q.Active)
	if err != nil {
		return fmt.Errorf("insert quest: %w", err)
	}
	return nil
}

func (r *questRepo) Update(ctx context.Context, db DBTX, q *domain.Quest) error {
	_, err := db.Exec(ctx, `
		UPDATE quests SET title = $1, description = $2, gold_reward = $3, active = $4
		WHERE id = $5`,
		q.Title, q.Description, q.GoldReward, q.Active, q.ID)
	if err != nil {
		return fmt.Errorf("update quest: %w", err)
	}
	return nil
}

func (r *questRepo) SetActive(ctx context.Context, db DBTX, id uuid.UUID, active bool) error {
	_, err := db.Exec(ctx, `UPDATE quests SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set quest active: %w", err)
	}
	return nil
}

func (r *questRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	_, err := db.Exec(ctx, `DELETE FROM quests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quest: %w", err)
	}
	return nil
}

func (r *questRepo) SetTraits(ctx context.Context, db DBTX, questID uuid.UUID, traitIDs []uuid.UUID) error {
	if _, err := db.Exec(ctx, `DELETE FROM quest_traits WHERE quest_id = $1`, questID); err != nil {
		return fmt.Errorf("clear quest traits: %w", err)
	}
	for _, traitID := range traitIDs {
		if _, err := db.Exec(ctx, `
			INSERT INTO quest_traits (quest_id, trait_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, questID, traitID); err != nil {
			return fmt.Errorf("tag quest trait: %w", err)
		}
	}
	return nil
}

func scanQuest(row pgx.Row) (*domain.Quest, error) {
	var q domain.Quest
	err := row.Scan(&q.ID, &q.ParentID, &q.Title, &q.Description, &q.GoldReward, &q.Active, &q.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan quest: %w", err)
	}
	return &q, nil
}
