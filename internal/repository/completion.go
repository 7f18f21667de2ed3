package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/domain"
	"github.com/jackc/pgx/v5"
)

type completionRepo struct{}

// NewCompletionRepository returns a pgx-backed CompletionRepository.
func NewCompletionRepository() CompletionRepository {
	return &completionRepo{}
}

const completionColumns = `id, quest_id, character_id, completion_date, gold_earned, status, approved_by, approved_at, completed_at`

func (r *completionRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.QuestCompletion, error) {
	row := db.QueryRow(ctx, `
		SELECT `+completionColumns+`
		FROM quest_completions WHERE id = $1`, id)
	return scanCompletion(row)
}

func (r *completionRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.QuestCompletion, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+completionColumns+`
		FROM quest_completions WHERE id = $1 FOR UPDATE`, id)
	return scanCompletion(row)
}

func (r *completionRepo) FindForDate(ctx context.Context, db DBTX, questID, characterID uuid.UUID, day time.Time) (*domain.QuestCompletion, error) {
	row := db.QueryRow(ctx, `
		SELECT `+completionColumns+`
		FROM quest_completions
		WHERE quest_id = $1 AND character_id = $2 AND completion_date = $3`,
		questID, characterID, day)
	return scanCompletion(row)
}

func (r *completionRepo) Insert(ctx context.Context, db DBTX, c *domain.QuestCompletion) error {
	_, err := db.Exec(ctx, `
		INSERT INTO quest_completions
		  (id, quest_id, character_id, completion_date, gold_earned, status, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.QuestID, c.CharacterID, c.CompletionDate, c.GoldEarned, string(c.Status), c.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert completion: %w", err)
	}
	return nil
}

func (r *completionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.CompletionStatus, approvedBy uuid.UUID, approvedAt time.Time) (*domain.QuestCompletion, error) {
	row := tx.QueryRow(ctx, `
		UPDATE quest_completions
		SET status = $1, approved_by = $2, approved_at = $3
		WHERE id = $4
		RETURNING `+completionColumns, string(status), approvedBy, approvedAt, id)
	return scanCompletion(row)
}

func (r *completionRepo) ListPendingByParent(ctx context.Context, db DBTX, parentID uuid.UUID) ([]domain.QuestCompletion, error) {
	rows, err := db.Query(ctx, `
		SELECT c.id, c.quest_id, c.character_id, c.completion_date, c.gold_earned,
		       c.status, c.approved_by, c.approved_at, c.completed_at
		FROM quest_completions c
		JOIN quests q ON q.id = c.quest_id
		WHERE q.parent_id = $1 AND c.status = 'pending'
		ORDER BY c.completed_at ASC`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list pending completions: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

func (r *completionRepo) ListByCharacter(ctx context.Context, db DBTX, characterID uuid.UUID, limit int) ([]domain.QuestCompletion, error) {
	rows, err := db.Query(ctx, `
		SELECT `+completionColumns+`
		FROM quest_completions
		WHERE character_id = $1
		ORDER BY completed_at DESC
		LIMIT $2`, characterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()
	return collectCompletions(rows)
}

func collectCompletions(rows pgx.Rows) ([]domain.QuestCompletion, error) {
	var out []domain.QuestCompletion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanCompletion(row pgx.Row) (*domain.QuestCompletion, error) {
	var c domain.QuestCompletion
	var status string
	err := row.Scan(&c.ID, &c.QuestID, &c.CharacterID, &c.CompletionDate, &c.GoldEarned,
		&status, &c.ApprovedBy, &c.ApprovedAt, &c.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan completion: %w", err)
	}
	c.Status = domain.CompletionStatus(status)
	return &c, nil
}
