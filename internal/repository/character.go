package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/domain"
	"github.com/jackc/pgx/v5"
)

type characterRepo struct{}

// NewCharacterRepository returns a pgx-backed CharacterRepository.
func NewCharacterRepository() CharacterRepository {
	return &characterRepo{}
}

const characterColumns = `id, parent_id, name, pin_hash, gold_balance, level, experience_points, created_at, updated_at`

func (r *characterRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Character, error) {
	row := db.QueryRow(ctx, `
		SELECT `+characterColumns+`
		FROM characters WHERE id = $1`, id)
	return scanCharacter(row)
}

func (r *characterRepo) ListByParent(ctx context.Context, db DBTX, parentID uuid.UUID) ([]domain.Character, error) {
	rows, err := db.Query(ctx, `
		SELECT `+characterColumns+`
		FROM characters WHERE parent_id = $1
		ORDER BY created_at ASC`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var out []domain.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *characterRepo) Create(ctx context.Context, db DBTX, c *domain.Character) error {
	_, err := db.Exec(ctx, `
		INSERT INTO characters (id, parent_id, name, pin_hash, gold_balance, level, experience_points, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`,
		c.ID, c.ParentID, c.Name, c.PINHash, c.GoldBalance, c.Level, c.ExperiencePoints)
	if err != nil {
		return fmt.Errorf("insert character: %w", err)
	}
	return nil
}

func (r *characterRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	_, err := db.Exec(ctx, `DELETE FROM characters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	return nil
}

func (r *characterRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Character, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+characterColumns+`
		FROM characters WHERE id = $1 FOR UPDATE`, id)
	return scanCharacter(row)
}

// ApplyGold uses server-side arithmetic so concurrent credits never clobber
// each other.
func (r *characterRepo) ApplyGold(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int64) (*domain.Character, error) {
	row := tx.QueryRow(ctx, `
		UPDATE characters
		SET gold_balance = gold_balance + $1, updated_at = now()
		WHERE id = $2
		RETURNING `+characterColumns, delta, id)
	return scanCharacter(row)
}

func (r *characterRepo) UpdateProgress(ctx context.Context, tx pgx.Tx, id uuid.UUID, track domain.ProgressTrack) (*domain.Character, error) {
	row := tx.QueryRow(ctx, `
		UPDATE characters
		SET level = $1, experience_points = $2, updated_at = now()
		WHERE id = $3
		RETURNING `+characterColumns, track.Level, track.ExperiencePoints, id)
	return scanCharacter(row)
}

func scanCharacter(row pgx.Row) (*domain.Character, error) {
	var c domain.Character
	err := row.Scan(&c.ID, &c.ParentID, &c.Name, &c.PINHash, &c.GoldBalance,
		&c.Level, &c.ExperiencePoints, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan character: %w", err)
	}
	return &c, nil
}
