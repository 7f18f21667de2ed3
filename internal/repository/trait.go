package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/domain"
	"github.com/jackc/pgx/v5"
)

type traitRepo struct{}

// NewTraitRepository returns a pgx-backed TraitRepository.
func NewTraitRepository() TraitRepository {
	return &traitRepo{}
}

func (r *traitRepo) ListDefinitions(ctx context.Context, db DBTX) ([]domain.TraitDefinition, error) {
	rows, err := db.Query(ctx, `
		SELECT id, name, description, icon, sort_order
		FROM trait_definitions
		ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("list traits: %w", err)
	}
	defer rows.Close()
	return collectTraitDefs(rows)
}

func (r *traitRepo) FindDefinition(ctx context.Context, db DBTX, id uuid.UUID) (*domain.TraitDefinition, error) {
	row := db.QueryRow(ctx, `
		SELECT id, name, description, icon, sort_order
		FROM trait_definitions WHERE id = $1`, id)
	return scanTraitDef(row)
}

func (r *traitRepo) ListByQuest(ctx context.Context, db DBTX, questID uuid.UUID) ([]domain.TraitDefinition, error) {
	rows, err := db.Query(ctx, `
		SELECT t.id, t.name, t.description, t.icon, t.sort_order
		FROM trait_definitions t
		JOIN quest_traits qt ON qt.trait_id = t.id
		WHERE qt.quest_id = $1
		ORDER BY t.sort_order ASC`, questID)
	if err != nil {
		return nil, fmt.Errorf("list quest traits: %w", err)
	}
	defer rows.Close()
	return collectTraitDefs(rows)
}

func (r *traitRepo) LockProgressForUpdate(ctx context.Context, tx pgx.Tx, characterID, traitID uuid.UUID) (*domain.TraitProgress, error) {
	row := tx.QueryRow(ctx, `
		SELECT character_id, trait_id, level, experience_points, updated_at
		FROM trait_progress
		WHERE character_id = $1 AND trait_id = $2 FOR UPDATE`, characterID, traitID)
	return scanTraitProgress(row)
}

func (r *traitRepo) CreateProgress(ctx context.Context, tx pgx.Tx, p *domain.TraitProgress) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO trait_progress (character_id, trait_id, level, experience_points, updated_at)
		VALUES ($1, $2, $3, $4, now())`,
		p.CharacterID, p.TraitID, p.Level, p.ExperiencePoints)
	if err != nil {
		return fmt.Errorf("insert trait progress: %w", err)
	}
	return nil
}

func (r *traitRepo) UpdateProgress(ctx context.Context, tx pgx.Tx, characterID, traitID uuid.UUID, track domain.ProgressTrack) (*domain.TraitProgress, error) {
	row := tx.QueryRow(ctx, `
		UPDATE trait_progress
		SET level = $1, experience_points = $2, updated_at = now()
		WHERE character_id = $3 AND trait_id = $4
		RETURNING character_id, trait_id, level, experience_points, updated_at`,
		track.Level, track.ExperiencePoints, characterID, traitID)
	return scanTraitProgress(row)
}

func (r *traitRepo) ListProgressByCharacter(ctx context.Context, db DBTX, characterID uuid.UUID) ([]domain.TraitProgress, error) {
	rows, err := db.Query(ctx, `
		SELECT character_id, trait_id, level, experience_points, updated_at
		FROM trait_progress
		WHERE character_id = $1`, characterID)
	if err != nil {
		return nil, fmt.Errorf("list trait progress: %w", err)
	}
	defer rows.Close()

	var out []domain.TraitProgress
	for rows.Next() {
		p, err := scanTraitProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func collectTraitDefs(rows pgx.Rows) ([]domain.TraitDefinition, error) {
	var out []domain.TraitDefinition
	for rows.Next() {
		t, err := scanTraitDef(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTraitDef(row pgx.Row) (*domain.TraitDefinition, error) {
	var t domain.TraitDefinition
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Icon, &t.SortOrder)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan trait: %w", err)
	}
	return &t, nil
}

func scanTraitProgress(row pgx.Row) (*domain.TraitProgress, error) {
	var p domain.TraitProgress
	err := row.Scan(&p.CharacterID, &p.TraitID, &p.Level, &p.ExperiencePoints, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan trait progress: %w", err)
	}
	return &p, nil
}
