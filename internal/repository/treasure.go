package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/domain"
	"github.com/jackc/pgx/v5"
)

type treasureRepo struct{}

// NewTreasureRepository returns a pgx-backed TreasureRepository.
func NewTreasureRepository() TreasureRepository {
	return &treasureRepo{}
}

const treasureColumns = `id, parent_id, title, description, gold_cost, available, created_at`

func (r *treasureRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Treasure, error) {
	row := db.QueryRow(ctx, `
		SELECT `+treasureColumns+`
		FROM treasures WHERE id = $1`, id)
	return scanTreasure(row)
}

func (r *treasureRepo) ListByParent(ctx context.Context, db DBTX, parentID uuid.UUID) ([]domain.Treasure, error) {
	return r.list(ctx, db, `
		SELECT `+treasureColumns+`
		FROM treasures WHERE parent_id = $1
		ORDER BY created_at ASC`, parentID)
}

func (r *treasureRepo) ListAvailableByParent(ctx context.Context, db DBTX, parentID uuid.UUID) ([]domain.Treasure, error) {
	return r.list(ctx, db, `
		SELECT `+treasureColumns+`
		FROM treasures WHERE parent_id = $1 AND available = true
		ORDER BY gold_cost ASC`, parentID)
}

func (r *treasureRepo) list(ctx context.Context, db DBTX, sql string, args ...interface{}) ([]domain.Treasure, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list treasures: %w", err)
	}
	defer rows.Close()

	var out []domain.Treasure
	for rows.Next() {
		t, err := scanTreasure(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *treasureRepo) Create(ctx context.Context, db DBTX, t *domain.Treasure) error {
	_, err := db.Exec(ctx, `
		INSERT INTO treasures (id, parent_id, title, description, gold_cost, available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		t.ID, t.ParentID, t.Title, t.Description, t.GoldCost, t.Available)
	if err != nil {
		return fmt.Errorf("insert treasure: %w", err)
	}
	return nil
}

func (r *treasureRepo) Update(ctx context.Context, db DBTX, t *domain.Treasure) error {
	_, err := db.Exec(ctx, `
		UPDATE treasures SET title = $1, description = $2, gold_cost = $3, available = $4
		WHERE id = $5`,
		t.Title, t.Description, t.GoldCost, t.Available, t.ID)
	if err != nil {
		return fmt.Errorf("update treasure: %w", err)
	}
	return nil
}

func (r *treasureRepo) SetAvailable(ctx context.Context, db DBTX, id uuid.UUID, available bool) error {
	_, err := db.Exec(ctx, `UPDATE treasures SET available = $1 WHERE id = $2`, available, id)
	if err != nil {
		return fmt.Errorf("set treasure available: %w", err)
	}
	return nil
}

func (r *treasureRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	_, err := db.Exec(ctx, `DELETE FROM treasures WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete treasure: %w", err)
	}
	return nil
}

func (r *treasureRepo) InsertPurchase(ctx context.Context, tx pgx.Tx, p *domain.TreasurePurchase) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO treasure_purchases (id, treasure_id, character_id, gold_spent, purchased_at)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.TreasureID, p.CharacterID, p.GoldSpent, p.PurchasedAt)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

func (r *treasureRepo) ListPurchasesByCharacter(ctx context.Context, db DBTX, characterID uuid.UUID) ([]domain.TreasurePurchase, error) {
	rows, err := db.Query(ctx, `
		SELECT id, treasure_id, character_id, gold_spent, purchased_at
		FROM treasure_purchases
		WHERE character_id = $1
		ORDER BY purchased_at DESC`, characterID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []domain.TreasurePurchase
	for rows.Next() {
		var p domain.TreasurePurchase
		if err := rows.Scan(&p.ID, &p.TreasureID, &p.CharacterID, &p.GoldSpent, &p.PurchasedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanTreasure(row pgx.Row) (*domain.Treasure, error) {
	var t domain.Treasure
	err := row.Scan(&t.ID, &t.ParentID, &t.Title, &t.Description, &t.GoldCost, &t.Available, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan treasure: %w", err)
	}
	return &t, nil
}
