package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/domain"
	"github.com/jackc/pgx/v5"
)

type parentRepo struct{}

// NewParentAccountRepository returns a pgx-backed ParentAccountRepository.
func NewParentAccountRepository() ParentAccountRepository {
	return &parentRepo{}
}

func (r *parentRepo) FindByEmail(ctx context.Context, db DBTX, email string) (*domain.ParentAccount, error) {
	row := db.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM parent_accounts WHERE email = $1`, email)
	return scanParent(row)
}

func (r *parentRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.ParentAccount, error) {
	row := db.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at, updated_at
		FROM parent_accounts WHERE id = $1`, id)
	return scanParent(row)
}

func (r *parentRepo) Create(ctx context.Context, db DBTX, a *domain.ParentAccount) error {
	_, err := db.Exec(ctx, `
		INSERT INTO parent_accounts (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())`,
		a.ID, a.Email, a.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert parent account: %w", err)
	}
	return nil
}

func scanParent(row pgx.Row) (*domain.ParentAccount, error) {
	var a domain.ParentAccount
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan parent account: %w", err)
	}
	return &a, nil
}
