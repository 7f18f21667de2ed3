package guard

import (
	"context"
	"time"

	"github.com/herohabits/platform/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	MaxAttempts   = 5
	LockoutWindow = 15 * time.Minute
)

// RecordAttempt inserts a sign-in attempt row. Identity is the parent email
// or the character ID for child PIN sign-ins.
func RecordAttempt(ctx context.Context, pool *pgxpool.Pool, identity, realm, ip string, success bool) {
	_, _ = pool.Exec(ctx, `
		INSERT INTO login_attempts (identity, realm, ip_address, success)
		VALUES ($1, $2, $3, $4)`,
		identity, realm, ip, success)
}

// CheckLocked returns ErrAccountLocked if the identity has >= MaxAttempts
// failed sign-ins within the lockout window.
func CheckLocked(ctx context.Context, pool *pgxpool.Pool, identity, realm string) error {
	var count int
	err := pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM login_attempts
		WHERE identity = $1 AND realm = $2 AND success = false
		  AND created_at > $3`,
		identity, realm, time.Now().Add(-LockoutWindow)).Scan(&count)
	if err != nil {
		return nil // fail open on DB error — don't block sign-in
	}
	if count >= MaxAttempts {
		return domain.ErrAccountLocked("too many failed sign-in attempts, try again later")
	}
	return nil
}
