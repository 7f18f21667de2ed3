package handler

import (
	"net/http"

	"github.com/herohabits/platform/internal/infra"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler reports service liveness. The database is the only hard
// dependency; Kafka being down only delays notifications, so it doesn't
// fail the check.
func HealthHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := infra.HealthCheck(r.Context(), pool); err != nil {
			RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "unhealthy",
				"database": err.Error(),
			})
			return
		}
		RespondJSON(w, http.StatusOK, map[string]string{
			"status":   "healthy",
			"database": "ok",
		})
	}
}
