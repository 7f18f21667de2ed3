package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/herohabits/platform/internal/domain"
)

type contextKey string

const (
	claimsKey contextKey = "auth_claims"
	actorKey  contextKey = "auth_actor"
)

// ClaimsFromContext extracts JWT claims from request context.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// ActorFromContext extracts the authenticated principal from request
// context. The zero Actor is returned for unauthenticated requests.
func ActorFromContext(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(actorKey).(domain.Actor)
	return actor
}

// AuthenticateParent returns middleware that validates parent JWT tokens.
func AuthenticateParent(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return authenticateRealm(jwtMgr, RealmParent, domain.RoleParent)
}

// AuthenticateChild returns middleware that validates child JWT tokens.
func AuthenticateChild(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return authenticateRealm(jwtMgr, RealmChild, domain.RoleChild)
}

func authenticateRealm(jwtMgr *JWTManager, realm Realm, role domain.ActorRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractAndValidate(r, jwtMgr, realm)
			if err != nil {
				http.Error(w, `{"code":"UNAUTHORIZED","message":"`+err.Error()+`"}`, http.StatusUnauthorized)
				return
			}

			subjectID, err := uuid.Parse(claims.Subject)
			if err != nil {
				http.Error(w, `{"code":"UNAUTHORIZED","message":"invalid subject"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = context.WithValue(ctx, actorKey, domain.Actor{ID: subjectID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractAndValidate(r *http.Request, jwtMgr *JWTManager, realm Realm) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, fmt.Errorf("missing authorization header")
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, fmt.Errorf("malformed authorization header")
	}
	return jwtMgr.ValidateTokenForRealm(token, realm)
}
