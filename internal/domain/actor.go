package domain

import "github.com/google/uuid"

// ActorRole identifies which kind of principal is acting.
type ActorRole string

const (
	RoleParent ActorRole = "parent"
	RoleChild  ActorRole = "child"
)

// Actor is the authenticated principal a workflow call acts on behalf of.
// For parents the ID is the parent account ID; for children it is the
// character ID. Workflows receive the actor explicitly and never read
// ambient session state.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role ActorRole `json:"role"`
}

// IsParent reports whether the actor is a parent account.
func (a Actor) IsParent() bool { return a.Role == RoleParent }
