package services

import (
	"time"

	"subaacare-server/internal/models"
)

// Caller is the identity derived from a verified session token. The role
// always comes from the token, never from the request body.
type Caller struct {
	UserID    string
	Role      models.Role
	TokenID   string
	ExpiresAt time.Time
}

// RequireRole fails with a ForbiddenError unless the caller holds one of the
// allowed roles. An empty allowed set admits nobody.
func RequireRole(caller Caller, allowed ...models.Role) error {
	if caller.UserID == "" {
		return AuthError("authentication required")
	}
	for _, r := range allowed {
		if caller.Role == r {
			return nil
		}
	}
	return ForbiddenError("you do not have permission to perform this action")
}
