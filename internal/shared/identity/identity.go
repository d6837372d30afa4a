// Package identity carries the authenticated caller through a request.
// The JWT middleware stores it on the request context; controllers read it
// back and hand it to services explicitly.
package identity

import (
	"context"

	"turfbook/internal/shared/apperror"
	"turfbook/internal/users"
)

type Identity struct {
	UserID int64
	Email  string
	Role   users.Role
}

type contextKey struct{}

func (i Identity) IsAdmin() bool { return i.Role == users.RoleAdmin }

// Valid reports whether the identity names a real user with a known role.
func (i Identity) Valid() bool {
	return i.UserID > 0 && users.IsValidRole(string(i.Role))
}

// RequireRole returns Unauthorized unless the identity holds one of roles.
func (i Identity) RequireRole(roles ...users.Role) error {
	if !i.Valid() {
		return apperror.New(apperror.KindUnauthorized, "You must be signed in")
	}
	for _, r := range roles {
		if i.Role == r {
			return nil
		}
	}
	return apperror.New(apperror.KindUnauthorized, "You are not allowed to perform this action")
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
