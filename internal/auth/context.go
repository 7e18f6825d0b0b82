package auth

import "context"

type identityKey struct{}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID   string
	Role     Role
	FullName string
}

// WithIdentity stores the caller's identity in context.
func WithIdentity(ctx context.Context, userID string, role Role, fullName string) context.Context {
	return context.WithValue(ctx, identityKey{}, Identity{
		UserID:   userID,
		Role:     role,
		FullName: fullName,
	})
}

// IdentityFromContext returns the stored identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// UserIDFromContext extracts the authenticated user id from context.
func UserIDFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.UserID
}

// RoleFromContext extracts the caller's role from context.
func RoleFromContext(ctx context.Context) Role {
	id, _ := IdentityFromContext(ctx)
	return id.Role
}

// FullNameFromContext extracts the caller's display name from context.
func FullNameFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.FullName
}
