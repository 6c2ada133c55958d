package authz

import (
	"context"
	"errors"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// AuthUser is the authenticated account attached to the request context.
// Staff accounts belong to a club owner and act on the owner's data.
type AuthUser struct {
	ID          int64
	Name        string
	Email       string
	Role        string
	ClubOwnerID *int64
}

// EffectiveOwnerID resolves whose data this account operates on: a staff
// account resolves to its club owner, everyone else to themselves. All
// scoping queries use this id, never the raw account id.
func (u *AuthUser) EffectiveOwnerID() int64 {
	if u.Role == "staff" && u.ClubOwnerID != nil {
		return *u.ClubOwnerID
	}
	return u.ID
}

// IsClubOwner reports whether the user owns a club directly rather than
// acting as staff for one.
func IsClubOwner(user *AuthUser) bool {
	return user != nil && user.Role == "owner"
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

// RequireOwnerAccess checks that the context user may operate on the given
// owner's data.
func RequireOwnerAccess(ctx context.Context, requestedOwnerID int64) error {
	user := UserFromContext(ctx)
	if user == nil {
		return ErrUnauthenticated
	}

	if user.EffectiveOwnerID() != requestedOwnerID {
		return ErrForbidden
	}

	return nil
}

// EffectiveOwnerFromContext returns the owner scope for the context user,
// or ErrUnauthenticated when no user is attached.
func EffectiveOwnerFromContext(ctx context.Context) (int64, error) {
	user := UserFromContext(ctx)
	if user == nil {
		return 0, ErrUnauthenticated
	}
	return user.EffectiveOwnerID(), nil
}
