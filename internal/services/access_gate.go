package services

import (
	"context"

	"bizdir/internal/auth"
	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
	applog "bizdir/internal/log"
	"bizdir/internal/repos"
)

// AccessGate resolves the caller's user record from the request identity and authorizes
// operations against it. Roles are compared exactly: there is no hierarchy, so a
// SUPER_ADMIN gate rejects an ADMIN.
type AccessGate struct {
	store repos.Store
}

func NewAccessGate(store repos.Store) *AccessGate { return &AccessGate{store: store} }

// ResolveCurrentIdentity returns the caller's user record, or nil when nobody is signed in or
// the lookup fails. It never returns an error.
func (g *AccessGate) ResolveCurrentIdentity(ctx context.Context) *domain.User {
	id, ok := auth.FromContext(ctx)
	if !ok {
		return nil
	}
	u, err := g.store.Users().FindByEmail(ctx, id.Email)
	if err != nil {
		if !ierr.IsNotFound(err) {
			applog.FromContext(ctx).Error("resolve identity failed", "email", id.Email, "err", err)
		}
		return nil
	}
	return u
}

func (g *AccessGate) RequireAuthenticated(ctx context.Context) (*domain.User, error) {
	u := g.ResolveCurrentIdentity(ctx)
	if u == nil {
		return nil, ierr.NewError("no resolvable identity").
			WithHint("Please sign in to continue.").
			Mark(ierr.ErrUnauthenticated)
	}
	return u, nil
}

// RequireRole passes only callers whose role equals role.
func (g *AccessGate) RequireRole(ctx context.Context, role domain.Role) (*domain.User, error) {
	u, err := g.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if u.Role != role {
		return nil, ierr.NewError("role " + string(u.Role) + " lacks " + string(role)).
			WithHint("You do not have permission to perform this action.").
			Mark(ierr.ErrForbidden)
	}
	return u, nil
}

// RequireOwner reports a foreign listing exactly like a missing one.
func (g *AccessGate) RequireOwner(u *domain.User, b *domain.Business) error {
	if u == nil || b == nil || b.OwnerID != u.ID {
		return errNotFoundOrDenied()
	}
	return nil
}

func errNotFoundOrDenied() error {
	return ierr.NewError("business not found or access denied").
		WithHint("Business not found or access denied.").
		Mark(ierr.ErrNotFound)
}

// UpgradeOwnRole moves the caller from USER to BUSINESS_OWNER. Any other target user or role
// is refused, as is any caller already above BUSINESS_OWNER since roles never go down.
// A BUSINESS_OWNER asking again succeeds without change.
func (g *AccessGate) UpgradeOwnRole(ctx context.Context, targetUserID string, role domain.Role) (*domain.User, error) {
	u, err := g.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if targetUserID != u.ID || role != domain.RoleBusinessOwner {
		return nil, errInvalidRoleUpgrade("only your own upgrade to BUSINESS_OWNER is allowed")
	}
	switch u.Role {
	case domain.RoleBusinessOwner:
		return u, nil
	case domain.RoleUser:
	default:
		return nil, errInvalidRoleUpgrade("role " + string(u.Role) + " cannot be changed")
	}
	if err := g.store.Users().UpdateRole(ctx, u.ID, domain.RoleBusinessOwner); err != nil {
		return nil, err
	}
	u.Role = domain.RoleBusinessOwner
	return u, nil
}

func errInvalidRoleUpgrade(reason string) error {
	return ierr.NewError("invalid role upgrade: " + reason).
		WithHint("Invalid role upgrade.").
		Mark(ierr.ErrInvalidRoleUpgrade)
}
