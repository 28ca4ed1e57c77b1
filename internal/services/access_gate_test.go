package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdir/internal/auth"
	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
)

func TestResolveCurrentIdentity(t *testing.T) {
	e := newEnv(t)
	ctx, u := e.as(t, "joe@example.com", domain.RoleUser)

	assert.Nil(t, e.gate.ResolveCurrentIdentity(context.Background()))

	ghost := auth.WithIdentity(context.Background(), auth.Identity{ID: "x", Email: "ghost@example.com"})
	assert.Nil(t, e.gate.ResolveCurrentIdentity(ghost), "unknown email resolves to nobody")

	got := e.gate.ResolveCurrentIdentity(ctx)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, domain.RoleUser, got.Role)
}

func TestRequireAuthenticated(t *testing.T) {
	e := newEnv(t)
	_, err := e.gate.RequireAuthenticated(context.Background())
	assert.True(t, ierr.IsUnauthenticated(err))
	assert.Equal(t, 401, ierr.HTTPStatus(err))
}

func TestRequireRoleIsExactMatch(t *testing.T) {
	e := newEnv(t)
	cases := []struct {
		role domain.Role
		ok   bool
	}{
		{domain.RoleSuperAdmin, true},
		{domain.RoleAdmin, false},
		{domain.RoleBusinessOwner, false},
		{domain.RoleUser, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			ctx, _ := e.as(t, string(tc.role)+"@example.com", tc.role)
			_, err := e.gate.RequireRole(ctx, domain.RoleSuperAdmin)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, ierr.IsForbidden(err), "got %v", err)
		})
	}

	// a super admin does not satisfy an ADMIN gate either
	ctx, _ := e.as(t, "root@example.com", domain.RoleSuperAdmin)
	_, err := e.gate.RequireRole(ctx, domain.RoleAdmin)
	assert.True(t, ierr.IsForbidden(err))
}

func TestRequireRoleReadsRoleFresh(t *testing.T) {
	e := newEnv(t)
	ctx, u := e.as(t, "joe@example.com", domain.RoleUser)
	_, err := e.gate.RequireRole(ctx, domain.RoleSuperAdmin)
	require.True(t, ierr.IsForbidden(err))

	require.NoError(t, e.store.Users().UpdateRole(context.Background(), u.ID, domain.RoleSuperAdmin))
	_, err = e.gate.RequireRole(ctx, domain.RoleSuperAdmin)
	assert.NoError(t, err)
}

func TestRequireOwner(t *testing.T) {
	e := newEnv(t)
	owner := &domain.User{ID: "u1"}
	b := &domain.Business{ID: "b1", OwnerID: "u1"}

	assert.NoError(t, e.gate.RequireOwner(owner, b))
	err := e.gate.RequireOwner(&domain.User{ID: "u2"}, b)
	assert.True(t, ierr.IsNotFound(err))
	assert.Equal(t, 404, ierr.HTTPStatus(err))
	assert.True(t, ierr.IsNotFound(e.gate.RequireOwner(nil, b)))
}

func TestUpgradeOwnRole(t *testing.T) {
	e := newEnv(t)
	ctx, u := e.as(t, "joe@example.com", domain.RoleUser)
	_, other := e.as(t, "eve@example.com", domain.RoleUser)

	_, err := e.gate.UpgradeOwnRole(ctx, other.ID, domain.RoleBusinessOwner)
	assert.True(t, ierr.IsInvalidRoleUpgrade(err), "someone else's account")

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin, domain.RoleUser, "ROOT"} {
		_, err = e.gate.UpgradeOwnRole(ctx, u.ID, role)
		assert.True(t, ierr.IsInvalidRoleUpgrade(err), role)
	}
	stored, err := e.store.Users().FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, stored.Role, "failed upgrades leave the role alone")

	got, err := e.gate.UpgradeOwnRole(ctx, u.ID, domain.RoleBusinessOwner)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleBusinessOwner, got.Role)

	again, err := e.gate.UpgradeOwnRole(ctx, u.ID, domain.RoleBusinessOwner)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleBusinessOwner, again.Role)

	_, err = e.gate.UpgradeOwnRole(context.Background(), u.ID, domain.RoleBusinessOwner)
	assert.True(t, ierr.IsUnauthenticated(err))
}

func TestUpgradeOwnRoleNeverDowngrades(t *testing.T) {
	e := newEnv(t)
	ctx, u := e.as(t, "root@example.com", domain.RoleSuperAdmin)

	_, err := e.gate.UpgradeOwnRole(ctx, u.ID, domain.RoleBusinessOwner)
	assert.True(t, ierr.IsInvalidRoleUpgrade(err))

	stored, err := e.store.Users().FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, stored.Role)
}
