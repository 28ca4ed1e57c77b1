package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
	"bizdir/internal/services"
)

func coffeeBeans(businessID string) services.CreateProductInput {
	return services.CreateProductInput{
		BusinessID:  businessID,
		Name:        "House Blend 1kg",
		Description: "Medium roast.",
		Price:       "24.999",
	}
}

func TestProductLifecycle(t *testing.T) {
	e := newEnv(t)
	ownerCtx, _ := e.as(t, "joe@example.com", domain.RoleBusinessOwner)
	otherCtx, _ := e.as(t, "eve@example.com", domain.RoleBusinessOwner)
	adminCtx, _ := e.as(t, "root@example.com", domain.RoleSuperAdmin)

	b, err := e.listings.Create(ownerCtx, joesCoffee())
	require.NoError(t, err)

	p, err := e.products.Create(ownerCtx, coffeeBeans(b.ID))
	require.NoError(t, err)
	assert.Equal(t, "25", p.Price.String(), "prices keep two decimals")
	assert.True(t, p.Active)

	_, err = e.products.Create(otherCtx, coffeeBeans(b.ID))
	assert.True(t, ierr.IsNotFound(err), "foreign listing is hidden")

	// hidden from the public until the listing is approved
	_, err = e.catalog.Products(context.Background(), b.ID)
	assert.True(t, ierr.IsNotFound(err))
	_, err = e.listings.Approve(adminCtx, b.ID)
	require.NoError(t, err)
	public, err := e.catalog.Products(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Len(t, public, 1)

	mine, err := e.products.ListByBusiness(ownerCtx, b.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	_, err = e.products.ListByBusiness(otherCtx, b.ID)
	assert.True(t, ierr.IsNotFound(err))

	assert.True(t, ierr.IsNotFound(e.products.Delete(otherCtx, p.ID)))
	require.NoError(t, e.products.Delete(ownerCtx, p.ID))
	assert.True(t, ierr.IsNotFound(e.products.Delete(ownerCtx, p.ID)))
}

func TestProductValidation(t *testing.T) {
	e := newEnv(t)
	ownerCtx, _ := e.as(t, "joe@example.com", domain.RoleBusinessOwner)
	b, err := e.listings.Create(ownerCtx, joesCoffee())
	require.NoError(t, err)

	in := coffeeBeans(b.ID)
	in.Price = "-1"
	_, err = e.products.Create(ownerCtx, in)
	assert.True(t, ierr.IsInvalidInput(err))

	in.Price = "cheap"
	_, err = e.products.Create(ownerCtx, in)
	assert.True(t, ierr.IsInvalidInput(err))

	in = coffeeBeans(b.ID)
	in.Name = " "
	_, err = e.products.Create(ownerCtx, in)
	assert.True(t, ierr.IsMissingRequiredField(err))

	_, err = e.products.Create(context.Background(), coffeeBeans(b.ID))
	assert.True(t, ierr.IsUnauthenticated(err))
}
