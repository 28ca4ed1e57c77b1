package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"bizdir/internal/auth"
	"bizdir/internal/cache"
	"bizdir/internal/domain"
	"bizdir/internal/events"
	"bizdir/internal/repos/memstore"
	"bizdir/internal/services"
)

const testCategory = "cat-1"

type env struct {
	store    *memstore.Store
	cache    cache.Cache
	events   *events.Recorder
	gate     *services.AccessGate
	listings *services.ListingService
	catalog  *services.CatalogService
	products *services.ProductService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memstore.New()
	err := store.Categories().Create(context.Background(), &domain.Category{
		ID: testCategory, Name: "Coffee", Slug: "coffee", Active: true,
	})
	require.NoError(t, err)
	require.NoError(t, store.Categories().Create(context.Background(), &domain.Category{
		ID: "cat-2", Name: "Bakeries", Slug: "bakeries", Active: true,
	}))

	c := cache.NewInMemoryCache(0)
	rec := &events.Recorder{}
	gate := services.NewAccessGate(store)
	return &env{
		store:    store,
		cache:    c,
		events:   rec,
		gate:     gate,
		listings: services.NewListingService(store, gate, c, rec),
		catalog:  services.NewCatalogService(store, c, 0),
		products: services.NewProductService(store, gate),
	}
}

// as creates a user with role and returns a context signed in as them.
func (e *env) as(t *testing.T, email string, role domain.Role) (context.Context, *domain.User) {
	t.Helper()
	u := &domain.User{Email: email, Name: email, Hash: "x", Role: role}
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	return auth.WithIdentity(context.Background(), auth.Identity{ID: u.ID, Email: u.Email}), u
}

func joesCoffee() services.CreateBusinessInput {
	return services.CreateBusinessInput{
		Name:        "Joe's Coffee",
		Slug:        "joes-coffee",
		Description: "Small batch roasts.",
		CategoryID:  testCategory,
		WhatsApp:    "+15551234567",
	}
}
