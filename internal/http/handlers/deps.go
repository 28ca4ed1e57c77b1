package handlers

import (
	"bizdir/internal/auth"
	"bizdir/internal/cache"
	"bizdir/internal/config"
	"bizdir/internal/events"
	"bizdir/internal/repos"
	"bizdir/internal/services"
	"bizdir/internal/storage"
)

// Deps is every service and handler the app serves, built once in main.
type Deps struct {
	Gate     *services.AccessGate
	Auth     *services.AuthService
	Listings *services.ListingService
	Catalog  *services.CatalogService
	Products *services.ProductService
	Media    *services.MediaService

	AuthHandler     *AuthHandler
	BusinessHandler *BusinessHandler
	AdminHandler    *AdminHandler
	CatalogHandler  *CatalogHandler
	ProductHandler  *ProductHandler
	UploadHandler   *UploadHandler
}

func NewDeps(store repos.Store, cfg config.Config, c cache.Cache, st storage.Storage, pub events.Publisher) *Deps {
	gate := services.NewAccessGate(store)
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	authSvc := services.NewAuthService(store, gate, tokens)
	listings := services.NewListingService(store, gate, c, pub)
	catalog := services.NewCatalogService(store, c, cfg.Cache.TTL)
	products := services.NewProductService(store, gate)
	media := services.NewMediaService(store, gate, st)

	return &Deps{
		Gate:     gate,
		Auth:     authSvc,
		Listings: listings,
		Catalog:  catalog,
		Products: products,
		Media:    media,

		AuthHandler:     &AuthHandler{Auth: authSvc, SecureCookie: cfg.IsProduction()},
		BusinessHandler: &BusinessHandler{Listings: listings},
		AdminHandler:    &AdminHandler{Listings: listings},
		CatalogHandler:  &CatalogHandler{Catalog: catalog},
		ProductHandler:  &ProductHandler{Products: products},
		UploadHandler:   &UploadHandler{Media: media},
	}
}
