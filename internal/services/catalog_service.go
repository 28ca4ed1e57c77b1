package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bizdir/internal/cache"
	"bizdir/internal/domain"
	"bizdir/internal/repos"
)

// ListingQuery filters the public directory. Only approved listings are ever returned.
type ListingQuery struct {
	CategorySlug string
	City         string
	Q            string
	Page         int
	PageSize     int
}

// CatalogService serves what anonymous visitors can see. Reads are cached; ListingService
// invalidates on every write.
type CatalogService struct {
	store repos.Store
	cache cache.Cache
	ttl   time.Duration
}

func NewCatalogService(store repos.Store, c cache.Cache, ttl time.Duration) *CatalogService {
	if c == nil {
		c = cache.NewInMemoryCache(ttl)
	}
	return &CatalogService{store: store, cache: c, ttl: ttl}
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	key := cache.PrefixCategories + "active"
	if cats, ok := cache.GetJSON[[]domain.Category](ctx, s.cache, key); ok {
		return cats, nil
	}
	cats, err := s.store.Categories().List(ctx, true)
	if err != nil {
		return nil, err
	}
	cache.SetJSON(ctx, s.cache, key, cats, s.ttl)
	return cats, nil
}

// CategoryBySlug hides inactive categories.
func (s *CatalogService) CategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	c, err := s.store.Categories().FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, repos.NotFound("category")
	}
	return c, nil
}

func (s *CatalogService) Listings(ctx context.Context, q ListingQuery) ([]domain.Business, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 12
	}
	f := repos.BusinessFilter{
		Status: domain.StatusApproved,
		City:   strings.TrimSpace(q.City),
		Query:  strings.TrimSpace(q.Q),
		Limit:  q.PageSize,
		Offset: (q.Page - 1) * q.PageSize,
	}
	if q.CategorySlug != "" {
		c, err := s.CategoryBySlug(ctx, q.CategorySlug)
		if err != nil {
			return nil, err
		}
		f.CategoryID = c.ID
	}

	key := fmt.Sprintf("%s%s|%s|%s|%d|%d", cache.PrefixListings, f.CategoryID, strings.ToLower(f.City), strings.ToLower(f.Query), q.Page, q.PageSize)
	if out, ok := cache.GetJSON[[]domain.Business](ctx, s.cache, key); ok {
		return out, nil
	}
	out, err := s.store.Businesses().List(ctx, f)
	if err != nil {
		return nil, err
	}
	cache.SetJSON(ctx, s.cache, key, out, s.ttl)
	return out, nil
}

// ListingBySlug returns an approved listing. Pending and rejected ones do not exist publicly.
func (s *CatalogService) ListingBySlug(ctx context.Context, slug string) (*domain.Business, error) {
	key := cache.PrefixListing + slug
	if b, ok := cache.GetJSON[domain.Business](ctx, s.cache, key); ok {
		return &b, nil
	}
	b, err := s.store.Businesses().FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.StatusApproved {
		return nil, repos.NotFound("business")
	}
	cache.SetJSON(ctx, s.cache, key, b, s.ttl)
	return b, nil
}

// Products lists the active products of an approved listing.
func (s *CatalogService) Products(ctx context.Context, businessID string) ([]domain.Product, error) {
	b, err := s.store.Businesses().FindByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.StatusApproved {
		return nil, repos.NotFound("business")
	}
	return s.store.Products().ListByBusiness(ctx, businessID, true)
}
