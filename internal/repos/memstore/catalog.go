package memstore

import (
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"

	"bizdir/internal/domain"
	"bizdir/internal/repos"
)

type categoryRepo struct{ s *Store }

func (r categoryRepo) FindByID(_ context.Context, id string) (*domain.Category, error) {
	defer r.s.lock()()
	c, ok := r.s.db.st.categories[id]
	if !ok {
		return nil, repos.NotFound("category")
	}
	return &c, nil
}

func (r categoryRepo) FindBySlug(_ context.Context, slug string) (*domain.Category, error) {
	defer r.s.lock()()
	c, ok := lo.Find(lo.Values(r.s.db.st.categories), func(c domain.Category) bool { return c.Slug == slug })
	if !ok {
		return nil, repos.NotFound("category")
	}
	return &c, nil
}

func (r categoryRepo) List(_ context.Context, activeOnly bool) ([]domain.Category, error) {
	defer r.s.lock()()
	out := lo.Filter(lo.Values(r.s.db.st.categories), func(c domain.Category, _ int) bool { return c.Active || !activeOnly })
	slices.SortFunc(out, func(a, b domain.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r categoryRepo) Create(_ context.Context, c *domain.Category) error {
	defer r.s.lock()()
	if lo.SomeBy(lo.Values(r.s.db.st.categories), func(x domain.Category) bool { return x.Slug == c.Slug }) {
		return repos.DuplicateSlug(c.Slug)
	}
	c.ID = newID(c.ID)
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	r.s.db.st.categories[c.ID] = *c
	return nil
}

type productRepo struct{ s *Store }

func (r productRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	defer r.s.lock()()
	p, ok := r.s.db.st.products[id]
	if !ok {
		return nil, repos.NotFound("product")
	}
	return &p, nil
}

func (r productRepo) ListByBusiness(_ context.Context, businessID string, activeOnly bool) ([]domain.Product, error) {
	defer r.s.lock()()
	out := lo.Filter(lo.Values(r.s.db.st.products), func(p domain.Product, _ int) bool {
		return p.BusinessID == businessID && (p.Active || !activeOnly)
	})
	return newestFirst(out,
		func(p domain.Product) string { return p.CreatedAt },
		func(p domain.Product) string { return p.ID }), nil
}

func (r productRepo) Create(_ context.Context, p *domain.Product) error {
	defer r.s.lock()()
	if _, ok := r.s.db.st.businesses[p.BusinessID]; !ok {
		return repos.NotFound("business")
	}
	p.ID = newID(p.ID)
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	r.s.db.st.products[p.ID] = *p
	return nil
}

func (r productRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock()()
	if _, ok := r.s.db.st.products[id]; !ok {
		return repos.NotFound("product")
	}
	delete(r.s.db.st.products, id)
	return nil
}
