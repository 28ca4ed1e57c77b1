package memstore

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"bizdir/internal/domain"
	"bizdir/internal/repos"
)

type businessRepo struct{ s *Store }

func (r businessRepo) FindByID(_ context.Context, id string) (*domain.Business, error) {
	defer r.s.lock()()
	b, ok := r.s.db.st.businesses[id]
	if !ok {
		return nil, repos.NotFound("business")
	}
	b = cloneBusiness(b)
	return &b, nil
}

func (r businessRepo) FindBySlug(_ context.Context, slug string) (*domain.Business, error) {
	defer r.s.lock()()
	b, ok := lo.Find(lo.Values(r.s.db.st.businesses), func(b domain.Business) bool { return b.Slug == slug })
	if !ok {
		return nil, repos.NotFound("business")
	}
	b = cloneBusiness(b)
	return &b, nil
}

func (r businessRepo) FindByOwner(ctx context.Context, ownerID string) ([]domain.Business, error) {
	return r.List(ctx, repos.BusinessFilter{OwnerID: ownerID})
}

func (r businessRepo) List(_ context.Context, f repos.BusinessFilter) ([]domain.Business, error) {
	defer r.s.lock()()
	q := strings.ToLower(f.Query)
	rows := lo.FilterMap(lo.Values(r.s.db.st.businesses), func(b domain.Business, _ int) (domain.Business, bool) {
		switch {
		case f.Status != "" && b.Status != f.Status:
		case f.CategoryID != "" && b.CategoryID != f.CategoryID:
		case f.OwnerID != "" && b.OwnerID != f.OwnerID:
		case f.City != "" && !strings.EqualFold(b.City, f.City):
		case q != "" && !strings.Contains(strings.ToLower(b.Name), q) &&
			!strings.Contains(strings.ToLower(b.Description), q) &&
			!strings.Contains(strings.ToLower(b.City), q):
		default:
			return cloneBusiness(b), true
		}
		return domain.Business{}, false
	})
	rows = newestFirst(rows,
		func(b domain.Business) string { return b.CreatedAt },
		func(b domain.Business) string { return b.ID })
	if f.Limit > 0 {
		rows = lo.Subset(rows, max(f.Offset, 0), uint(f.Limit))
	}
	return rows, nil
}

func (r businessRepo) CountByStatus(_ context.Context) (map[domain.Status]int, error) {
	defer r.s.lock()()
	out := lo.SliceToMap(domain.Statuses, func(s domain.Status) (domain.Status, int) { return s, 0 })
	for _, b := range r.s.db.st.businesses {
		out[b.Status]++
	}
	return out, nil
}

func (r businessRepo) slugTaken(slug, exceptID string) bool {
	_, taken := lo.Find(lo.Values(r.s.db.st.businesses), func(b domain.Business) bool {
		return b.Slug == slug && b.ID != exceptID
	})
	return taken
}

func (r businessRepo) Create(_ context.Context, b *domain.Business) error {
	defer r.s.lock()()
	if r.slugTaken(b.Slug, "") {
		return repos.DuplicateSlug(b.Slug)
	}
	b.ID = newID(b.ID)
	b.CreatedAt = now()
	b.UpdatedAt = b.CreatedAt
	r.s.db.st.businesses[b.ID] = cloneBusiness(*b)
	return nil
}

func (r businessRepo) Update(_ context.Context, b *domain.Business) error {
	defer r.s.lock()()
	cur, ok := r.s.db.st.businesses[b.ID]
	if !ok {
		return repos.NotFound("business")
	}
	if r.slugTaken(b.Slug, b.ID) {
		return repos.DuplicateSlug(b.Slug)
	}
	b.CreatedAt = cur.CreatedAt
	b.UpdatedAt = now()
	r.s.db.st.businesses[b.ID] = cloneBusiness(*b)
	return nil
}

// Delete removes the listing and its products.
func (r businessRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock()()
	if _, ok := r.s.db.st.businesses[id]; !ok {
		return repos.NotFound("business")
	}
	delete(r.s.db.st.businesses, id)
	for pid, p := range r.s.db.st.products {
		if p.BusinessID == id {
			delete(r.s.db.st.products, pid)
		}
	}
	return nil
}
