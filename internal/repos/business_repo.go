package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
)

type BusinessRepo struct{ db sqlx.ExtContext }

func NewBusinessRepo(db sqlx.ExtContext) *BusinessRepo { return &BusinessRepo{db: db} }

const businessCols = `id, name, slug, description, category_id, owner_id, whatsapp, phone, website_url,
  social_links, address, city, geo_lat, geo_lng, logo_url, media_gallery, rating, status, created_at, updated_at`

func (r *BusinessRepo) get(ctx context.Context, where string, arg any) (*domain.Business, error) {
	var b domain.Business
	q := r.db.Rebind(`SELECT ` + businessCols + ` FROM businesses WHERE ` + where)
	if err := sqlx.GetContext(ctx, r.db, &b, q, arg); err != nil {
		return nil, translate(err, "business", "")
	}
	return &b, nil
}

func (r *BusinessRepo) FindByID(ctx context.Context, id string) (*domain.Business, error) {
	return r.get(ctx, `id = ?`, id)
}

func (r *BusinessRepo) FindBySlug(ctx context.Context, slug string) (*domain.Business, error) {
	return r.get(ctx, `slug = ?`, slug)
}

// FindByOwner returns the owner's listings, newest first.
func (r *BusinessRepo) FindByOwner(ctx context.Context, ownerID string) ([]domain.Business, error) {
	return r.List(ctx, BusinessFilter{OwnerID: ownerID})
}

func (r *BusinessRepo) List(ctx context.Context, f BusinessFilter) ([]domain.Business, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where, args = append(where, `status = ?`), append(args, string(f.Status))
	}
	if f.CategoryID != "" {
		where, args = append(where, `category_id = ?`), append(args, f.CategoryID)
	}
	if f.OwnerID != "" {
		where, args = append(where, `owner_id = ?`), append(args, f.OwnerID)
	}
	if f.City != "" {
		where, args = append(where, `LOWER(city) = LOWER(?)`), append(args, f.City)
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		where = append(where, `(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(city) LIKE ?)`)
		args = append(args, like, like, like)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + businessCols + ` FROM businesses`)
	if len(where) > 0 {
		sb.WriteString(` WHERE ` + strings.Join(where, ` AND `))
	}
	sb.WriteString(` ORDER BY created_at DESC, id`)
	if f.Limit > 0 {
		sb.WriteString(` LIMIT ? OFFSET ?`)
		args = append(args, f.Limit, max(f.Offset, 0))
	}

	out := []domain.Business{}
	if err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(sb.String()), args...); err != nil {
		return nil, ierr.Internal(err, "list businesses")
	}
	return out, nil
}

func (r *BusinessRepo) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	var rows []struct {
		Status domain.Status `db:"status"`
		N      int           `db:"n"`
	}
	if err := sqlx.SelectContext(ctx, r.db, &rows, `SELECT status, COUNT(*) AS n FROM businesses GROUP BY status`); err != nil {
		return nil, ierr.Internal(err, "count businesses")
	}
	out := make(map[domain.Status]int, len(domain.Statuses))
	for _, s := range domain.Statuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

// Create assigns an id when missing and stamps both timestamps.
func (r *BusinessRepo) Create(ctx context.Context, b *domain.Business) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = Timestamp(Now())
	b.UpdatedAt = b.CreatedAt
	q := r.db.Rebind(`INSERT INTO businesses(` + businessCols + `)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.Name, b.Slug, b.Description, b.CategoryID, b.OwnerID, b.WhatsApp, b.Phone, b.WebsiteURL,
		b.SocialLinks, b.Address, b.City, b.GeoLat, b.GeoLng, b.LogoURL, b.MediaGallery, b.Rating,
		string(b.Status), b.CreatedAt, b.UpdatedAt)
	return translate(err, "business", b.Slug)
}

// Update writes every mutable column and stamps updated_at.
func (r *BusinessRepo) Update(ctx context.Context, b *domain.Business) error {
	b.UpdatedAt = Timestamp(Now())
	q := r.db.Rebind(`UPDATE businesses SET
	  name=?, slug=?, description=?, category_id=?, whatsapp=?, phone=?, website_url=?, social_links=?,
	  address=?, city=?, geo_lat=?, geo_lng=?, logo_url=?, media_gallery=?, rating=?, status=?, updated_at=?
	  WHERE id=?`)
	res, err := r.db.ExecContext(ctx, q,
		b.Name, b.Slug, b.Description, b.CategoryID, b.WhatsApp, b.Phone, b.WebsiteURL, b.SocialLinks,
		b.Address, b.City, b.GeoLat, b.GeoLng, b.LogoURL, b.MediaGallery, b.Rating, string(b.Status), b.UpdatedAt,
		b.ID)
	if err != nil {
		return translate(err, "business", b.Slug)
	}
	return mustAffect(res, "business")
}

// Delete removes the listing; its products go with it.
func (r *BusinessRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE business_id=?`), id); err != nil {
		return ierr.Internal(err, "delete business products")
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM businesses WHERE id=?`), id)
	if err != nil {
		return ierr.Internal(err, "delete business")
	}
	return mustAffect(res, "business")
}
