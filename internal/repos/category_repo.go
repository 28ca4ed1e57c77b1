package repos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
)

type CategoryRepo struct{ db sqlx.ExtContext }

func NewCategoryRepo(db sqlx.ExtContext) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCols = `id, name, slug, description, icon, active, created_at, updated_at`

func (r *CategoryRepo) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	q := r.db.Rebind(`SELECT ` + categoryCols + ` FROM categories WHERE id=?`)
	if err := sqlx.GetContext(ctx, r.db, &c, q, id); err != nil {
		return nil, translate(err, "category", "")
	}
	return &c, nil
}

func (r *CategoryRepo) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var c domain.Category
	q := r.db.Rebind(`SELECT ` + categoryCols + ` FROM categories WHERE slug=?`)
	if err := sqlx.GetContext(ctx, r.db, &c, q, slug); err != nil {
		return nil, translate(err, "category", "")
	}
	return &c, nil
}

// List returns categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	q := `SELECT ` + categoryCols + ` FROM categories`
	var args []any
	if activeOnly {
		q += ` WHERE active = ?`
		args = append(args, true)
	}
	q += ` ORDER BY name`
	out := []domain.Category{}
	if err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(q), args...); err != nil {
		return nil, ierr.Internal(err, "list categories")
	}
	return out, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = Timestamp(Now())
	c.UpdatedAt = c.CreatedAt
	q := r.db.Rebind(`INSERT INTO categories(` + categoryCols + `) VALUES(?,?,?,?,?,?,?,?)`)
	_, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.Slug, c.Description, c.Icon, c.Active, c.CreatedAt, c.UpdatedAt)
	return translate(err, "category", c.Slug)
}
