package repos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
)

type ProductRepo struct{ db sqlx.ExtContext }

func NewProductRepo(db sqlx.ExtContext) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, business_id, name, description, price, image_url, active, created_at, updated_at`

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	q := r.db.Rebind(`SELECT ` + productCols + ` FROM products WHERE id=?`)
	if err := sqlx.GetContext(ctx, r.db, &p, q, id); err != nil {
		return nil, translate(err, "product", "")
	}
	return &p, nil
}

func (r *ProductRepo) ListByBusiness(ctx context.Context, businessID string, activeOnly bool) ([]domain.Product, error) {
	q := `SELECT ` + productCols + ` FROM products WHERE business_id=?`
	args := []any{businessID}
	if activeOnly {
		q += ` AND active = ?`
		args = append(args, true)
	}
	q += ` ORDER BY created_at DESC, id`
	out := []domain.Product{}
	if err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(q), args...); err != nil {
		return nil, ierr.Internal(err, "list products")
	}
	return out, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = Timestamp(Now())
	p.UpdatedAt = p.CreatedAt
	q := r.db.Rebind(`INSERT INTO products(` + productCols + `) VALUES(?,?,?,?,?,?,?,?,?)`)
	_, err := r.db.ExecContext(ctx, q, p.ID, p.BusinessID, p.Name, p.Description, p.Price.String(), p.ImageURL, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return ierr.Internal(err, "create product")
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id=?`), id)
	if err != nil {
		return ierr.Internal(err, "delete product")
	}
	return mustAffect(res, "product")
}
