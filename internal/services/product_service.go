package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
	applog "bizdir/internal/log"
	"bizdir/internal/repos"
	"bizdir/internal/validate"
)

type CreateProductInput struct {
	BusinessID  string `json:"businessId" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Price       string `json:"price" validate:"required"`
	ImageURL    string `json:"imageUrl"`
}

// ProductService manages the products shown on a listing. Only the listing's owner may
// change them.
type ProductService struct {
	store repos.Store
	gate  *AccessGate
}

func NewProductService(store repos.Store, gate *AccessGate) *ProductService {
	return &ProductService{store: store, gate: gate}
}

func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	u, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	in.BusinessID = strings.TrimSpace(in.BusinessID)
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Price = strings.TrimSpace(in.Price)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(in.Price)
	if err != nil || price.IsNegative() {
		return nil, ierr.NewError("invalid price " + in.Price).
			WithHint("Price must be a non-negative number.").
			Mark(ierr.ErrInvalidInput)
	}

	p := &domain.Product{
		BusinessID:  in.BusinessID,
		Name:        in.Name,
		Description: in.Description,
		Price:       price.Round(2),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Active:      true,
	}
	err = s.store.InTx(ctx, func(tx repos.Store) error {
		if err := s.ownedBusiness(ctx, tx, u, in.BusinessID); err != nil {
			return err
		}
		return tx.Products().Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	applog.FromContext(ctx).Info("product.created", "product_id", p.ID, "business_id", p.BusinessID, "owner_id", u.ID)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	u, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return err
	}
	err = s.store.InTx(ctx, func(tx repos.Store) error {
		p, err := tx.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.ownedBusiness(ctx, tx, u, p.BusinessID); err != nil {
			return err
		}
		return tx.Products().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	applog.FromContext(ctx).Info("product.deleted", "product_id", id, "owner_id", u.ID)
	return nil
}

// ListByBusiness returns all products, active or not, of one of the caller's listings.
func (s *ProductService) ListByBusiness(ctx context.Context, businessID string) ([]domain.Product, error) {
	u, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ownedBusiness(ctx, s.store, u, businessID); err != nil {
		return nil, err
	}
	return s.store.Products().ListByBusiness(ctx, businessID, false)
}

func (s *ProductService) ownedBusiness(ctx context.Context, tx repos.Store, u *domain.User, businessID string) error {
	b, err := tx.Businesses().FindByID(ctx, businessID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return errNotFoundOrDenied()
		}
		return err
	}
	return s.gate.RequireOwner(u, b)
}
