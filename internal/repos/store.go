package repos

import (
	"context"
	"time"

	"bizdir/internal/domain"
)

// BusinessFilter narrows listing queries. Zero values match everything.
type BusinessFilter struct {
	Status     domain.Status
	CategoryID string
	OwnerID    string
	City       string
	Query      string
	Limit      int
	Offset     int
}

type BusinessRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Business, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Business, error)
	FindByOwner(ctx context.Context, ownerID string) ([]domain.Business, error)
	List(ctx context.Context, f BusinessFilter) ([]domain.Business, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int, error)
	Create(ctx context.Context, b *domain.Business) error
	Update(ctx context.Context, b *domain.Business) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	BindSession(ctx context.Context, sid, userID string) error
	SessionUser(ctx context.Context, sid string) (*domain.User, error)
	UnbindSession(ctx context.Context, sid string) error
	// PurgeSessions deletes sessions last seen before cutoff and reports how many went.
	PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

type CategoryRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	Create(ctx context.Context, c *domain.Category) error
}

type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	ListByBusiness(ctx context.Context, businessID string, activeOnly bool) ([]domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
}

// Store is the persistence collaborator. Repositories obtained from the Store passed to an
// InTx callback run inside that transaction; fn returning an error rolls everything back.
type Store interface {
	Businesses() BusinessRepository
	Users() UserRepository
	Categories() CategoryRepository
	Products() ProductRepository
	InTx(ctx context.Context, fn func(tx Store) error) error
	Close() error
}

// Timestamp formats t the way every store persists it. Fixed width so text order is time order.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z")
}

// Now is the clock used to stamp rows.
var Now = func() time.Time { return time.Now() }
