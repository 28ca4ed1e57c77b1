// Package memstore is an in-process repos.Store. It backs DB_DRIVER=memory and the service tests.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"bizdir/internal/domain"
	"bizdir/internal/repos"
)

type session struct {
	userID   string
	lastSeen time.Time
}

type state struct {
	businesses map[string]domain.Business
	users      map[string]domain.User
	categories map[string]domain.Category
	products   map[string]domain.Product
	sessions   map[string]session
}

func newState() state {
	return state{
		businesses: map[string]domain.Business{},
		users:      map[string]domain.User{},
		categories: map[string]domain.Category{},
		products:   map[string]domain.Product{},
		sessions:   map[string]session{},
	}
}

// clone copies every table. Rows are values but businesses carry reference fields.
func (s state) clone() state {
	out := state{
		businesses: make(map[string]domain.Business, len(s.businesses)),
		users:      maps.Clone(s.users),
		categories: maps.Clone(s.categories),
		products:   maps.Clone(s.products),
		sessions:   maps.Clone(s.sessions),
	}
	for k, b := range s.businesses {
		out.businesses[k] = cloneBusiness(b)
	}
	return out
}

func cloneBusiness(b domain.Business) domain.Business {
	b.SocialLinks = maps.Clone(b.SocialLinks)
	b.MediaGallery = slices.Clone(b.MediaGallery)
	b.GeoLat = cloneFloat(b.GeoLat)
	b.GeoLng = cloneFloat(b.GeoLng)
	b.Rating = cloneFloat(b.Rating)
	return b
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

type db struct {
	mu sync.Mutex
	st state
}

// Store is safe for concurrent use. Every InTx holds the whole store; a failing callback
// restores the snapshot taken when it started.
type Store struct {
	db   *db
	inTx bool
}

var _ repos.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{db: &db{st: newState()}}
}

// NewSeeded returns a store holding the default categories.
func NewSeeded() *Store {
	s := New()
	now := repos.Timestamp(repos.Now())
	for _, c := range repos.DefaultCategories() {
		c.CreatedAt, c.UpdatedAt = now, now
		s.db.st.categories[c.ID] = c
	}
	return s
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.db.mu.Lock()
	return s.db.mu.Unlock
}

func (s *Store) InTx(ctx context.Context, fn func(tx repos.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	snapshot := s.db.st.clone()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(&Store{db: s.db, inTx: true}); err != nil {
		s.db.st = snapshot
		return err
	}
	return nil
}

func (s *Store) Close() error { return nil }

func (s *Store) Businesses() repos.BusinessRepository { return businessRepo{s} }
func (s *Store) Users() repos.UserRepository          { return userRepo{s} }
func (s *Store) Categories() repos.CategoryRepository { return categoryRepo{s} }
func (s *Store) Products() repos.ProductRepository    { return productRepo{s} }

func now() string { return repos.Timestamp(repos.Now()) }

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// newestFirst orders rows the way the sql store does.
func newestFirst[T any](rows []T, created func(T) string, id func(T) string) []T {
	slices.SortStableFunc(rows, func(a, b T) int {
		if ca, cb := created(a), created(b); ca != cb {
			if ca > cb {
				return -1
			}
			return 1
		}
		if id(a) < id(b) {
			return -1
		}
		if id(a) > id(b) {
			return 1
		}
		return 0
	})
	return rows
}
