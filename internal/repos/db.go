package repos

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
)

// SQLStore is the sqlx-backed Store for sqlite and postgres.
type SQLStore struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

var _ Store = (*SQLStore)(nil)

// OpenDB opens driver ("sqlite" or "postgres"), applies the schema and seeds categories.
func OpenDB(driver, dsn string) (*SQLStore, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one connection: keeps :memory: databases alive and serializes writers
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	s := NewSQLStore(db)
	if err := seedCategories(context.Background(), s); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return s, nil
}

func NewSQLStore(db *sqlx.DB) *SQLStore { return &SQLStore{db: db, ext: db} }

// DB exposes the handle for health checks and tests.
func (s *SQLStore) DB() *sqlx.DB { return s.db }

func (s *SQLStore) Businesses() BusinessRepository { return NewBusinessRepo(s.ext) }
func (s *SQLStore) Users() UserRepository          { return NewUserRepo(s.ext) }
func (s *SQLStore) Categories() CategoryRepository { return NewCategoryRepo(s.ext) }
func (s *SQLStore) Products() ProductRepository    { return NewProductRepo(s.ext) }

func (s *SQLStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if _, nested := s.ext.(*sqlx.Tx); nested {
		return fn(s)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return ierr.Internal(err, "begin tx")
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(&SQLStore{db: s.db, ext: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return ierr.Internal(err, "commit tx")
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func ensureSchema(db *sqlx.DB) error {
	if db.DriverName() == "sqlite" {
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			return err
		}
	}
	schema := `
-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  icon TEXT NOT NULL DEFAULT '',
  active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL CHECK (role IN ('USER','BUSINESS_OWNER','ADMIN','SUPER_ADMIN')),
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT NOT NULL,
  last_seen TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_last_seen ON sessions(last_seen);

-- Businesses
CREATE TABLE IF NOT EXISTS businesses(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  whatsapp TEXT NOT NULL CHECK (whatsapp <> ''),
  phone TEXT NOT NULL DEFAULT '',
  website_url TEXT NOT NULL DEFAULT '',
  social_links TEXT NOT NULL DEFAULT '{}',
  address TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  geo_lat DOUBLE PRECISION NULL CHECK (geo_lat BETWEEN -90 AND 90),
  geo_lng DOUBLE PRECISION NULL CHECK (geo_lng BETWEEN -180 AND 180),
  logo_url TEXT NOT NULL DEFAULT '',
  media_gallery TEXT NOT NULL DEFAULT '[]',
  rating DOUBLE PRECISION NULL CHECK (rating BETWEEN 0 AND 5),
  status TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING','APPROVED','REJECTED')),
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_businesses_owner    ON businesses(owner_id);
CREATE INDEX IF NOT EXISTS idx_businesses_category ON businesses(category_id);
CREATE INDEX IF NOT EXISTS idx_businesses_status   ON businesses(status);
CREATE INDEX IF NOT EXISTS idx_businesses_city     ON businesses(LOWER(city));

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL REFERENCES businesses(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  image_url TEXT NOT NULL DEFAULT '',
  active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_business ON products(business_id);
`
	_, err := db.Exec(schema)
	return err
}

var defaultCategories = []domain.Category{
	{Name: "Beauty & Personal Care", Slug: "beauty-personal-care", Icon: "💄", Description: "Beauty salons, skincare, cosmetics, and personal care services."},
	{Name: "Fashion & Modest Wear", Slug: "fashion-modest-wear", Icon: "👗", Description: "Clothing stores, modest fashion, accessories, and fashion boutiques."},
	{Name: "Food & Home-Based Catering", Slug: "food-home-based-catering", Icon: "🍲", Description: "Home-based food businesses, catering services, and homemade food."},
	{Name: "Wellness & Fitness", Slug: "wellness-fitness", Icon: "🧘", Description: "Fitness centers, yoga studios, wellness programs, and health coaching."},
	{Name: "Handmade & Creative Businesses", Slug: "handmade-creative-businesses", Icon: "🎨", Description: "Handcrafted items, artisanal products, and creative handmade businesses."},
	{Name: "Digital & Online Services", Slug: "digital-online-services", Icon: "💻", Description: "Web design, digital marketing, online consulting, and tech services."},
	{Name: "Kids & Parenting", Slug: "kids-parenting", Icon: "👶", Description: "Children's products, parenting services, kids activities, and family services."},
	{Name: "Event & Lifestyle Services", Slug: "event-lifestyle-services", Icon: "🎉", Description: "Event planning, party services, lifestyle consulting, and celebration services."},
	{Name: "Education & Coaching", Slug: "education-coaching", Icon: "📚", Description: "Tutoring, educational services, skill development, and learning programs."},
	{Name: "Health-Focused Small Businesses", Slug: "health-focused-small-businesses", Icon: "🌿", Description: "Health products, natural remedies, health consulting, and wellness products."},
	{Name: "Photography & Creative Media", Slug: "photography-creative-media", Icon: "📸", Description: "Photography services, videography, content creation, and media services."},
	{Name: "Home & Lifestyle", Slug: "home-lifestyle", Icon: "🏡", Description: "Home decor, interior design, lifestyle products, and home services."},
}

// DefaultCategories returns the seeded directory categories. The id of each is its slug.
func DefaultCategories() []domain.Category {
	out := make([]domain.Category, len(defaultCategories))
	for i, c := range defaultCategories {
		c.ID = c.Slug
		c.Active = true
		out[i] = c
	}
	return out
}

// seedCategories inserts the default categories that are missing. Safe on every start.
func seedCategories(ctx context.Context, s Store) error {
	return s.InTx(ctx, func(tx Store) error {
		for _, c := range DefaultCategories() {
			if _, err := tx.Categories().FindBySlug(ctx, c.Slug); err == nil {
				continue
			} else if !ierr.IsNotFound(err) {
				return err
			}
			if err := tx.Categories().Create(ctx, &c); err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedSuperAdmin makes sure the configured super admin exists. An existing account keeps
// its password but is promoted to SUPER_ADMIN.
func SeedSuperAdmin(ctx context.Context, s Store, email, password string) error {
	if email == "" {
		return nil
	}
	return s.InTx(ctx, func(tx Store) error {
		u, err := tx.Users().FindByEmail(ctx, email)
		switch {
		case err == nil:
			if u.Role == domain.RoleSuperAdmin {
				return nil
			}
			slog.Info("seed: promoting super admin", "email", email)
			return tx.Users().UpdateRole(ctx, u.ID, domain.RoleSuperAdmin)
		case !ierr.IsNotFound(err):
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return ierr.Internal(err, "hash admin password")
		}
		slog.Info("seed: creating super admin", "email", email)
		return tx.Users().Create(ctx, &domain.User{
			Email: email,
			Name:  "Super Admin",
			Hash:  string(hash),
			Role:  domain.RoleSuperAdmin,
		})
	})
}
