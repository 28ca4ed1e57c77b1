package services

import (
	"context"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"bizdir/internal/cache"
	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
	"bizdir/internal/events"
	applog "bizdir/internal/log"
	"bizdir/internal/repos"
	"bizdir/internal/validate"
)

// CreateBusinessInput is the payload of a new listing. Status and OwnerID are accepted so
// old clients keep working, but both are ignored: listings always start PENDING and belong
// to the caller.
type CreateBusinessInput struct {
	Name           string             `json:"name" validate:"required"`
	Slug           string             `json:"slug" validate:"required"`
	Description    string             `json:"description" validate:"required"`
	CategoryID     string             `json:"categoryId" validate:"required"`
	WhatsApp       string             `json:"whatsapp" validate:"required"`
	WhatsAppNumber string             `json:"whatsappNumber"`
	Phone          string             `json:"phone"`
	WebsiteURL     string             `json:"websiteUrl"`
	SocialLinks    domain.SocialLinks `json:"socialLinks"`
	Address        string             `json:"address"`
	City           string             `json:"city"`
	GeoLat         domain.FloatField  `json:"geoLat"`
	GeoLng         domain.FloatField  `json:"geoLng"`
	LogoURL        string             `json:"logoUrl"`
	MediaGallery   domain.StringList  `json:"mediaGallery"`
	Rating         domain.FloatField  `json:"rating"`
	Status         string             `json:"status"`
	OwnerID        string             `json:"userId"`
}

func (in *CreateBusinessInput) normalize() {
	for _, p := range []*string{&in.Name, &in.Slug, &in.Description, &in.CategoryID, &in.WhatsApp,
		&in.WhatsAppNumber, &in.Phone, &in.WebsiteURL, &in.Address, &in.City, &in.LogoURL} {
		*p = strings.TrimSpace(*p)
	}
	if in.WhatsApp == "" {
		in.WhatsApp = in.WhatsAppNumber
	}
	if in.Slug != "" {
		in.Slug = slug.Make(in.Slug)
	}
}

// Stats summarizes the moderation queue.
type Stats struct {
	Total    int                   `json:"total"`
	ByStatus map[domain.Status]int `json:"byStatus"`
}

// ListingService owns the listing lifecycle: creation, owner edits, moderation and removal.
type ListingService struct {
	store  repos.Store
	gate   *AccessGate
	cache  cache.Cache
	events events.Publisher
}

func NewListingService(store repos.Store, gate *AccessGate, c cache.Cache, pub events.Publisher) *ListingService {
	if c == nil {
		c = cache.NewInMemoryCache(time.Minute)
	}
	if pub == nil {
		pub = events.NewNoopPublisher()
	}
	return &ListingService{store: store, gate: gate, cache: c, events: pub}
}

// Create registers a listing owned by the caller. It always starts PENDING.
func (s *ListingService) Create(ctx context.Context, in CreateBusinessInput) (*domain.Business, error) {
	u, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	b := &domain.Business{
		Name:         in.Name,
		Slug:         in.Slug,
		Description:  in.Description,
		CategoryID:   in.CategoryID,
		OwnerID:      u.ID,
		WhatsApp:     in.WhatsApp,
		Phone:        in.Phone,
		WebsiteURL:   in.WebsiteURL,
		SocialLinks:  in.SocialLinks,
		Address:      in.Address,
		City:         in.City,
		GeoLat:       in.GeoLat.Within(domain.MinLat, domain.MaxLat),
		GeoLng:       in.GeoLng.Within(domain.MinLng, domain.MaxLng),
		LogoURL:      in.LogoURL,
		MediaGallery: in.MediaGallery,
		Rating:       in.Rating.Within(domain.MinRating, domain.MaxRating),
		Status:       domain.StatusPending,
	}
	err = s.store.InTx(ctx, func(tx repos.Store) error {
		if err := ensureSlugFree(ctx, tx, b.Slug, ""); err != nil {
			return err
		}
		if err := ensureCategory(ctx, tx, b.CategoryID); err != nil {
			return err
		}
		return tx.Businesses().Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	applog.FromContext(ctx).Info("business.created", "business_id", b.ID, "slug", b.Slug, "owner_id", u.ID)
	s.publish(ctx, events.NewEvent(events.BusinessSubmitted, b, u.ID))
	return b, nil
}

// Update applies an owner's partial edit. A listing the caller does not own is reported
// as not found. Changing a significant field sends the listing back to PENDING.
func (s *ListingService) Update(ctx context.Context, id string, patch domain.BusinessPatch) (*domain.Business, error) {
	u, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	patch.Status = nil

	var prev, next *domain.Business
	err = s.store.InTx(ctx, func(tx repos.Store) error {
		b, err := tx.Businesses().FindByID(ctx, id)
		if err != nil {
			if ierr.IsNotFound(err) {
				return errNotFoundOrDenied()
			}
			return err
		}
		if err := s.gate.RequireOwner(u, b); err != nil {
			return err
		}
		prev = b
		next, err = s.apply(ctx, tx, b, patch, domain.ActorOwner)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterUpdate(ctx, prev, next, u.ID)
	return next, nil
}

// AdminUpdate edits any listing. An explicit status in patch is used as is; without one
// the listing keeps its status whatever fields change.
func (s *ListingService) AdminUpdate(ctx context.Context, id string, patch domain.BusinessPatch) (*domain.Business, error) {
	u, err := s.gate.RequireRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, ierr.NewError("invalid status " + string(*patch.Status)).
			WithHint("Status must be one of PENDING, APPROVED, REJECTED.").
			Mark(ierr.ErrInvalidInput)
	}

	var prev, next *domain.Business
	err = s.store.InTx(ctx, func(tx repos.Store) error {
		b, err := tx.Businesses().FindByID(ctx, id)
		if err != nil {
			return err
		}
		prev = b
		next, err = s.apply(ctx, tx, b, patch, domain.ActorAdmin)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.afterUpdate(ctx, prev, next, u.ID)
	return next, nil
}

// apply validates patch against cur, merges it and writes the result. Checks run in a fixed
// order: slug, category, contact number. Numeric fields never fail.
func (s *ListingService) apply(ctx context.Context, tx repos.Store, cur *domain.Business, patch domain.BusinessPatch, actor domain.Actor) (*domain.Business, error) {
	if patch.Slug.Set {
		norm := slug.Make(patch.Slug.Value)
		if norm == "" {
			return nil, missingField("slug")
		}
		if norm != cur.Slug {
			if err := ensureSlugFree(ctx, tx, norm, cur.ID); err != nil {
				return nil, err
			}
		}
		patch.Slug.Value = norm
	}
	if patch.CategoryID.Set {
		patch.CategoryID.Value = strings.TrimSpace(patch.CategoryID.Value)
		if patch.CategoryID.Value != cur.CategoryID {
			if err := ensureCategory(ctx, tx, patch.CategoryID.Value); err != nil {
				return nil, err
			}
		}
	}

	merged := *cur
	changed := patch.ApplyTo(&merged)
	if missing := blankRequired(&merged); len(missing) > 0 {
		return nil, ierr.NewError("required field would become empty").
			WithHintf("Missing required fields: %s", strings.Join(missing, ", ")).
			Mark(ierr.ErrMissingRequiredField)
	}
	if merged.WhatsApp == "" {
		return nil, ierr.NewError("contact number would become empty").
			WithHint("A WhatsApp contact number is required.").
			Mark(ierr.ErrMissingRequiredField)
	}
	merged.Status = domain.NextStatus(cur.Status, actor, patch.Status, changed)

	if err := tx.Businesses().Update(ctx, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// blankRequired names the create-time text fields an edit has emptied.
func blankRequired(b *domain.Business) []string {
	var missing []string
	if b.Name == "" {
		missing = append(missing, "name")
	}
	if b.Description == "" {
		missing = append(missing, "description")
	}
	return missing
}

func (s *ListingService) afterUpdate(ctx context.Context, prev, next *domain.Business, actorID string) {
	applog.FromContext(ctx).Info("business.updated", "business_id", next.ID, "actor_id", actorID,
		"from", prev.Status, "to", next.Status)
	s.invalidate(ctx, prev.Slug, next.Slug)
	if typ := transitionEvent(prev.Status, next.Status); typ != "" {
		s.publish(ctx, events.NewEvent(typ, next, actorID))
	}
}

// Approve publishes a listing. Approving an approved listing succeeds unchanged.
func (s *ListingService) Approve(ctx context.Context, id string) (*domain.Business, error) {
	return s.moderate(ctx, id, domain.StatusApproved, events.BusinessApproved)
}

func (s *ListingService) Reject(ctx context.Context, id string) (*domain.Business, error) {
	return s.moderate(ctx, id, domain.StatusRejected, events.BusinessRejected)
}

func (s *ListingService) moderate(ctx context.Context, id string, status domain.Status, eventType string) (*domain.Business, error) {
	u, err := s.gate.RequireRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return nil, err
	}
	var b *domain.Business
	err = s.store.InTx(ctx, func(tx repos.Store) error {
		b, err = tx.Businesses().FindByID(ctx, id)
		if err != nil {
			return err
		}
		b.Status = status
		return tx.Businesses().Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	applog.FromContext(ctx).Info("business.moderated", "business_id", b.ID, "status", status, "actor_id", u.ID)
	s.invalidate(ctx, b.Slug)
	s.publish(ctx, events.NewEvent(eventType, b, u.ID))
	return b, nil
}

// Delete removes a listing and its products for good.
func (s *ListingService) Delete(ctx context.Context, id string) error {
	u, err := s.gate.RequireRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return err
	}
	var b *domain.Business
	err = s.store.InTx(ctx, func(tx repos.Store) error {
		b, err = tx.Businesses().FindByID(ctx, id)
		if err != nil {
			return err
		}
		return tx.Businesses().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	applog.FromContext(ctx).Info("business.deleted", "business_id", b.ID, "slug", b.Slug, "actor_id", u.ID)
	s.invalidate(ctx, b.Slug)
	s.publish(ctx, events.NewEvent(events.BusinessDeleted, b, u.ID))
	return nil
}

// Mine lists the caller's own listings, newest first.
func (s *ListingService) Mine(ctx context.Context) ([]domain.Business, error) {
	u, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Businesses().FindByOwner(ctx, u.ID)
}

// GetMine returns one of the caller's listings in any status.
func (s *ListingService) GetMine(ctx context.Context, id string) (*domain.Business, error) {
	u, err := s.gate.RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	b, err := s.store.Businesses().FindByID(ctx, id)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, errNotFoundOrDenied()
		}
		return nil, err
	}
	if err := s.gate.RequireOwner(u, b); err != nil {
		return nil, err
	}
	return b, nil
}

// AdminList is the moderation queue view.
func (s *ListingService) AdminList(ctx context.Context, f repos.BusinessFilter) ([]domain.Business, error) {
	if _, err := s.gate.RequireRole(ctx, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	return s.store.Businesses().List(ctx, f)
}

func (s *ListingService) Stats(ctx context.Context) (*Stats, error) {
	if _, err := s.gate.RequireRole(ctx, domain.RoleSuperAdmin); err != nil {
		return nil, err
	}
	counts, err := s.store.Businesses().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	st := &Stats{ByStatus: counts}
	for _, n := range counts {
		st.Total += n
	}
	return st, nil
}

func (s *ListingService) invalidate(ctx context.Context, slugs ...string) {
	s.cache.DeletePrefix(ctx, cache.PrefixListings)
	for _, sl := range slugs {
		s.cache.DeletePrefix(ctx, cache.PrefixListing+sl)
	}
}

// publish never fails the operation: the change is already committed.
func (s *ListingService) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		applog.FromContext(ctx).Warn("event publish failed", "type", e.Type, "business_id", e.BusinessID, "err", err)
	}
}

func transitionEvent(from, to domain.Status) string {
	if from == to {
		return ""
	}
	switch to {
	case domain.StatusPending:
		return events.BusinessSubmitted
	case domain.StatusApproved:
		return events.BusinessApproved
	case domain.StatusRejected:
		return events.BusinessRejected
	}
	return ""
}

func ensureSlugFree(ctx context.Context, tx repos.Store, sl, exceptID string) error {
	other, err := tx.Businesses().FindBySlug(ctx, sl)
	switch {
	case err == nil && other.ID != exceptID:
		return repos.DuplicateSlug(sl)
	case err != nil && !ierr.IsNotFound(err):
		return err
	}
	return nil
}

func ensureCategory(ctx context.Context, tx repos.Store, id string) error {
	if id == "" {
		return invalidCategory(id)
	}
	if _, err := tx.Categories().FindByID(ctx, id); err != nil {
		if ierr.IsNotFound(err) {
			return invalidCategory(id)
		}
		return err
	}
	return nil
}

func invalidCategory(id string) error {
	return ierr.NewError("category does not exist: " + id).
		WithHint("The selected category does not exist.").
		Mark(ierr.ErrInvalidCategory)
}

func missingField(name string) error {
	return ierr.NewError("missing required field "+name).
		WithHintf("Missing required fields: %s", name).
		Mark(ierr.ErrMissingRequiredField)
}
