package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
	"bizdir/internal/events"
	"bizdir/internal/repos"
)

type ListingSuite struct {
	suite.Suite
	env *env

	owner    *domain.User
	ownerCtx context.Context
	adminCtx context.Context
	otherCtx context.Context
}

func TestListingSuite(t *testing.T) { suite.Run(t, new(ListingSuite)) }

func (s *ListingSuite) SetupTest() {
	s.env = newEnv(s.T())
	s.ownerCtx, s.owner = s.env.as(s.T(), "joe@example.com", domain.RoleBusinessOwner)
	s.adminCtx, _ = s.env.as(s.T(), "root@example.com", domain.RoleSuperAdmin)
	s.otherCtx, _ = s.env.as(s.T(), "eve@example.com", domain.RoleBusinessOwner)
}

func (s *ListingSuite) create() *domain.Business {
	b, err := s.env.listings.Create(s.ownerCtx, joesCoffee())
	s.Require().NoError(err)
	return b
}

func (s *ListingSuite) approved() *domain.Business {
	b := s.create()
	b, err := s.env.listings.Approve(s.adminCtx, b.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.StatusApproved, b.Status)
	return b
}

func (s *ListingSuite) stored(id string) *domain.Business {
	b, err := s.env.store.Businesses().FindByID(context.Background(), id)
	s.Require().NoError(err)
	return b
}

func (s *ListingSuite) TestCreateIsAlwaysPending() {
	in := joesCoffee()
	in.Status = "APPROVED"
	b, err := s.env.listings.Create(s.ownerCtx, in)
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, b.Status)
	s.Equal(domain.StatusPending, s.stored(b.ID).Status)
	s.Equal([]string{events.BusinessSubmitted}, s.env.events.Types())
}

func (s *ListingSuite) TestCreateIgnoresSuppliedOwner() {
	in := joesCoffee()
	in.OwnerID = "someone-else"
	b, err := s.env.listings.Create(s.ownerCtx, in)
	s.Require().NoError(err)
	s.Equal(s.owner.ID, b.OwnerID)
}

func (s *ListingSuite) TestCreateNormalizesInput() {
	in := joesCoffee()
	in.Slug = "  Joes Coffee!! "
	in.WhatsApp = ""
	in.WhatsAppNumber = "+15551234567"
	in.Rating = domain.RawFloat("9")
	in.GeoLat = domain.RawFloat("30.25")
	b, err := s.env.listings.Create(s.ownerCtx, in)
	s.Require().NoError(err)
	s.Equal("joes-coffee", b.Slug)
	s.Equal("+15551234567", b.WhatsApp)
	s.Nil(b.Rating)
	s.Require().NotNil(b.GeoLat)
	s.Equal(30.25, *b.GeoLat)
}

func (s *ListingSuite) TestCreateRequiresFields() {
	in := joesCoffee()
	in.Description = "   "
	in.WhatsApp = ""
	_, err := s.env.listings.Create(s.ownerCtx, in)
	s.True(ierr.IsMissingRequiredField(err), "got %v", err)
	s.Contains(ierr.Hint(err), "description")
	s.Contains(ierr.Hint(err), "whatsapp")
}

func (s *ListingSuite) TestCreateDuplicateSlug() {
	s.create()
	in := joesCoffee()
	in.Name = "Another Joe"
	_, err := s.env.listings.Create(s.otherCtx, in)
	s.True(ierr.IsDuplicateSlug(err), "got %v", err)

	all, err := s.env.store.Businesses().List(context.Background(), repos.BusinessFilter{})
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *ListingSuite) TestCreateInvalidCategory() {
	in := joesCoffee()
	in.CategoryID = "nope"
	_, err := s.env.listings.Create(s.ownerCtx, in)
	s.True(ierr.IsInvalidCategory(err), "got %v", err)
}

func (s *ListingSuite) TestCreateRequiresSignIn() {
	_, err := s.env.listings.Create(context.Background(), joesCoffee())
	s.True(ierr.IsUnauthenticated(err), "got %v", err)
}

func (s *ListingSuite) TestOwnerSignificantChangeRevertsToPending() {
	b := s.approved()
	out, err := s.env.listings.Update(s.ownerCtx, b.ID, domain.BusinessPatch{Name: domain.Some("Joe's Roastery")})
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, out.Status)
	s.Equal("Joe's Roastery", s.stored(b.ID).Name)
}

func (s *ListingSuite) TestOwnerRejectedListingResubmits() {
	b := s.create()
	_, err := s.env.listings.Reject(s.adminCtx, b.ID)
	s.Require().NoError(err)

	out, err := s.env.listings.Update(s.ownerCtx, b.ID, domain.BusinessPatch{Description: domain.Some("Now with pastries.")})
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, out.Status)
}

func (s *ListingSuite) TestOwnerCosmeticChangeKeepsStatus() {
	b := s.approved()
	out, err := s.env.listings.Update(s.ownerCtx, b.ID, domain.BusinessPatch{
		Rating:  domain.SomeFloat(4.5),
		LogoURL: domain.Some("/media/logo.png"),
	})
	s.Require().NoError(err)
	s.Equal(domain.StatusApproved, out.Status)
	s.Require().NotNil(out.Rating)
	s.Equal(4.5, *out.Rating)
}

func (s *ListingSuite) TestOwnerResubmittingSameValueKeepsStatus() {
	b := s.approved()
	out, err := s.env.listings.Update(s.ownerCtx, b.ID, domain.BusinessPatch{Name: domain.Some(b.Name)})
	s.Require().NoError(err)
	s.Equal(domain.StatusApproved, out.Status)
}

func (s *ListingSuite) TestOwnerCannotSetStatus() {
	b := s.create()
	approved := domain.StatusApproved
	out, err := s.env.listings.Update(s.ownerCtx, b.ID, domain.BusinessPatch{Status: &approved})
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, out.Status)
}

func (s *ListingSuite) TestAdminExplicitStatusBypassesRevert() {
	b := s.create()
	approved := domain.StatusApproved
	out, err := s.env.listings.AdminUpdate(s.adminCtx, b.ID, domain.BusinessPatch{
		Name:   domain.Some("Joe's Roastery"),
		Status: &approved,
	})
	s.Require().NoError(err)
	s.Equal(domain.StatusApproved, out.Status)
}

func (s *ListingSuite) TestAdminEditKeepsStatus() {
	b := s.approved()
	out, err := s.env.listings.AdminUpdate(s.adminCtx, b.ID, domain.BusinessPatch{City: domain.Some("Austin")})
	s.Require().NoError(err)
	s.Equal(domain.StatusApproved, out.Status)
}

func (s *ListingSuite) TestAdminUpdateRejectsUnknownStatus() {
	b := s.create()
	bad := domain.Status("ARCHIVED")
	_, err := s.env.listings.AdminUpdate(s.adminCtx, b.ID, domain.BusinessPatch{Status: &bad})
	s.True(ierr.IsInvalidInput(err), "got %v", err)
}

func (s *ListingSuite) TestEmptyContactNumberFails() {
	b := s.approved()
	_, err := s.env.listings.Update(s.ownerCtx, b.ID, domain.BusinessPatch{
		WhatsApp: domain.Some("  "),
		City:     domain.Some("Austin"),
	})
	s.True(ierr.IsMissingRequiredField(err), "got %v", err)

	after := s.stored(b.ID)
	s.Equal("+15551234567", after.WhatsApp)
	s.Equal("", after.City)
	s.Equal(domain.StatusApproved, after.Status)
}

func (s *ListingSuite) TestClearingNameOrDescriptionFails() {
	b := s.approved()
	for _, patch := range []domain.BusinessPatch{
		{Name: domain.Some("")},
		{Description: domain.Some("   ")},
	} {
		_, err := s.env.listings.Update(s.ownerCtx, b.ID, patch)
		s.True(ierr.IsMissingRequiredField(err), "got %v", err)
	}
	_, err := s.env.listings.AdminUpdate(s.adminCtx, b.ID, domain.BusinessPatch{Name: domain.Some("")})
	s.True(ierr.IsMissingRequiredField(err), "got %v", err)

	after := s.stored(b.ID)
	s.Equal(b.Name, after.Name)
	s.Equal(b.Description, after.Description)
	s.Equal(domain.StatusApproved, after.Status)
}

func (s *ListingSuite) TestUpdateSlugCollision() {
	s.create()
	in := joesCoffee()
	in.Slug = "eves-bakery"
	other, err := s.env.listings.Create(s.otherCtx, in)
	s.Require().NoError(err)

	_, err = s.env.listings.Update(s.otherCtx, other.ID, domain.BusinessPatch{Slug: domain.Some("joes-coffee")})
	s.True(ierr.IsDuplicateSlug(err), "got %v", err)
	s.Equal("eves-bakery", s.stored(other.ID).Slug)
}

func (s *ListingSuite) TestUpdateOwnSlugUnchangedPasses() {
	b := s.approved()
	out, err := s.env.listings.Update(s.ownerCtx, b.ID, domain.BusinessPatch{Slug: domain.Some("Joes Coffee")})
	s.Require().NoError(err)
	s.Equal("joes-coffee", out.Slug)
	s.Equal(domain.StatusApproved, out.Status)
}

func (s *ListingSuite) TestUpdateEmptySlug() {
	b := s.create()
	_, err := s.env.listings.Update(s.ownerCtx, b.ID, domain.BusinessPatch{Slug: domain.Some("!!!")})
	s.True(ierr.IsMissingRequiredField(err), "got %v", err)
}

func (s *ListingSuite) TestUpdateInvalidCategory() {
	b := s.create()
	_, err := s.env.listings.Update(s.ownerCtx, b.ID, domain.BusinessPatch{CategoryID: domain.Some("missing")})
	s.True(ierr.IsInvalidCategory(err), "got %v", err)

	out, err := s.env.listings.Update(s.ownerCtx, b.ID, domain.BusinessPatch{CategoryID: domain.Some("cat-2")})
	s.Require().NoError(err)
	s.Equal("cat-2", out.CategoryID)
}

func (s *ListingSuite) TestValidationOrderSlugBeforeCategory() {
	s.create()
	in := joesCoffee()
	in.Slug = "eves-bakery"
	other, err := s.env.listings.Create(s.otherCtx, in)
	s.Require().NoError(err)

	_, err = s.env.listings.Update(s.otherCtx, other.ID, domain.BusinessPatch{
		Slug:       domain.Some("joes-coffee"),
		CategoryID: domain.Some("missing"),
		WhatsApp:   domain.Some(""),
	})
	s.True(ierr.IsDuplicateSlug(err), "got %v", err)
}

func (s *ListingSuite) TestNonOwnerGetsNotFound() {
	b := s.approved()
	_, err := s.env.listings.Update(s.otherCtx, b.ID, domain.BusinessPatch{Name: domain.Some("Hijacked")})
	s.True(ierr.IsNotFound(err), "got %v", err)
	s.False(ierr.IsForbidden(err))

	after := s.stored(b.ID)
	s.Equal("Joe's Coffee", after.Name)
	s.Equal(domain.StatusApproved, after.Status)

	_, missing := s.env.listings.Update(s.otherCtx, "does-not-exist", domain.BusinessPatch{})
	s.Equal(ierr.Hint(missing), ierr.Hint(err), "foreign and missing listings look the same")
}

func (s *ListingSuite) TestModerationRequiresSuperAdmin() {
	b := s.create()
	adminCtx, _ := s.env.as(s.T(), "admin@example.com", domain.RoleAdmin)

	_, err := s.env.listings.Approve(adminCtx, b.ID)
	s.True(ierr.IsForbidden(err), "got %v", err)
	_, err = s.env.listings.Reject(adminCtx, b.ID)
	s.True(ierr.IsForbidden(err), "got %v", err)
	err = s.env.listings.Delete(adminCtx, b.ID)
	s.True(ierr.IsForbidden(err), "got %v", err)
	_, err = s.env.listings.Approve(s.ownerCtx, b.ID)
	s.True(ierr.IsForbidden(err), "got %v", err)

	s.Equal(domain.StatusPending, s.stored(b.ID).Status)
}

func (s *ListingSuite) TestApproveIsIdempotent() {
	b := s.approved()
	out, err := s.env.listings.Approve(s.adminCtx, b.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusApproved, out.Status)
}

func (s *ListingSuite) TestRejectFromApproved() {
	b := s.approved()
	out, err := s.env.listings.Reject(s.adminCtx, b.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusRejected, out.Status)
}

func (s *ListingSuite) TestApproveMissing() {
	_, err := s.env.listings.Approve(s.adminCtx, "nope")
	s.True(ierr.IsNotFound(err), "got %v", err)
}

func (s *ListingSuite) TestDeleteRemovesListingAndProducts() {
	b := s.approved()
	_, err := s.env.products.Create(s.ownerCtx, coffeeBeans(b.ID))
	s.Require().NoError(err)

	s.Require().NoError(s.env.listings.Delete(s.adminCtx, b.ID))

	_, err = s.env.store.Businesses().FindByID(context.Background(), b.ID)
	s.True(ierr.IsNotFound(err))
	left, err := s.env.store.Products().ListByBusiness(context.Background(), b.ID, false)
	s.Require().NoError(err)
	s.Empty(left)
	s.Contains(s.env.events.Types(), events.BusinessDeleted)

	s.True(ierr.IsNotFound(s.env.listings.Delete(s.adminCtx, b.ID)))
}

func (s *ListingSuite) TestStatusAlwaysValid() {
	b := s.create()
	steps := []func() (*domain.Business, error){
		func() (*domain.Business, error) { return s.env.listings.Approve(s.adminCtx, b.ID) },
		func() (*domain.Business, error) {
			return s.env.listings.Update(s.ownerCtx, b.ID, domain.BusinessPatch{City: domain.Some("Austin")})
		},
		func() (*domain.Business, error) { return s.env.listings.Reject(s.adminCtx, b.ID) },
		func() (*domain.Business, error) {
			return s.env.listings.Update(s.ownerCtx, b.ID, domain.BusinessPatch{Rating: domain.RawFloat("oops")})
		},
	}
	for _, step := range steps {
		out, err := step()
		s.Require().NoError(err)
		s.True(out.Status.Valid(), out.Status)
	}
}

func (s *ListingSuite) TestMineAndGetMine() {
	b := s.create()
	mine, err := s.env.listings.Mine(s.ownerCtx)
	s.Require().NoError(err)
	s.Len(mine, 1)

	theirs, err := s.env.listings.Mine(s.otherCtx)
	s.Require().NoError(err)
	s.Empty(theirs)

	_, err = s.env.listings.GetMine(s.otherCtx, b.ID)
	s.True(ierr.IsNotFound(err))
	got, err := s.env.listings.GetMine(s.ownerCtx, b.ID)
	s.Require().NoError(err)
	s.Equal(b.ID, got.ID)
}

func (s *ListingSuite) TestAdminListAndStats() {
	b := s.create()
	in := joesCoffee()
	in.Slug = "eves-bakery"
	_, err := s.env.listings.Create(s.otherCtx, in)
	s.Require().NoError(err)
	_, err = s.env.listings.Approve(s.adminCtx, b.ID)
	s.Require().NoError(err)

	pending, err := s.env.listings.AdminList(s.adminCtx, repos.BusinessFilter{Status: domain.StatusPending})
	s.Require().NoError(err)
	s.Len(pending, 1)

	st, err := s.env.listings.Stats(s.adminCtx)
	s.Require().NoError(err)
	s.Equal(2, st.Total)
	s.Equal(1, st.ByStatus[domain.StatusApproved])
	s.Equal(0, st.ByStatus[domain.StatusRejected])

	_, err = s.env.listings.Stats(s.ownerCtx)
	s.True(ierr.IsForbidden(err))
}

func (s *ListingSuite) TestPublishFailureDoesNotFailWrite() {
	s.env.events.Err = errors.New("broker down")
	b := s.create()
	s.Equal(domain.StatusPending, s.stored(b.ID).Status)
}

func (s *ListingSuite) TestApprovalInvalidatesPublicCache() {
	b := s.create()
	_, err := s.env.catalog.ListingBySlug(context.Background(), b.Slug)
	s.True(ierr.IsNotFound(err), "pending listings are not public")

	_, err = s.env.listings.Approve(s.adminCtx, b.ID)
	s.Require().NoError(err)
	got, err := s.env.catalog.ListingBySlug(context.Background(), b.Slug)
	s.Require().NoError(err)
	s.Equal(b.ID, got.ID)

	_, err = s.env.listings.Update(s.ownerCtx, b.ID, domain.BusinessPatch{Address: domain.Some("1 Elm St")})
	s.Require().NoError(err)
	_, err = s.env.catalog.ListingBySlug(context.Background(), b.Slug)
	s.True(ierr.IsNotFound(err), "cached copy must not outlive the revert")
}

func (s *ListingSuite) TestJoesCoffeeLifecycle() {
	b, err := s.env.listings.Create(s.ownerCtx, joesCoffee())
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, b.Status)

	b, err = s.env.listings.Approve(s.adminCtx, b.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusApproved, b.Status)

	b, err = s.env.listings.Update(s.ownerCtx, b.ID, domain.BusinessPatch{Address: domain.Some("123 Main St")})
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, b.Status)
	s.Equal("123 Main St", b.Address)

	b, err = s.env.listings.Approve(s.adminCtx, b.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusApproved, b.Status)

	s.Equal([]string{
		events.BusinessSubmitted,
		events.BusinessApproved,
		events.BusinessSubmitted,
		events.BusinessApproved,
	}, s.env.events.Types())
}
