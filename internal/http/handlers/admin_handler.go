package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
	applog "bizdir/internal/log"
	"bizdir/internal/repos"
	"bizdir/internal/services"
	"bizdir/internal/validate"
)

// AdminHandler is the moderation API. Routes sit behind RequireRole(SUPER_ADMIN) and the
// service checks the role again.
type AdminHandler struct {
	Listings *services.ListingService
}

// GET /api/v1/admin/businesses?status=PENDING&q=...&page=1
func (h *AdminHandler) List(c *fiber.Ctx) error {
	f := repos.BusinessFilter{Limit: 50}
	f.Offset = (validate.Page(c.Query("page")) - 1) * f.Limit
	if raw := c.Query("status"); raw != "" {
		st, valid := domain.ParseStatus(raw)
		if !valid {
			return fail(c, "validation.fail", badStatus(raw))
		}
		f.Status = st
	}
	if q, valid := validate.Q(c.Query("q")); valid {
		f.Query = q
	}
	list, err := h.Listings.AdminList(c.UserContext(), f)
	if err != nil {
		return fail(c, "admin.businesses.list.fail", err)
	}
	return ok(c, fiber.StatusOK, list)
}

// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	st, err := h.Listings.Stats(c.UserContext())
	if err != nil {
		return fail(c, "admin.stats.fail", err)
	}
	return ok(c, fiber.StatusOK, st)
}

// POST /api/v1/admin/businesses/:id/approve
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	b, err := h.Listings.Approve(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "admin.business.approve.fail", err)
	}
	applog.Audit(c, "admin.business.approve", map[string]any{"business_id": b.ID})
	return ok(c, fiber.StatusOK, b)
}

// POST /api/v1/admin/businesses/:id/reject
func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	b, err := h.Listings.Reject(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "admin.business.reject.fail", err)
	}
	applog.Audit(c, "admin.business.reject", map[string]any{"business_id": b.ID})
	return ok(c, fiber.StatusOK, b)
}

// PATCH /api/v1/admin/businesses/:id
func (h *AdminHandler) Update(c *fiber.Ctx) error {
	var body patchBody
	if err := decode(c, &body); err != nil {
		return fail(c, "admin.business.update.fail", err)
	}
	patch := body.patch()
	if body.Status != nil {
		st, valid := domain.ParseStatus(*body.Status)
		if !valid {
			return fail(c, "validation.fail", badStatus(*body.Status))
		}
		patch.Status = &st
	}
	b, err := h.Listings.AdminUpdate(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return fail(c, "admin.business.update.fail", err)
	}
	applog.Audit(c, "admin.business.update", map[string]any{"business_id": b.ID, "status": b.Status})
	return ok(c, fiber.StatusOK, b)
}

// DELETE /api/v1/admin/businesses/:id
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Listings.Delete(c.UserContext(), id); err != nil {
		return fail(c, "admin.business.delete.fail", err)
	}
	applog.Audit(c, "admin.business.delete", map[string]any{"business_id": id})
	return ok(c, fiber.StatusOK, fiber.Map{"id": id, "deleted": true})
}

func badStatus(raw string) error {
	return ierr.NewError("invalid status " + raw).
		WithHint("Status must be one of PENDING, APPROVED, REJECTED.").
		Mark(ierr.ErrInvalidInput)
}
