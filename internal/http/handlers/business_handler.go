package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
	applog "bizdir/internal/log"
	"bizdir/internal/services"
	"bizdir/internal/validate"
)

// patchBody is a partial listing update as clients send it. whatsappNumber is an alias of
// whatsapp; status is only honored on the admin route.
type patchBody struct {
	domain.BusinessPatch
	WhatsAppNumber domain.Optional[string] `json:"whatsappNumber"`
	Status         *string                 `json:"status"`
}

func (b patchBody) patch() domain.BusinessPatch {
	p := b.BusinessPatch
	if !p.WhatsApp.Set && b.WhatsAppNumber.Set {
		p.WhatsApp = b.WhatsAppNumber
	}
	return p
}

type BusinessHandler struct {
	Listings *services.ListingService
}

// POST /api/v1/businesses
func (h *BusinessHandler) Create(c *fiber.Ctx) error {
	var in services.CreateBusinessInput
	if err := decode(c, &in); err != nil {
		return fail(c, "business.create.fail", err)
	}
	b, err := h.Listings.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, "business.create.fail", err)
	}
	applog.Audit(c, "business.create", map[string]any{"business_id": b.ID, "slug": b.Slug})
	return ok(c, fiber.StatusCreated, b)
}

// GET /api/v1/businesses/mine
func (h *BusinessHandler) Mine(c *fiber.Ctx) error {
	list, err := h.Listings.Mine(c.UserContext())
	if err != nil {
		return fail(c, "business.mine.fail", err)
	}
	return ok(c, fiber.StatusOK, list)
}

// GET /api/v1/businesses/:id
func (h *BusinessHandler) Get(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return fail(c, "validation.fail", ierr.NewError("bad business id").WithHint("Business not found or access denied.").Mark(ierr.ErrNotFound))
	}
	b, err := h.Listings.GetMine(c.UserContext(), id)
	if err != nil {
		return fail(c, "business.get.fail", err)
	}
	return ok(c, fiber.StatusOK, b)
}

// PATCH /api/v1/businesses/:id
func (h *BusinessHandler) Update(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return fail(c, "validation.fail", ierr.NewError("bad business id").WithHint("Business not found or access denied.").Mark(ierr.ErrNotFound))
	}
	var body patchBody
	if err := decode(c, &body); err != nil {
		return fail(c, "business.update.fail", err)
	}
	b, err := h.Listings.Update(c.UserContext(), id, body.patch())
	if err != nil {
		return fail(c, "business.update.fail", err)
	}
	applog.Audit(c, "business.update", map[string]any{"business_id": b.ID, "status": b.Status})
	return ok(c, fiber.StatusOK, b)
}
