package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bizdir/internal/log"
	"bizdir/internal/services"
)

type ProductHandler struct {
	Products *services.ProductService
}

// POST /api/v1/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.CreateProductInput
	if err := decode(c, &in); err != nil {
		return fail(c, "product.create.fail", err)
	}
	p, err := h.Products.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, "product.create.fail", err)
	}
	log.Audit(c, "product.create", map[string]any{"product_id": p.ID, "business_id": p.BusinessID})
	return ok(c, fiber.StatusCreated, p)
}

// GET /api/v1/businesses/:id/products
func (h *ProductHandler) ListMine(c *fiber.Ctx) error {
	list, err := h.Products.ListByBusiness(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, "product.list.fail", err)
	}
	return ok(c, fiber.StatusOK, list)
}

// DELETE /api/v1/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Products.Delete(c.UserContext(), id); err != nil {
		return fail(c, "product.delete.fail", err)
	}
	log.Audit(c, "product.delete", map[string]any{"product_id": id})
	return ok(c, fiber.StatusOK, fiber.Map{"id": id, "deleted": true})
}
