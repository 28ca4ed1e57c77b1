package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
	"bizdir/internal/log"
	"bizdir/internal/services"
	"bizdir/internal/validate"
)

// CatalogHandler serves the public directory, as pages and as JSON.
type CatalogHandler struct {
	Catalog *services.CatalogService
}

func (h *CatalogHandler) query(c *fiber.Ctx) services.ListingQuery {
	q := services.ListingQuery{
		CategorySlug: c.Query("category"),
		City:         c.Query("city"),
		Page:         validate.Page(c.Query("page")),
	}
	if s, valid := validate.Q(c.Query("q")); valid {
		q.Q = s
	} else if c.Query("q") != "" {
		log.Security(c, "validation.fail", map[string]any{"field": "q"})
	}
	return q
}

// GET /api/v1/categories
func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories(c.UserContext())
	if err != nil {
		return fail(c, "catalog.categories.fail", err)
	}
	return ok(c, fiber.StatusOK, cats)
}

// GET /api/v1/listings?category=&city=&q=&page=
func (h *CatalogHandler) Listings(c *fiber.Ctx) error {
	list, err := h.Catalog.Listings(c.UserContext(), h.query(c))
	if err != nil {
		return fail(c, "catalog.listings.fail", err)
	}
	return ok(c, fiber.StatusOK, list)
}

// GET /api/v1/listings/:slug
func (h *CatalogHandler) Listing(c *fiber.Ctx) error {
	b, err := h.Catalog.ListingBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return fail(c, "catalog.listing.fail", err)
	}
	products, err := h.Catalog.Products(c.UserContext(), b.ID)
	if err != nil {
		return fail(c, "catalog.listing.fail", err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{
		"business":     b,
		"products":     products,
		"whatsappLink": contactLink(b),
	})
}

// GET /
func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories(c.UserContext())
	if err != nil {
		return err
	}
	latest, err := h.Catalog.Listings(c.UserContext(), services.ListingQuery{PageSize: 6})
	if err != nil {
		return err
	}
	return render(c, "home", fiber.Map{"Categories": cats, "Latest": latest})
}

// GET /categories/:slug
func (h *CatalogHandler) Category(c *fiber.Ctx) error {
	cat, err := h.Catalog.CategoryBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return h.pageError(c, err, "This category does not exist")
	}
	q := h.query(c)
	q.CategorySlug = cat.Slug
	list, err := h.Catalog.Listings(c.UserContext(), q)
	if err != nil {
		return err
	}
	return render(c, "category", fiber.Map{"Category": cat, "Businesses": list, "Query": q})
}

// GET /business/:slug
func (h *CatalogHandler) Business(c *fiber.Ctx) error {
	b, err := h.Catalog.ListingBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return h.pageError(c, err, "This business is no longer listed")
	}
	products, err := h.Catalog.Products(c.UserContext(), b.ID)
	if err != nil {
		return err
	}
	return render(c, "business", fiber.Map{"B": b, "Products": products, "WhatsAppLink": contactLink(b)})
}

func (h *CatalogHandler) pageError(c *fiber.Ctx, err error, notFoundMsg string) error {
	if ierr.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": notFoundMsg})
	}
	return err
}

func contactLink(b *domain.Business) string {
	return domain.WhatsAppLink(b.WhatsApp, fmt.Sprintf("Hi %s, I found you on the directory.", b.Name))
}
