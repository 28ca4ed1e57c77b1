package handlers

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"bizdir/internal/domain"
	ierr "bizdir/internal/errors"
	applog "bizdir/internal/log"
)

type AppOptions struct {
	TemplatesDir    string
	ReloadTemplates bool
	// MediaDir is served under /media when set (local storage only).
	MediaDir string
	// RateLimit is requests per minute per IP; 0 disables the global limiter.
	RateLimit int
	// LoginLimit is login attempts per 10 minutes per IP; 0 disables it.
	LoginLimit int
	// AccessLog enables the per-request access log line.
	AccessLog bool
}

// NewApp builds the Fiber app with middleware and every route.
func NewApp(d *Deps, opts AppOptions) *fiber.App {
	engine := html.New(opts.TemplatesDir, ".html")
	engine.Reload(opts.ReloadTemplates)

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: ErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		// uploads are capped at 5 MiB in the media service; leave room for the multipart envelope
		BodyLimit: 6 << 20,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	app.Use(Identify(d.Auth))
	if opts.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimit,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				p := c.Path()
				return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/")
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.global.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(envelope{Error: &apiError{Code: "rate_limited", Message: "Too many requests, retry soon."}})
			},
		}))
	}
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "header:X-CSRF-Token",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		// only cookie sessions can be forged cross-site
		Next: func(c *fiber.Ctx) bool {
			_, isBearer := bearer(c)
			return isBearer || c.Cookies("sid") == ""
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return fail(c, "csrf.fail", ierr.WithError(err).
				WithHint("Security check failed. Please refresh and try again.").
				Mark(ierr.ErrForbidden))
		},
	}))

	// ---------- Static assets ----------
	app.Static("/static", "./web/static")
	if opts.MediaDir != "" {
		app.Get("/media/*", serveMedia(opts.MediaDir))
	}

	// ---------- Public pages ----------
	withUser := LoadUser(d.Gate)
	app.Get("/", withUser, d.CatalogHandler.Home)
	app.Get("/categories/:slug", withUser, d.CatalogHandler.Category)
	app.Get("/business/:slug", withUser, d.CatalogHandler.Business)

	// ---------- API ----------
	api := app.Group("/api/v1")
	api.Get("/categories", d.CatalogHandler.Categories)
	api.Get("/listings", d.CatalogHandler.Listings)
	api.Get("/listings/:slug", d.CatalogHandler.Listing)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", d.AuthHandler.Register)
	if opts.LoginLimit > 0 {
		authGroup.Post("/login", limiter.New(limiter.Config{
			Max:        opts.LoginLimit,
			Expiration: 10 * time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.login.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(envelope{Error: &apiError{Code: "rate_limited", Message: "Too many attempts. Please try again later."}})
			},
		}), d.AuthHandler.Login)
	} else {
		authGroup.Post("/login", d.AuthHandler.Login)
	}
	authGroup.Post("/logout", d.AuthHandler.Logout)
	authGroup.Post("/upgrade-role", d.AuthHandler.UpgradeRole)

	api.Post("/businesses", d.BusinessHandler.Create)
	api.Get("/businesses/mine", d.BusinessHandler.Mine)
	api.Get("/businesses/:id", d.BusinessHandler.Get)
	api.Patch("/businesses/:id", d.BusinessHandler.Update)
	api.Get("/businesses/:id/products", d.ProductHandler.ListMine)

	api.Post("/products", d.ProductHandler.Create)
	api.Delete("/products/:id", d.ProductHandler.Delete)
	api.Post("/upload", d.UploadHandler.Upload)

	admin := api.Group("/admin", RequireRole(d.Gate, domain.RoleSuperAdmin))
	admin.Get("/stats", d.AdminHandler.Stats)
	admin.Get("/businesses", d.AdminHandler.List)
	admin.Post("/businesses/:id/approve", d.AdminHandler.Approve)
	admin.Post("/businesses/:id/reject", d.AdminHandler.Reject)
	admin.Patch("/businesses/:id", d.AdminHandler.Update)
	admin.Delete("/businesses/:id", d.AdminHandler.Delete)

	// ---------- Health & 404 ----------
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		if wantsJSON(c) {
			return c.Status(fiber.StatusNotFound).JSON(envelope{Error: &apiError{Code: ierr.CodeNotFound, Message: "Route not found."}})
		}
		return renderStatus(c, fiber.StatusNotFound, "Page not found")
	})
	return app
}

// serveMedia serves uploaded files and refuses traversal attempts.
func serveMedia(dir string) fiber.Handler {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(dir, clean), true)
	}
}
