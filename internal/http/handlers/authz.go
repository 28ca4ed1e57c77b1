package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"bizdir/internal/auth"
	"bizdir/internal/domain"
	applog "bizdir/internal/log"
	"bizdir/internal/services"
)

// Identify attaches the caller's identity to the request context. A bearer token wins over
// the session cookie; a bad token leaves the request anonymous.
func Identify(authSvc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ctx = applog.WithRequestID(ctx, rid)
		}

		var (
			id    auth.Identity
			found bool
		)
		if token, ok := bearer(c); ok {
			parsed, err := authSvc.ParseToken(token)
			if err != nil {
				applog.Security(c, "auth.token.invalid", nil)
			} else {
				id, found = parsed, true
			}
		} else if sid := c.Cookies("sid"); sid != "" {
			id, found = authSvc.CurrentIdentity(ctx, sid)
		}
		if found {
			ctx = auth.WithIdentity(ctx, id)
			c.Locals("user_id", id.ID)
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func bearer(c *fiber.Ctx) (string, bool) {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:]), true
	}
	return "", false
}

// RequireRole stops callers whose role is not exactly role before any handler runs.
func RequireRole(gate *services.AccessGate, role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := gate.RequireRole(c.UserContext(), role)
		if err != nil {
			return fail(c, "access.denied."+strings.ToLower(string(role)), err)
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// LoadUser exposes the signed-in user to templates.
func LoadUser(gate *services.AccessGate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if u := gate.ResolveCurrentIdentity(c.UserContext()); u != nil {
			c.Locals("user", u)
		}
		return c.Next()
	}
}
