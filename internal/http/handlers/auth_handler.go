package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"bizdir/internal/domain"
	"bizdir/internal/log"
	"bizdir/internal/services"
	"bizdir/internal/validate"
)

type AuthHandler struct {
	Auth         *services.AuthService
	SecureCookie bool
}

func (h *AuthHandler) ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   h.SecureCookie,
		})
	}
	return sid
}

// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := decode(c, &in); err != nil {
		return fail(c, "auth.register.fail", err)
	}
	u, err := h.Auth.Register(c.UserContext(), in)
	if err != nil {
		return fail(c, "auth.register.fail", err)
	}
	log.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return ok(c, fiber.StatusCreated, u)
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginBody
	if err := decode(c, &in); err != nil {
		return fail(c, "auth.login.fail", err)
	}
	email, valid := validate.Email(in.Email)
	if !valid || !validate.Password(in.Password) {
		log.Security(c, "auth.login.fail", map[string]any{"email": in.Email, "reason": "bad_format"})
		return fail(c, "auth.login.fail", services.ErrBadCreds)
	}
	sid := h.ensureSID(c)
	u, token, err := h.Auth.Login(c.UserContext(), sid, email, in.Password)
	if err != nil {
		return fail(c, "auth.login.fail", err)
	}
	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return ok(c, fiber.StatusOK, fiber.Map{"user": u, "token": token})
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies("sid"); sid != "" {
		if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
			return fail(c, "auth.logout.fail", err)
		}
		log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	}
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.SecureCookie,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	return ok(c, fiber.StatusOK, fiber.Map{"signedOut": true})
}

type upgradeBody struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// POST /api/v1/auth/upgrade-role
func (h *AuthHandler) UpgradeRole(c *fiber.Ctx) error {
	var in upgradeBody
	if err := decode(c, &in); err != nil {
		return fail(c, "auth.upgrade.fail", err)
	}
	u, err := h.Auth.UpgradeOwnRole(c.UserContext(), in.UserID, domain.Role(in.Role))
	if err != nil {
		return fail(c, "auth.upgrade.fail", err)
	}
	log.Audit(c, "auth.upgrade", map[string]any{"user_id": u.ID, "role": u.Role})
	return ok(c, fiber.StatusOK, u)
}
