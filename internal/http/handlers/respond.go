package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"

	ierr "bizdir/internal/errors"
	applog "bizdir/internal/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

func ok(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(envelope{Success: true, Data: data})
}

// fail writes the error envelope for err and logs it by severity.
func fail(c *fiber.Ctx, action string, err error) error {
	status := ierr.HTTPStatus(err)
	// the access log reads the status off the response
	c.Status(status)
	switch {
	case status >= http.StatusInternalServerError:
		applog.Error(c, action, err, nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		applog.Security(c, action, map[string]any{"code": ierr.CodeOf(err)})
	default:
		applog.Info(c, action, map[string]any{"code": ierr.CodeOf(err)})
	}
	return c.JSON(envelope{Error: &apiError{Code: ierr.CodeOf(err), Message: ierr.Hint(err)}})
}

// decode reads a JSON body. Malformed input is InvalidInput.
func decode(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return ierr.WithError(err).
			WithHint("Request body must be valid JSON.").
			Mark(ierr.ErrInvalidInput)
	}
	return nil
}

// ErrorHandler turns errors escaping handlers into the envelope. HTML pages get the
// notfound template instead.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := ierr.CodeInternal
		switch {
		case fe.Code == fiber.StatusNotFound:
			code = ierr.CodeNotFound
		case fe.Code == fiber.StatusRequestEntityTooLarge || (fe.Code >= 400 && fe.Code < 500):
			code = ierr.CodeInvalidInput
		}
		if fe.Code >= 500 {
			applog.Error(c, "server.error", err, nil)
		}
		if !wantsJSON(c) {
			return renderStatus(c, fe.Code, fe.Message)
		}
		return c.Status(fe.Code).JSON(envelope{Error: &apiError{Code: code, Message: fe.Message}})
	}
	if !wantsJSON(c) {
		applog.Error(c, "server.error", err, nil)
		return renderStatus(c, ierr.HTTPStatus(err), ierr.Hint(err))
	}
	return fail(c, "server.error", err)
}

func wantsJSON(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

func renderStatus(c *fiber.Ctx, status int, msg string) error {
	if rerr := c.Status(status).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(status).SendString(msg)
	}
	return nil
}
