package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	ierr "bizdir/internal/errors"
	"bizdir/internal/log"
	"bizdir/internal/services"
)

type UploadHandler struct {
	Media *services.MediaService
}

// POST /api/v1/upload (multipart: file, type=business|product, businessId)
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, "media.upload.fail", ierr.WithError(err).WithHint("No file uploaded.").Mark(ierr.ErrInvalidInput))
	}
	if fh.Size > services.MaxUploadBytes {
		return fail(c, "media.upload.fail", ierr.NewError("upload too large").WithHint("File exceeds 5 MB.").Mark(ierr.ErrInvalidInput))
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, "media.upload.fail", ierr.Internal(err, "open upload"))
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, services.MaxUploadBytes+1))
	if err != nil {
		return fail(c, "media.upload.fail", ierr.Internal(err, "read upload"))
	}

	url, err := h.Media.Upload(c.UserContext(), services.UploadInput{
		Kind:       c.FormValue("type"),
		BusinessID: c.FormValue("businessId"),
		Data:       data,
	})
	if err != nil {
		return fail(c, "media.upload.fail", err)
	}
	log.Audit(c, "media.upload", map[string]any{"url": url})
	return ok(c, fiber.StatusCreated, fiber.Map{"url": url})
}
