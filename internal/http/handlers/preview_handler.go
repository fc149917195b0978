package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	applog "ramdom/internal/log"
	"ramdom/internal/scene"
	"ramdom/internal/services"
	"ramdom/internal/validate"
)

type PreviewHandler struct {
	Previews *services.PreviewService
}

func previewError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrPreviewNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "preview not found"})
	case errors.Is(err, services.ErrBadInput), errors.Is(err, scene.ErrInvalidSize):
		applog.Security(c, "validation.fail", map[string]any{"field": "preview.input"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	default:
		applog.Error(c, "preview.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "preview unavailable"})
	}
}

func previewID(c *fiber.Ctx) (string, bool) {
	return validate.ID(c.Params("id"))
}

// Frame serves the latest frame as PNG. Clients pass the previous ETag to
// skip unchanged frames.
func (h *PreviewHandler) Frame(c *fiber.Ctx) error {
	id, ok := previewID(c)
	if !ok {
		return previewError(c, services.ErrPreviewNotFound)
	}
	fr, err := h.Previews.Frame(sessionID(c), id, c.QueryInt("w"), c.QueryInt("h"))
	if err != nil {
		return previewError(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Set(fiber.HeaderETag, fr.ETag)
	c.Set("X-Frame-Seq", strconv.FormatUint(fr.Seq, 10))
	if c.Get(fiber.HeaderIfNoneMatch) == fr.ETag {
		return c.SendStatus(fiber.StatusNotModified)
	}
	c.Type("png")
	return c.Send(fr.PNG)
}

// Input accepts one pointer event: rotate, zoom, pan or resize.
func (h *PreviewHandler) Input(c *fiber.Ctx) error {
	id, ok := previewID(c)
	if !ok {
		return previewError(c, services.ErrPreviewNotFound)
	}
	var in services.Input
	if err := c.BodyParser(&in); err != nil {
		return previewError(c, services.ErrBadInput)
	}
	if err := h.Previews.Input(sessionID(c), id, in); err != nil {
		return previewError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Appearance recolors the garment.
func (h *PreviewHandler) Appearance(c *fiber.Ctx) error {
	id, ok := previewID(c)
	if !ok {
		return previewError(c, services.ErrPreviewNotFound)
	}
	hex, ok := validate.Hex(c.FormValue("color"))
	if !ok {
		return previewError(c, services.ErrBadInput)
	}
	col, err := h.Previews.SetColor(sessionID(c), id, hex)
	if err != nil {
		return previewError(c, err)
	}
	return c.JSON(fiber.Map{"hex": col.Hex, "name": col.Name})
}

// Close releases the preview when the page goes away.
func (h *PreviewHandler) Close(c *fiber.Ctx) error {
	if id, ok := previewID(c); ok {
		_ = h.Previews.Close(sessionID(c), id)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
