package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"ramdom/internal/domain"
	"ramdom/internal/log"
	"ramdom/internal/repos"
	"ramdom/internal/services"
	"ramdom/internal/validate"
)

type ProductHandler struct {
	Catalog  *services.CatalogService
	Sessions *services.SessionService
	Previews *services.PreviewService
}

const gone = "Este producto ya no está disponible"

// Detail is the configurator page. Opening it starts the session's preview.
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, gone)
	}
	p, err := h.Catalog.GetProduct(id)
	if errors.Is(err, repos.ErrNotFound) {
		return notFound(c, gone)
	}
	if err != nil {
		return err
	}

	sid := sessionID(c)
	st := h.Sessions.Select(sid, p)
	previewID, err := h.Previews.Open(sid, p)
	if err != nil {
		log.Error(c, "preview.open", err, map[string]any{"product": p.ID})
	}
	base, err := domain.ResolveColor(p.BaseColor)
	if err != nil {
		base = domain.Palette[0]
	}
	return renderState(c, st, fiber.Map{
		"Product":   p,
		"Palette":   domain.Palette,
		"Sizes":     domain.Sizes,
		"Color":     base,
		"PreviewID": previewID,
		"MaxQty":    validate.MaxQty,
	})
}
