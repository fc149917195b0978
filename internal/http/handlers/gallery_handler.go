package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"ramdom/internal/domain"
	applog "ramdom/internal/log"
	"ramdom/internal/repos"
	"ramdom/internal/services"
	"ramdom/internal/state"
	"ramdom/internal/validate"
)

type GalleryHandler struct {
	Catalog  *services.CatalogService
	Sessions *services.SessionService
	Favs     *services.FavoriteService
}

// Home is the gallery: filter labels, sort order, an optional name search and
// an optional quick view of one product.
func (h *GalleryHandler) Home(c *fiber.Ctx) error {
	st := h.Sessions.Navigate(sessionID(c), state.Gallery{})
	tag := c.Query("tag", domain.Tags[0])
	sort := domain.ParseSort(c.Query("sort"))
	data := fiber.Map{"Tags": domain.Tags, "Tag": tag, "Sort": string(sort), "Q": ""}

	var (
		products []domain.Product
		err      error
	)
	if rawQ := c.Query("q"); strings.TrimSpace(rawQ) != "" {
		q, ok := validate.Query(rawQ)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q"})
			data["Products"] = []domain.Product{}
			data["Favs"] = map[string]bool{}
			data["Err"] = "Buscá con letras o números"
			c.Status(fiber.StatusBadRequest)
			return renderState(c, st, data)
		}
		data["Q"] = q
		products, err = h.Catalog.Search(q)
	} else {
		products, err = h.Catalog.Gallery(tag, sort)
	}
	if err != nil {
		applog.Error(c, "gallery.load", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "No pudimos cargar el catálogo. Probá de nuevo."})
	}
	data["Products"] = products
	favs, err := h.Favs.Marked(sessionID(c))
	if err != nil {
		applog.Error(c, "favorites.mark", err, nil)
		favs = map[string]bool{}
	}
	data["Favs"] = favs

	if raw := c.Query("quick"); raw != "" {
		if id, ok := validate.ID(raw); ok {
			p, err := h.Catalog.GetProduct(id)
			switch {
			case err == nil:
				data["Quick"] = p
			case !errors.Is(err, repos.ErrNotFound):
				applog.Error(c, "gallery.quick", err, map[string]any{"product": id})
			}
		}
	}
	return renderState(c, st, data)
}
