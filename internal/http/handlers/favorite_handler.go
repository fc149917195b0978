package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "ramdom/internal/log"
	"ramdom/internal/repos"
	"ramdom/internal/services"
	"ramdom/internal/validate"
)

type FavoriteHandler struct {
	Favs     *services.FavoriteService
	Sessions *services.SessionService
}

func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	sid := sessionID(c)
	items, err := h.Favs.List(sid)
	if err != nil {
		applog.Error(c, "favorites.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "No pudimos cargar tus favoritos"})
	}
	return render(c, "favorites", fiber.Map{"Items": items, "CartCount": h.Sessions.State(sid).Cart.Count()})
}

func (h *FavoriteHandler) Save(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	err := h.Favs.Save(sessionID(c), pid)
	if errors.Is(err, repos.ErrNotFound) {
		return notFound(c, gone)
	}
	if err != nil {
		applog.Error(c, "favorites.save.fail", err, map[string]any{"product": pid})
		return c.Status(fiber.StatusInternalServerError).SendString("No pudimos guardar el favorito")
	}
	applog.Audit(c, "favorites.save", map[string]any{"product": pid})
	return c.Redirect(back(c))
}

func (h *FavoriteHandler) Unsave(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	if err := h.Favs.Unsave(sessionID(c), pid); err != nil {
		applog.Error(c, "favorites.unsave.fail", err, map[string]any{"product": pid})
		return c.Status(fiber.StatusInternalServerError).SendString("No pudimos quitar el favorito")
	}
	applog.Audit(c, "favorites.unsave", map[string]any{"product": pid})
	return c.Redirect(back(c))
}

// back is the local page the form came from; anything else goes to /favorites.
func back(c *fiber.Ctx) string {
	b := c.FormValue("back")
	if !strings.HasPrefix(b, "/") || strings.HasPrefix(b, "//") || strings.Contains(b, `\`) {
		return "/favorites"
	}
	return b
}
