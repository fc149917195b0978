package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"ramdom/internal/domain"
	applog "ramdom/internal/log"
	"ramdom/internal/repos"
	"ramdom/internal/services"
	"ramdom/internal/state"
	"ramdom/internal/validate"
)

type CartHandler struct {
	Catalog  *services.CatalogService
	Sessions *services.SessionService
}

// Add takes the configurator form, or a one-click quick add from the gallery.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}

	req, err := h.request(c, productID)
	if errors.Is(err, repos.ErrNotFound) {
		return notFound(c, gone)
	}
	if err != nil {
		return err
	}

	it, err := h.Sessions.Add(sessionID(c), req)
	if err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "color"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid color")
	}
	applog.Audit(c, "cart.add", map[string]any{
		"product": it.Product.ID,
		"line":    it.ID,
		"qty":     it.Quantity,
		"color":   it.Color.Hex,
		"size":    string(it.Size),
	})
	return c.Redirect("/cart")
}

func (h *CartHandler) request(c *fiber.Ctx, productID string) (services.AddRequest, error) {
	if c.FormValue("quick") == "1" {
		return h.Catalog.QuickAdd(productID)
	}
	p, err := h.Catalog.GetProduct(productID)
	if err != nil {
		return services.AddRequest{}, err
	}
	req := services.AddRequest{Product: p, Quantity: validate.Qty(c.FormValue("qty")), ColorHex: p.BaseColor}
	if hex, ok := validate.Hex(c.FormValue("color")); ok {
		req.ColorHex = hex
	}
	if size, ok := domain.ParseSize(c.FormValue("size")); ok {
		req.Size = size
	}
	return req, nil
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	st := h.Sessions.Navigate(sessionID(c), state.CartView{})
	return renderState(c, st, nil)
}

func (h *CartHandler) UpdateQty(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "line"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid line")
	}
	h.Sessions.UpdateQuantity(sessionID(c), id, validate.Qty(c.FormValue("qty")))
	return c.Redirect("/cart")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "line"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid line")
	}
	h.Sessions.Remove(sessionID(c), id)
	return c.Redirect("/cart")
}
