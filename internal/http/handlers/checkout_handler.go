package handlers

import (
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"

	"ramdom/internal/checkout"
	applog "ramdom/internal/log"
	"ramdom/internal/services"
	"ramdom/internal/state"
)

type CheckoutHandler struct {
	Orders   *services.OrderService
	Sessions *services.SessionService
	Extended bool
}

func (h *CheckoutHandler) form(d checkout.Draft, errs checkout.FieldErrors) fiber.Map {
	return fiber.Map{
		"Draft":     d,
		"Errors":    errs,
		"Extended":  h.Extended,
		"Provinces": checkout.Provinces,
	}
}

func (h *CheckoutHandler) Form(c *fiber.Ctx) error {
	st, err := h.Orders.Begin(sessionID(c))
	if errors.Is(err, checkout.ErrEmptyCart) {
		return c.Redirect("/cart")
	}
	if err != nil {
		return err
	}
	return renderState(c, st, h.form(checkout.Draft{}, nil))
}

// Place validates the form, builds the order message and hands it off to the
// messaging app from the success page.
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	sid := sessionID(c)
	var d checkout.Draft
	if err := c.BodyParser(&d); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "form"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid form")
	}

	o, _, err := h.Orders.Place(sid, d)
	var fe checkout.FieldErrors
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		return c.Redirect("/cart")
	case errors.As(err, &fe):
		fields := make([]string, 0, len(fe))
		for k := range fe {
			fields = append(fields, k)
		}
		sort.Strings(fields)
		applog.Security(c, "validation.fail", map[string]any{"fields": fields})
		c.Status(fiber.StatusBadRequest)
		return renderState(c, h.Sessions.State(sid), h.form(d, fe))
	case err != nil:
		return err
	}

	applog.Audit(c, "order.handoff", map[string]any{
		"order": o.ID,
		"lines": o.Lines,
		"total": o.Total.String(),
	})
	return renderState(c, h.Sessions.State(sid), fiber.Map{"Order": o, "Link": o.Link})
}

// Success is reachable only right after a checkout.
func (h *CheckoutHandler) Success(c *fiber.Ctx) error {
	st := h.Sessions.State(sessionID(c))
	if _, ok := st.View.(state.Success); !ok {
		return c.Redirect("/")
	}
	return renderState(c, st, nil)
}
