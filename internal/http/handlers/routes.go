package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "ramdom/internal/log"
)

const (
	checkoutPerMinute = 10
	previewPerMinute  = 1200
)

// ErrorHandler renders a friendly page for any error a handler returns,
// keeping the cause in the log only.
func ErrorHandler(c *fiber.Ctx, err error) error {
	applog.Error(c, "server.error", err, nil)
	if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
		"Message": "Algo salió mal. Probá de nuevo.",
	}); rerr != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Algo salió mal. Probá de nuevo.")
	}
	return nil
}

// Register installs the csrf and session middleware, every storefront and
// preview route, and the 404 fallback. Static assets and global middleware
// must be added before calling it.
func Register(app *fiber.App, d *Deps) {
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Falló el control de seguridad. Recargá la página e intentá de nuevo."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})
	app.Use(Session(d.Sessions))

	// Gallery & product pages
	app.Get("/", d.GalleryHandler.Home)
	app.Get("/product", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Este producto ya no está disponible"})
	})
	app.Get("/product/:id", d.ProductHandler.Detail)

	// Favorites
	app.Get("/favorites", d.FavoriteHandler.List)
	app.Post("/favorites", d.FavoriteHandler.Save)
	app.Post("/favorites/delete", d.FavoriteHandler.Unsave)

	// Cart & checkout
	app.Get("/cart", d.CartHandler.View)
	app.Post("/cart", d.CartHandler.Add)
	app.Post("/cart/:id/qty", d.CartHandler.UpdateQty)
	app.Post("/cart/:id/delete", d.CartHandler.Remove)
	app.Get("/checkout", d.CheckoutHandler.Form)
	app.Post("/checkout", limiter.New(limiter.Config{
		Max:        checkoutPerMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.checkout.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("notfound", fiber.Map{"Message": "Demasiados intentos. Esperá un momento."})
		},
	}), d.CheckoutHandler.Place)
	app.Get("/success", d.CheckoutHandler.Success)

	// Preview API
	api := app.Group("/api/v1")
	previewLimiter := limiter.New(limiter.Config{
		Max:        previewPerMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|preview"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.preview.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	preview := api.Group("/preview/:id", previewLimiter)
	preview.Get("/frame.png", d.PreviewHandler.Frame)
	preview.Post("/input", d.PreviewHandler.Input)
	preview.Post("/appearance", d.PreviewHandler.Appearance)
	preview.Post("/close", d.PreviewHandler.Close)
	preview.Delete("/", d.PreviewHandler.Close)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "sessions": d.Sessions.Len(), "previews": d.Previews.Active()})
	})
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Página no encontrada"})
	})
}
