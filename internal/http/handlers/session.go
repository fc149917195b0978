package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	applog "ramdom/internal/log"
	"ramdom/internal/services"
	"ramdom/internal/validate"
)

const sidCookie = "sid"

// Session makes sure every request carries a session id and exposes it to
// handlers and the logger through Locals. Only ids this process issued are
// honoured; anything else is replaced with a fresh one.
func Session(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(sidCookie)
		sid, ok := validate.ID(raw)
		if !ok || !sessions.Known(sid) {
			if raw != "" {
				applog.Security(c, "session.reissue", nil)
			}
			sid = uuid.NewString()
			sessions.Store(sid)
			c.Cookie(&fiber.Cookie{
				Name:     sidCookie,
				Value:    sid,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
				Secure:   false, // enable true behind TLS
			})
		}
		c.Locals("sid", sid)
		return c.Next()
	}
}

func sessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals("sid").(string)
	return sid
}
