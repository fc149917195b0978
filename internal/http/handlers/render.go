package handlers

import (
	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"ramdom/internal/format"
	"ramdom/internal/state"
)

// Views is the template engine with the price helpers the pages use.
func Views(dir string, money format.Money) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFunc("price", money.Price)
	engine.AddFunc("amount", money.Format)
	return engine
}

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		// Locals is empty on the request that first sets the cookie
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

// page maps a view to its template.
type page struct {
	tmpl string
	data fiber.Map
}

func (p *page) Gallery(state.Gallery) error { p.tmpl = "gallery"; return nil }

func (p *page) Details(d state.Details) error {
	p.tmpl = "product"
	p.data["ProductID"] = d.ProductID
	return nil
}

func (p *page) Cart(state.CartView) error   { p.tmpl = "cart"; return nil }
func (p *page) Checkout(state.Checkout) error { p.tmpl = "checkout"; return nil }
func (p *page) Success(state.Success) error   { p.tmpl = "success"; return nil }

// renderState renders the session's current view with the header data every
// page shares.
func renderState(c *fiber.Ctx, st state.State, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	p := &page{data: data}
	if err := st.View.Accept(p); err != nil {
		return err
	}
	data["View"] = st.View.Name()
	data["Cart"] = st.Cart
	data["CartCount"] = st.Cart.Count()
	return render(c, p.tmpl, data)
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg})
}
