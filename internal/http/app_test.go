package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"ramdom/internal/config"
	"ramdom/internal/domain"
	"ramdom/internal/format"
	"ramdom/internal/http/handlers"
	"ramdom/internal/repos"
)

// testCatalog is the seeded catalog without remote decals, so previews never
// reach the network.
func testCatalog() []domain.Product {
	ps := repos.Catalog()
	for i := range ps {
		ps[i].Decal = ""
	}
	return ps
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.TemplatesDir = "../../web/templates"
	cfg.StaticDir = "../../web/static"
	cfg.TextureTimeout = 200 * time.Millisecond
	cfg.Preview.FPS = 30
	cfg.Preview.Width, cfg.Preview.Height = 96, 112
	return cfg
}

type testApp struct {
	app     *fiber.App
	db      *sqlx.DB
	deps    *handlers.Deps
	cookies map[string]string
}

// newApp wires the storefront through the same Register call main uses.
func newApp(t *testing.T, cfg config.Config) *testApp {
	t.Helper()
	db, err := repos.OpenDB(":memory:", testCatalog())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	app := fiber.New(fiber.Config{
		Views:        handlers.Views(cfg.TemplatesDir, format.NewMoney(cfg.Locale)),
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())

	deps := handlers.NewDeps(db, cfg)
	t.Cleanup(deps.Close)
	handlers.Register(app, deps)

	return &testApp{app: app, db: db, deps: deps, cookies: map[string]string{}}
}

func (a *testApp) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	for name, v := range a.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: v})
	}
	resp, err := a.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "csrf_" || c.Name == "sid" {
			a.cookies[c.Name] = c.Value
		}
	}
	return resp
}

func (a *testApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	return a.do(t, httptest.NewRequest("GET", path, nil))
}

// post sends a urlencoded form carrying the csrf token from an earlier GET.
func (a *testApp) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", a.cookies["csrf_"])
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req)
}

// start visits the gallery to pick up the session and csrf cookies.
func (a *testApp) start(t *testing.T) {
	t.Helper()
	resp := a.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("gallery: %d", resp.StatusCode)
	}
	if a.cookies["csrf_"] == "" || a.cookies["sid"] == "" {
		t.Fatalf("cookies missing: %v", a.cookies)
	}
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
