package handlers

import (
	"github.com/jmoiron/sqlx"

	"ramdom/internal/assets"
	"ramdom/internal/checkout"
	"ramdom/internal/config"
	"ramdom/internal/format"
	applog "ramdom/internal/log"
	"ramdom/internal/repos"
	"ramdom/internal/services"
	"ramdom/internal/state"
)

type Deps struct {
	GalleryHandler  *GalleryHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	PreviewHandler  *PreviewHandler
	FavoriteHandler *FavoriteHandler

	Sessions *services.SessionService
	Previews *services.PreviewService
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	prodRepo := repos.NewProductRepo(db)
	loader := assets.NewLoader(assets.Options{Timeout: cfg.TextureTimeout, Root: cfg.StaticDir})

	catalogSvc := services.NewCatalogService(prodRepo)
	favSvc := services.NewFavoriteService(repos.NewFavoriteRepo(db), prodRepo)
	sessions := services.NewSessionService(cfg.Profile)
	previews := services.NewPreviewService(services.PreviewOptions{
		FPS:         cfg.Preview.FPS,
		Width:       cfg.Preview.Width,
		Height:      cfg.Preview.Height,
		IdleTimeout: cfg.Preview.IdleTimeout,
		Damping:     cfg.Profile.Damping(),
	}, loader)
	orderSvc := services.NewOrderService(sessions, checkout.Options{
		Host:      cfg.Messaging.Host,
		Phone:     cfg.Messaging.Phone,
		StoreName: cfg.Messaging.StoreName,
		Money:     format.NewMoney(cfg.Locale),
	}, cfg.Profile.ExtendedFields())

	// leaving the details view releases the session's preview
	sessions.Watch(state.SliceView, func(sid string, _, next state.State) {
		if _, ok := next.View.(state.Details); !ok {
			previews.CloseSession(sid)
		}
	})
	sessions.Watch(state.SliceCart, func(sid string, _, next state.State) {
		applog.Event("cart.change", map[string]any{
			"sid":   sid,
			"lines": next.Cart.Len(),
			"units": next.Cart.Count(),
			"total": next.Cart.Total().String(),
		})
	})

	sessions.OnDrop(func(sid string) {
		previews.CloseSession(sid)
		if err := favSvc.Forget(sid); err != nil {
			applog.Fail("favorites.forget", err, map[string]any{"sid": sid})
		}
	})

	return &Deps{
		GalleryHandler:  &GalleryHandler{Catalog: catalogSvc, Sessions: sessions, Favs: favSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc, Sessions: sessions, Previews: previews},
		CartHandler:     &CartHandler{Catalog: catalogSvc, Sessions: sessions},
		CheckoutHandler: &CheckoutHandler{Orders: orderSvc, Sessions: sessions, Extended: cfg.Profile.ExtendedFields()},
		PreviewHandler:  &PreviewHandler{Previews: previews},
		FavoriteHandler: &FavoriteHandler{Favs: favSvc, Sessions: sessions},
		Sessions:        sessions,
		Previews:        previews,
	}
}

// Close stops the preview loops.
func (d *Deps) Close() { d.Previews.Shutdown() }
