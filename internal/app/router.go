package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/optomall/optomall/internal/auth"
	"github.com/optomall/optomall/internal/currency"
	"github.com/optomall/optomall/internal/imageproxy"
	"github.com/optomall/optomall/internal/marketplace"
	"github.com/optomall/optomall/internal/orders"
	"github.com/optomall/optomall/internal/shop"
	"github.com/optomall/optomall/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	MarketplaceHandler *marketplace.Handler
	ImageProxy         *imageproxy.Proxy
	ShopHandler        *shop.Handler
	CurrencyHandler    *currency.Handler
	OrdersHandler      *orders.Handler
	AdminGate          *auth.Admin
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with storefront defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/alibaba", func(r chi.Router) {
		params.MarketplaceHandler.MountRoutes(r)
		r.Get("/image", params.ImageProxy.Handle)
	})

	r.Route("/api/shop", func(r chi.Router) {
		r.Use(shop.SessionMiddleware(
			params.Config.SessionCookie,
			params.Config.SessionTTL,
			params.Config.IsProduction(),
		))
		params.ShopHandler.MountRoutes(r)
	})

	r.Route("/api/currency", params.CurrencyHandler.MountRoutes)

	r.Route("/api/webhooks", params.OrdersHandler.MountWebhookRoutes)

	if params.AdminGate != nil && params.AdminGate.Enabled() {
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(params.AdminGate.Require)
			params.OrdersHandler.MountAdminRoutes(r)
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	}

	if params.Config.MediaDir != "" {
		fileServer := http.StripPrefix("/media/", http.FileServer(http.Dir(params.Config.MediaDir)))
		r.Get("/media/*", fileServer.ServeHTTP)
	}

	return r
}
