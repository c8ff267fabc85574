// Package api is the local HTTP surface of the storefront.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Services struct {
	Catalog  CatalogService
	Cart     CartService
	Shop     ShopService
	Checkout CheckoutService
	Sessions SessionService
}

// NewRouter mounts every route. requestTimeout bounds each handler, including the
// calls it makes to the ordering service.
func NewRouter(s Services, requestTimeout time.Duration) chi.Router {
	catalogHandler := NewCatalogHandler(s.Catalog, s.Shop, requestTimeout)
	cartHandler := NewCartHandler(s.Cart, s.Shop, requestTimeout)
	quantityHandler := NewQuantityHandler(s.Shop, requestTimeout)
	checkoutHandler := NewCheckoutHandler(s.Checkout, requestTimeout)
	sessionHandler := NewSessionHandler(s.Sessions, requestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", catalogHandler.GetCatalog)
			r.Get("/{category_id}", catalogHandler.GetCategory)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Delete("/items/{sub_id}", cartHandler.RemoveItem)
		})
		r.Route("/quantities/{sub_id}", func(r chi.Router) {
			r.Get("/", quantityHandler.Get)
			r.Put("/", quantityHandler.Set)
			r.Post("/increase", quantityHandler.Increase)
			r.Post("/decrease", quantityHandler.Decrease)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.Status)
			r.Post("/", checkoutHandler.Submit)
		})
		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.Get)
			r.Delete("/", sessionHandler.Logout)
			r.Post("/login", sessionHandler.Login)
			r.Post("/register", sessionHandler.Register)
		})
	})

	return r
}

// NewHandler wraps the router with OpenTelemetry server instrumentation.
func NewHandler(s Services, requestTimeout time.Duration) http.Handler {
	return otelhttp.NewHandler(NewRouter(s, requestTimeout), "storefront")
}
