// Package httpapi is the HTTP surface of the engine. Identity arrives as
// gateway-injected headers; handlers translate between JSON DTOs and the
// services, and the services own all business rules.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Offers   *OffersHandler
	Orders   *OrdersHandler
}

func NewRouter(h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(IdentityMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Post("/sync", h.Cart.SyncCart)
		})

		r.Post("/checkout", h.Checkout.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.Orders.ListOrders)
			r.Get("/{order_id}", h.Orders.GetOrder)
		})
		r.Patch("/dashboard/orders/{order_id}", h.Orders.UpdateOrderStatus)

		r.Route("/offers", func(r chi.Router) {
			r.Post("/", h.Offers.CreateOffer)
			r.Get("/", h.Offers.ListOffers)
			r.Get("/{offer_id}", h.Offers.GetOffer)
			r.Patch("/{offer_id}", h.Offers.UpdateOffer)
		})
	})

	return r
}
