package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handlers struct {
	Checkout *CheckoutHandler
	Cart     *CartHandler
	Orders   *OrdersHandler
	Products *ProductHandler
	Auth     *AuthHandler
	Support  *SupportHandler
}

// NewRouter mounts every storefront route behind the shared middleware stack.
// jwtSecret verifies shopper tokens; see NewAuthMiddleware.
func NewRouter(hs Handlers, logger *zap.Logger, timeout time.Duration, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))
	r.Use(NewAuthMiddleware(jwtSecret))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", hs.Checkout.Start)
			r.Route("/{session_id}", func(r chi.Router) {
				r.Get("/", hs.Checkout.Get)
				r.Post("/items/{index}/quantity", hs.Checkout.ChangeQuantity)
				r.Put("/items/{index}/size", hs.Checkout.ChangeSize)
				r.Delete("/items/{index}", hs.Checkout.Deselect)
				r.Post("/step", hs.Checkout.Navigate)
				r.Put("/shipping", hs.Checkout.UpdateShipping)
				r.Put("/payment", hs.Checkout.SelectPayment)
				r.Post("/submit", hs.Checkout.Submit)
				r.Post("/payment/callback", hs.Checkout.PaymentCallback)
				r.Post("/confirmation/close", hs.Checkout.CloseConfirmation)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", hs.Cart.GetCart)
			r.Post("/", hs.Cart.AddItem)
			r.Put("/items/{product_id}/{size}", hs.Cart.UpdateItem)
			r.Delete("/items/{product_id}/{size}", hs.Cart.RemoveItem)
		})
		r.Get("/favorites", hs.Cart.GetFavorites)
		r.Post("/favorites/{product_id}/toggle", hs.Cart.ToggleFavorite)

		r.Get("/orders", hs.Orders.List)
		r.Get("/orders/{order_id}", hs.Orders.Get)

		r.Get("/products", hs.Products.List)
		r.Get("/products/{product_id}", hs.Products.Get)
		r.Get("/categories", hs.Products.Categories)
		r.Get("/categories/{category_id}", hs.Products.Category)

		r.Post("/contact", hs.Support.Contact)
		r.Get("/color-analysis", hs.Support.ColorProfile)
		r.Post("/color-analysis", hs.Support.AnalyzeColors)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/check-user", hs.Auth.CheckUser)
			r.Post("/register", hs.Auth.Register)
			r.Post("/verify-otp", hs.Auth.VerifyOTP)
			r.Post("/login", hs.Auth.Login)
			r.Get("/user", hs.Auth.CurrentUser)
			r.Put("/user", hs.Auth.UpdateUser)
		})
	})

	return r
}
