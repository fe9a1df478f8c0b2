package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/caraccessories-storefront/api/controllers"
	"github.com/angelmondragon/caraccessories-storefront/api/middleware"
	"github.com/angelmondragon/caraccessories-storefront/internal/app"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
)

// NewRouter mounts the gateway the page layer talks to. A nil registry
// disables /metrics and the request histogram.
func NewRouter(a *app.App, logg *logger.Logger, reg *prometheus.Registry) http.Handler {
	cfg := a.Config
	r := chi.NewRouter()

	var httpMetrics *middleware.HTTPMetrics
	if reg != nil {
		httpMetrics = middleware.NewHTTPMetrics(reg)
	}
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Gateway.CORSOrigins),
		httpMetrics.Handler,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, a.Store, a.Auth))
	})
	if reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", controllers.SessionFetch(a.Auth))
			r.Post("/login", controllers.SessionLogin(a.Auth, logg))
			r.Post("/register", controllers.SessionRegister(a.Auth, logg))
			r.Post("/logout", controllers.SessionLogout(a.Auth))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(a.Client, logg))
			r.Get("/{productId}", controllers.ProductDetail(a.Client, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(a.Cart, a.Checkout))
			r.Delete("/", controllers.CartClear(a.Cart, a.Checkout))
			r.Post("/items", controllers.CartAdd(a.Shop, a.Cart, a.Checkout, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateQuantity(a.Cart, a.Checkout, logg))
			r.Delete("/items/{productId}", controllers.CartRemove(a.Cart, a.Checkout, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutFetch(a.Checkout))
			r.Post("/", controllers.CheckoutSubmit(a.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(a.Orders, logg))
			r.Get("/last", controllers.LastOrderFetch(a.Checkout, logg))
			r.Delete("/last", controllers.LastOrderClear(a.Checkout))
			r.Get("/{orderId}", controllers.OrderDetail(a.Orders, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/products", controllers.AdminProducts(a.Admin, logg))
			r.Post("/products", controllers.AdminCreateProduct(a.Admin, logg))
			r.Delete("/products/{productId}", controllers.AdminDeleteProduct(a.Admin, logg))
			r.Get("/orders", controllers.AdminOrders(a.Admin, logg))
			r.Get("/orders/pending", controllers.AdminPendingOrders(a.Admin, logg))
			r.Get("/users", controllers.AdminUsers(a.Admin, logg))
			r.Delete("/users/{userId}", controllers.AdminDeleteUser(a.Admin, logg))
		})

		r.Route("/ui", func(r chi.Router) {
			r.Post("/open-login", controllers.UIOpenLogin(a.Bus))
			r.Post("/open-register", controllers.UIOpenRegister(a.Bus))
		})
		r.Get("/events", controllers.Events(a.Bus, logg))
	})

	return r
}
