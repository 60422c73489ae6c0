package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/minhvub/coffeeshop-backend/api/controllers"
	"github.com/minhvub/coffeeshop-backend/api/middleware"
	ordersvc "github.com/minhvub/coffeeshop-backend/internal/orders"
	productsvc "github.com/minhvub/coffeeshop-backend/internal/products"
	promotionsvc "github.com/minhvub/coffeeshop-backend/internal/promotions"
	"github.com/minhvub/coffeeshop-backend/pkg/config"
	"github.com/minhvub/coffeeshop-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	cacheP controllers.Pinger,
	promotionService promotionsvc.Service,
	productService productsvc.Service,
	orderService ordersvc.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cacheP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/promotions", func(r chi.Router) {
			r.Get("/", controllers.ListPromotions(promotionService, logg))
			r.Get("/active", controllers.ListActivePromotions(promotionService, logg))
			r.Get("/{promotionId}", controllers.GetPromotion(promotionService, logg))
		})

		r.Post("/cart/quote", controllers.CartQuote(promotionService, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Get("/{productId}", controllers.GetProduct(productService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(orderService, logg))
			r.Get("/", controllers.ListOrders(orderService, logg))
			r.Get("/filter", controllers.FilterOrders(orderService, logg))
			r.Get("/stats/revenue", controllers.OrderRevenueStats(orderService, logg))
			r.Get("/{orderId}", controllers.GetOrder(orderService, logg))
			r.Patch("/{orderId}/status", controllers.UpdateOrderStatus(orderService, logg))
			r.Delete("/{orderId}", controllers.CancelOrder(orderService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.JWT, logg))

		r.Route("/promotions", func(r chi.Router) {
			r.Post("/", controllers.CreatePromotion(promotionService, logg))
			r.Put("/{promotionId}", controllers.UpdatePromotion(promotionService, logg))
			r.Delete("/{promotionId}", controllers.DeletePromotion(promotionService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(productService, logg))
			r.Put("/{productId}", controllers.UpdateProduct(productService, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(productService, logg))
		})
	})

	return r
}
