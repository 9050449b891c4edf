package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nevbird/storefront-api/api/controllers"
	"github.com/nevbird/storefront-api/api/middleware"
	cartsvc "github.com/nevbird/storefront-api/internal/cart"
	"github.com/nevbird/storefront-api/internal/catalog"
	checkoutsvc "github.com/nevbird/storefront-api/internal/checkout"
	"github.com/nevbird/storefront-api/pkg/config"
	"github.com/nevbird/storefront-api/pkg/logger"
	"github.com/nevbird/storefront-api/pkg/metrics"
	"github.com/nevbird/storefront-api/pkg/redis"
)

// RouterParams carries everything the HTTP surface depends on. RedisClient
// may be nil in memory-only deployments.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	RedisClient *redis.Client
	Catalog     *catalog.Service
	CartManager *cartsvc.Manager
	Checkout    *checkoutsvc.Service
	Metrics     *metrics.HTTPMetrics
	Registry    *prometheus.Registry
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.Metrics(p.Metrics),
		middleware.CORS(p.Config.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, readyPinger(p.RedisClient)))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(p.Catalog, p.Logger))
			r.Get("/categories", controllers.ProductsCategories(p.Catalog))
			r.Get("/{slug}", controllers.ProductBySlug(p.Catalog, p.Logger))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(p.Config.Cart, p.Logger))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(p.CartManager, p.Catalog, p.Logger))
				r.Delete("/", controllers.CartClear(p.CartManager, p.Catalog, p.Logger))
				r.Route("/items", func(r chi.Router) {
					r.Post("/", controllers.CartAddItem(p.CartManager, p.Catalog, p.Logger))
					r.Patch("/{productID}", controllers.CartUpdateItem(p.CartManager, p.Catalog, p.Logger))
					r.Delete("/{productID}", controllers.CartRemoveItem(p.CartManager, p.Catalog, p.Logger))
				})
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/quote", controllers.CheckoutQuote(p.Checkout, p.CartManager, p.Logger))
				r.Post("/quote", controllers.CheckoutQuote(p.Checkout, p.CartManager, p.Logger))
				r.Post("/", controllers.CheckoutSubmit(p.Checkout, p.CartManager, p.Logger))
			})
		})
	})

	return r
}

// readyPinger avoids handing a typed nil to the readiness probe.
func readyPinger(client *redis.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}
