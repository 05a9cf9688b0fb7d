package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bookhaven/bookshop/pkg/health"
	"github.com/bookhaven/bookshop/pkg/middleware"

	"github.com/bookhaven/bookshop/internal/cart"
	"github.com/bookhaven/bookshop/internal/catalog"
	"github.com/bookhaven/bookshop/internal/checkout"
	"github.com/bookhaven/bookshop/internal/wishlist"
)

// NewRouter creates a chi router with all bookshop routes registered.
func NewRouter(
	catalogStore *catalog.Store,
	carts *cart.Manager,
	wishlists *wishlist.Manager,
	checkoutSvc *checkout.Service,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("bookshop"))
	r.Use(middleware.Tracing("bookshop"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	bookHandler := NewBookHandler(catalogStore, logger)
	coverHandler := NewCoverHandler(catalogStore, logger)
	cartHandler := NewCartHandler(carts, catalogStore, logger)
	wishlistHandler := NewWishlistHandler(wishlists, catalogStore, logger)
	checkoutHandler := NewCheckoutHandler(checkoutSvc, carts, logger)

	// Catalog endpoints are public: no session is needed to browse.
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/books", bookHandler.ListBooks)
		r.Get("/books/{bookId}", bookHandler.GetBook)
		r.Get("/books/{bookId}/cover", coverHandler.GetCover)
		r.Get("/categories", bookHandler.ListCategories)
		r.Get("/price-ranges", bookHandler.ListPriceRanges)

		r.Route("/cart", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(SessionIDFromHeader)

			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{bookId}", cartHandler.UpdateItemQuantity)
			r.Delete("/items/{bookId}", cartHandler.RemoveItem)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(SessionIDFromHeader)

			r.Get("/", wishlistHandler.GetWishlist)
			r.Post("/", wishlistHandler.AddBook)
			r.Delete("/{bookId}", wishlistHandler.RemoveBook)
			r.Get("/contains/{bookId}", wishlistHandler.ContainsBook)
		})

		r.With(ContentTypeJSON, SessionIDFromHeader).
			Post("/checkout", checkoutHandler.PlaceOrder)
	})

	return r
}
