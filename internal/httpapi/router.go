package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/LavishGent/productcache/internal/metrics"
	"github.com/LavishGent/productcache/internal/types"
)

// Catalog is the product service served by the router.
type Catalog interface {
	Get(ctx context.Context, id int64) (types.Product, error)
	Create(ctx context.Context, in types.NewProduct) (types.Product, error)
	Update(ctx context.Context, id int64, patch types.ProductPatch) (types.Product, error)
	Health(ctx context.Context) *types.HealthReport
}

// RouterOptions holds the optional collaborators of the router.
type RouterOptions struct {
	Logger *slog.Logger
	// Publisher receives one timing per request when set.
	Publisher types.Publisher
}

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(catalog Catalog, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{catalog: catalog, logger: logger.With("component", "http")}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(requestLogger(h.logger))
	router.Use(chimiddleware.Recoverer)
	if opts.Publisher != nil {
		router.Use(requestTimer(opts.Publisher))
	}

	router.Get("/healthz", h.liveness)
	router.Get("/readyz", h.readiness)

	router.Route("/products", func(r chi.Router) {
		r.Post("/", h.createProduct)
		r.Get("/{id}", h.getProduct)
		r.Put("/{id}", h.updateProduct)
	})

	return router
}

// requestLogger logs one line per request with its status and latency.
func requestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("http_request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"latency_ms", float64(time.Since(start).Microseconds())/1000.0,
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}

// requestTimer reports request latency tagged by route pattern and status.
func requestTimer(publisher types.Publisher) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			timer := metrics.NewTimer(publisher, "http.request", metrics.Tag("method", r.Method))
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			timer.StopWith(
				metrics.Tag("route", route),
				metrics.Tag("status", strconv.Itoa(ww.Status())),
			)
		})
	}
}
