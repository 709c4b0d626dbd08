// Package httpapi содержит HTTP-интерфейс каталога: маршруты chi, обработчики
// по одному на операцию и общие middleware.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
)

const defaultRequestTimeout = 30 * time.Second

// RouterConfig задаёт зависимости и параметры HTTP API.
type RouterConfig struct {
	Service        *catalog.Service
	Logger         *log.Entry
	Metrics        *metrics.HTTPMetrics
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// NewRouter собирает chi-роутер со всеми маршрутами каталога.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	base := responder{logger: logger}
	products := &ProductHandler{responder: base, service: cfg.Service}
	categories := &CategoryHandler{responder: base, service: cfg.Service}
	carts := &CartHandler{responder: base, service: cfg.Service}
	users := &UserHandler{responder: base, service: cfg.Service}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(instrument(cfg.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", HeaderUserID},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(identify(cfg.Service, logger))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		base.writeError(w, http.StatusNotFound, msgRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		base.writeError(w, http.StatusMethodNotAllowed, msgNotAllowed)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", products.List)
		r.Post("/", products.Create)
		r.Get("/{id}", products.Get)
		r.Put("/{id}", products.Update)
		r.Delete("/{id}", products.Delete)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", categories.List)
		r.Post("/", categories.Create)
		r.Get("/{id}", categories.Get)
		r.Put("/{id}", categories.Update)
		r.Delete("/{id}", categories.Delete)
	})

	r.Route("/carts", func(r chi.Router) {
		r.Post("/", carts.Create)
		r.Get("/{id}", carts.Get)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", users.Create)
		r.Get("/{id}", users.Get)
	})

	return r
}
