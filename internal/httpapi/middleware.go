package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/access"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// HeaderUserID — заголовок, в котором шлюз передаёт ID аутентифицированного пользователя.
const HeaderUserID = "X-User-ID"

// UserLookup находит пользователя по ID.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
}

// requestLogger пишет одну запись logrus на запрос.
func requestLogger(logger *log.Entry) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			entry := logger.WithFields(log.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  middleware.GetReqID(r.Context()),
				"remote_addr": r.RemoteAddr,
			})
			if ww.Status() >= http.StatusInternalServerError {
				entry.Warn("http request")
				return
			}
			entry.Info("http request")
		})
	}
}

// instrument записывает метрики по шаблону маршрута chi, а не по сырому пути,
// чтобы ID в URL не раздували кардинальность.
func instrument(m *metrics.HTTPMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.RequestStarted()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.RequestFinished(r.Method, route, status, time.Since(start))
		})
	}
}

// identify кладёт в контекст вызывающего по заголовку X-User-ID. Отсутствующий,
// некорректный или неизвестный ID даёт анонимного вызывающего.
func identify(users UserLookup, logger *log.Entry) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := access.Anonymous()

			if raw := strings.TrimSpace(r.Header.Get(HeaderUserID)); raw != "" {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err == nil && id > 0 {
					user, err := users.GetUser(r.Context(), id)
					switch {
					case err == nil:
						caller = access.FromUser(user)
					case domain.IsNotFound(err):
					default:
						responder{logger: logger}.respondError(w, r, err)
						return
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(access.WithCaller(r.Context(), caller)))
		})
	}
}
