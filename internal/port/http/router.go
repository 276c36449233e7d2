package http

import (
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *CartHandler, log logger.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.HandleHealth)

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.HandleGetCart)
		r.Delete("/", h.HandleClearCart)
		r.Post("/items/{productID}", h.HandleAddProduct)
		r.Put("/items/{productID}", h.HandleUpdateProductAmount)
		r.Delete("/items/{productID}", h.HandleRemoveProduct)
	})

	return r
}

// RequestLogger logs one line per request with its status and duration.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			defer func() {
				log.With(
					"request_id", middleware.GetReqID(r.Context()),
					"session", r.Header.Get(SessionHeader),
					"status", ww.Status(),
					"duration", time.Since(started),
				).Infof("%s %s", r.Method, r.URL.Path)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
