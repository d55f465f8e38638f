package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qrquicker/internal/http/handlers"
	"qrquicker/internal/middleware"
)

// NewRouter wires the public API. locales negotiates notification languages.
func NewRouter(app *handlers.App, locales middleware.LocaleResolver) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger),
		middleware.Recoverer(app.Logger),
		middleware.Metrics,
		middleware.CORS(app.Config.CORSAllowedOrigins),
		middleware.I18N(app.Config.DefaultLocale, locales),
	)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)
		r.Get("/preview", app.Preview)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
			r.Post("/qr-codes", app.CreateQrCode)
			r.Post("/decode", app.Decode)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", app.ListNotifications)
			r.Delete("/{slot}", app.DismissNotification)
		})

		r.Route("/gallery", func(r chi.Router) {
			r.Get("/", app.ListGallery)
			r.Get("/export", app.ExportGallery)
			r.Get("/{id}", app.GalleryImage)
		})
	})

	return r
}
