package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/printforge/server/internal/http/handlers"
	"github.com/printforge/server/internal/middleware"
)

// NewRouter assembles the public HTTP surface. Generation is open to
// anonymous callers; history and downloads require a signed-in owner.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Log),
		middleware.CORS(app.Cfg.AllowedOrigins),
		middleware.I18N(app.Cfg.DefaultLocale, lookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/mockups/geometry", app.MockupGeometry)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(app.Cfg.RateLimitPerMin, time.Minute))
		r.Use(middleware.OptionalAuthJWT(app.Cfg.JWTSecret))
		r.Post("/v1/uploads/reference", app.UploadReference)
		r.Post("/v1/designs/generate", app.DesignsGenerate)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.Cfg.JWTSecret))
		r.Get("/v1/designs", app.DesignsList)
		r.Get("/v1/designs/{id}", app.DesignsGet)
		r.Get("/v1/designs/{id}/mockup", app.DesignMockup)
		r.Get("/v1/designs/{id}/download.zip", app.DesignDownload)
	})

	return r
}
