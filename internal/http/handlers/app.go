package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/printforge/server/internal/db"
	"github.com/printforge/server/internal/designgen"
	"github.com/printforge/server/internal/domain"
	"github.com/printforge/server/internal/infra"
	"github.com/printforge/server/internal/middleware"
	"github.com/printforge/server/internal/mockup"
	"github.com/printforge/server/internal/storage"
)

// ObjectStore is the storage surface the handlers need on top of the
// pipeline's write-side contract. *storage.ObjectStore satisfies it.
type ObjectStore interface {
	designgen.ObjectStore
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	ParseOwnedURL(rawURL string) (bucket, key string, ok bool)
}

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Cfg        *infra.Config
	Log        infra.Logger
	Q          *db.Queries
	Pipeline   *designgen.Pipeline
	Compositor *mockup.Compositor
	Store      ObjectStore
	Fetcher    *storage.HTTPFetcher
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, map[string]string{"error": errCode, "message": msg})
}

// domainError maps a pipeline or repository error onto the wire. The
// sentinel decides the status; the message carries the detail.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrGeneration):
		a.error(w, http.StatusBadGateway, "generation_failed", err.Error())
	case errors.Is(err, domain.ErrStorage):
		a.error(w, http.StatusBadGateway, "storage_failed", err.Error())
	case errors.Is(err, domain.ErrConfiguration):
		a.Log.Error().Err(err).Msg("configuration error")
		a.error(w, http.StatusInternalServerError, "internal", "service misconfigured")
	default:
		a.Log.Error().Err(err).Msg("unhandled error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
