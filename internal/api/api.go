// Package api exposes the HTTP surface: the public tracking endpoint,
// the bearer-protected admin JSON API, and the health probe.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/biolink/internal/store"
	"github.com/dmitrymomot/biolink/internal/track"
)

// Router builds the full route tree. adminToken guards the admin API;
// when empty, the admin routes are not mounted at all.
func Router(svc *track.Service, st store.ConfigStore, adminToken string, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(recoverer(log))

	r.Get("/healthz", handleHealthz)
	r.Post("/api/track", handleTrack(svc, log))

	if adminToken != "" {
		admin := &adminHandler{store: st, log: log}
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(requireBearer(adminToken))
			r.Route("/tenants", func(r chi.Router) {
				r.Get("/", admin.listTenants)
				r.Get("/{slug}", admin.getTenant)
				r.Put("/{slug}", admin.putTenant)
				r.Delete("/{slug}", admin.deleteTenant)
			})
			r.Route("/users", func(r chi.Router) {
				r.Get("/", admin.listUsers)
				r.Get("/{slug}", admin.getUser)
				r.Put("/{slug}", admin.putUser)
				r.Delete("/{slug}", admin.deleteUser)
			})
		})
	}

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// recoverer converts an unhandled panic into the JSON error envelope the
// rest of the API speaks, instead of a bare text 500.
func recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.ErrorContext(r.Context(), "panic recovered",
						slog.String("path", r.URL.Path),
						slog.Any("panic", rec))
					respondError(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]any{"ok": false, "error": msg})
}
