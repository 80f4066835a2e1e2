package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/biolink/internal/store"
	"github.com/dmitrymomot/biolink/pkg/sanitizer"
)

// requireBearer rejects requests whose Authorization header does not carry
// the expected token. Constant-time comparison keeps the token from being
// probed byte by byte.
func requireBearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type adminHandler struct {
	store store.ConfigStore
	log   *slog.Logger
}

func (h *adminHandler) listTenants(w http.ResponseWriter, r *http.Request) {
	slugs, err := h.store.ListTenants(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "tenants": slugs})
}

func (h *adminHandler) getTenant(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.GetTenant(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "config": cfg})
}

func (h *adminHandler) putTenant(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	cfg, ok := decodeConfig(w, r)
	if !ok {
		return
	}
	// Tenant records never point at another tenant.
	cfg.Tenant = ""
	if err := h.store.SetTenant(r.Context(), slug, cfg); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *adminHandler) deleteTenant(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTenant(r.Context(), chi.URLParam(r, "slug")); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *adminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	slugs, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "users": slugs})
}

func (h *adminHandler) getUser(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.GetUser(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "config": cfg})
}

func (h *adminHandler) putUser(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	cfg, ok := decodeConfig(w, r)
	if !ok {
		return
	}
	if cfg.Tenant != "" {
		if _, err := h.store.GetTenant(r.Context(), cfg.Tenant); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				err = fmt.Errorf("%w: %q", store.ErrUnknownTenant, cfg.Tenant)
			}
			h.fail(w, r, err)
			return
		}
	}
	if err := h.store.SetUser(r.Context(), slug, cfg); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *adminHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteUser(r.Context(), chi.URLParam(r, "slug")); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// decodeConfig parses the request body and sanitizes every field that
// carries tenant-supplied HTML. This is the single choke point between
// the admin API and persisted markup.
func decodeConfig(w http.ResponseWriter, r *http.Request) (*store.Config, bool) {
	cfg := new(store.Config)
	if err := json.NewDecoder(r.Body).Decode(cfg); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	for i, bundle := range cfg.CustomBundles {
		cfg.CustomBundles[i] = sanitizer.Sanitize(bundle)
	}
	if cfg.CustomHead != "" {
		cfg.CustomHead = sanitizer.Sanitize(cfg.CustomHead)
	}
	if cfg.CustomBodyEnd != "" {
		cfg.CustomBodyEnd = sanitizer.Sanitize(cfg.CustomBodyEnd)
	}
	return cfg, true
}

func (h *adminHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrUnknownTenant):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrDefaultTenantProtected):
		respondError(w, http.StatusForbidden, err.Error())
	default:
		h.log.ErrorContext(r.Context(), "admin operation failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
