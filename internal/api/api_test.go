package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/biolink/internal/api"
	"github.com/dmitrymomot/biolink/internal/dedup"
	"github.com/dmitrymomot/biolink/internal/owner"
	"github.com/dmitrymomot/biolink/internal/provider"
	"github.com/dmitrymomot/biolink/internal/store"
	"github.com/dmitrymomot/biolink/internal/track"
)

const adminToken = "test-admin-token"

func newTestRouter(t *testing.T) (http.Handler, store.ConfigStore) {
	t.Helper()

	st, err := store.NewJSONFile(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)

	// Providers point at a black-hole server; handler behavior must not
	// depend on provider outcomes.
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(sink.Close)

	client := provider.NewClient()
	svc := track.NewService(
		owner.NewResolver(st),
		dedup.NewMemory(16),
		provider.NewMeta(client, sink.URL),
		provider.NewGA4(client, sink.URL),
		provider.NewTikTok(client, sink.URL),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return api.Router(svc, st, adminToken, slog.New(slog.NewTextHandler(io.Discard, nil))), st
}

func doJSON(t *testing.T, h http.Handler, method, path, token, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec.Code, decoded
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)
	code, body := doJSON(t, h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestTrackEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("acks valid beacon", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestRouter(t)
		code, body := doJSON(t, h, http.MethodPost, "/api/track",
			"", `{"name":"LinkClick","event_id":"evt-1","url":"https://x.test/"}`)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, "evt-1", body["event_id"])
		assert.NotContains(t, body, "deduplicated")
	})

	t.Run("generates event id when absent", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestRouter(t)
		code, body := doJSON(t, h, http.MethodPost, "/api/track", "", `{}`)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, true, body["ok"])
		assert.NotEmpty(t, body["event_id"])
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestRouter(t)
		code, body := doJSON(t, h, http.MethodPost, "/api/track", "", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, false, body["ok"])
		assert.NotEmpty(t, body["error"])
	})

	t.Run("flags duplicate beacons", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestRouter(t)
		beacon := `{"name":"LinkClick","event_id":"evt-dup","url":"https://x.test/"}`

		code, body := doJSON(t, h, http.MethodPost, "/api/track", "", beacon)
		assert.Equal(t, http.StatusOK, code)
		assert.NotContains(t, body, "deduplicated")

		code, body = doJSON(t, h, http.MethodPost, "/api/track", "", beacon)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, true, body["deduplicated"])
	})
}

func TestAdminAuth(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t)

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()
		code, body := doJSON(t, h, http.MethodGet, "/api/admin/tenants", "", "")
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, false, body["ok"])
	})

	t.Run("wrong token", func(t *testing.T) {
		t.Parallel()
		code, _ := doJSON(t, h, http.MethodGet, "/api/admin/tenants", "nope", "")
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()
		code, body := doJSON(t, h, http.MethodGet, "/api/admin/tenants", adminToken, "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, true, body["ok"])
	})
}

func TestAdminTenants(t *testing.T) {
	t.Parallel()

	t.Run("put then get round trip", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestRouter(t)
		code, _ := doJSON(t, h, http.MethodPut, "/api/admin/tenants/acme", adminToken,
			`{"theme":"emerald","links":[{"title":"Shop","url":"https://shop.acme.test"}]}`)
		require.Equal(t, http.StatusOK, code)

		code, body := doJSON(t, h, http.MethodGet, "/api/admin/tenants/acme", adminToken, "")
		require.Equal(t, http.StatusOK, code)
		cfg := body["config"].(map[string]any)
		assert.Equal(t, "emerald", cfg["theme"])
	})

	t.Run("custom markup sanitized on save", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestRouter(t)
		code, _ := doJSON(t, h, http.MethodPut, "/api/admin/tenants/acme", adminToken,
			`{"customHead":"<script src=\"https://cdn.test/a.js\"></script>",`+
				`"customBundles":["<img src=\"https://x.test/p.gif\" onerror=\"alert(1)\">"]}`)
		require.Equal(t, http.StatusOK, code)

		code, body := doJSON(t, h, http.MethodGet, "/api/admin/tenants/acme", adminToken, "")
		require.Equal(t, http.StatusOK, code)
		cfg := body["config"].(map[string]any)

		head := cfg["customHead"].(string)
		assert.Contains(t, head, `src="https://cdn.test/a.js"`)

		bundles := cfg["customBundles"].([]any)
		require.Len(t, bundles, 1)
		bundle := bundles[0].(string)
		assert.Contains(t, bundle, `src="https://x.test/p.gif"`)
		assert.NotContains(t, bundle, "onerror")
	})

	t.Run("default tenant cannot be deleted", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestRouter(t)
		code, _ := doJSON(t, h, http.MethodDelete, "/api/admin/tenants/default", adminToken, "")
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("missing tenant is 404", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestRouter(t)
		code, _ := doJSON(t, h, http.MethodGet, "/api/admin/tenants/ghost", adminToken, "")
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestAdminUsers(t *testing.T) {
	t.Parallel()

	t.Run("user save requires existing tenant", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestRouter(t)
		code, body := doJSON(t, h, http.MethodPut, "/api/admin/users/alice", adminToken,
			`{"tenant":"ghost"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, false, body["ok"])
		assert.Contains(t, body["error"], "unknown tenant")
	})

	t.Run("user under known tenant round trips", func(t *testing.T) {
		t.Parallel()

		h, st := newTestRouter(t)
		require.NoError(t, st.SetTenant(context.Background(), "acme", store.DefaultConfig()))

		code, _ := doJSON(t, h, http.MethodPut, "/api/admin/users/alice", adminToken,
			`{"tenant":"acme","profile":{"displayName":"Alice"}}`)
		require.Equal(t, http.StatusOK, code)

		code, body := doJSON(t, h, http.MethodGet, "/api/admin/users/alice", adminToken, "")
		require.Equal(t, http.StatusOK, code)
		cfg := body["config"].(map[string]any)
		assert.Equal(t, "acme", cfg["tenant"])

		code, body = doJSON(t, h, http.MethodGet, "/api/admin/users", adminToken, "")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, []any{"alice"}, body["users"])
	})

	t.Run("delete user", func(t *testing.T) {
		t.Parallel()

		h, st := newTestRouter(t)
		require.NoError(t, st.SetUser(context.Background(), "bob", store.DefaultConfig()))

		code, _ := doJSON(t, h, http.MethodDelete, "/api/admin/users/bob", adminToken, "")
		require.Equal(t, http.StatusOK, code)

		code, _ = doJSON(t, h, http.MethodGet, "/api/admin/users/bob", adminToken, "")
		assert.Equal(t, http.StatusNotFound, code)
	})
}
