package tenants

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canopy/pkg/logger"
)

func TestHTTPDirectoryFindByHostCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tenants/current", r.URL.Path)
		if r.Header.Get("X-Forwarded-Host") != "custom.biz" {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "tenant not found"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tenant": map[string]any{"id": "t1", "slug": "acme", "name": "Acme", "customDomain": "custom.biz"},
		})
	}))
	defer srv.Close()

	dir := NewHTTPDirectory(srv.URL, time.Second, logger.Nop())

	got, err := dir.FindByHostCandidate(context.Background(), "custom.biz")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Slug)
	assert.Equal(t, "custom.biz", got.CustomDomain)

	_, err = dir.FindByHostCandidate(context.Background(), "unknown.biz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPDirectoryFindBySlug(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tenants/slug/acme", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"tenant": map[string]any{"id": "t1", "slug": "acme"}})
	}))
	defer srv.Close()

	dir := NewHTTPDirectory(srv.URL, time.Second, logger.Nop())
	got, err := dir.FindBySlug(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
}

func TestHTTPDirectoryFailuresAreNotFound(t *testing.T) {
	// Malformed body.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	dir := NewHTTPDirectory(srv.URL, time.Second, logger.Nop())
	_, err := dir.FindByHostCandidate(context.Background(), "custom.biz")
	assert.ErrorIs(t, err, ErrNotFound)
	srv.Close()

	// Connection refused (server already closed).
	_, err = dir.FindByHostCandidate(context.Background(), "custom.biz")
	assert.ErrorIs(t, err, ErrNotFound)

	// Slow upstream beyond the client timeout.
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer slow.Close()
	dir = NewHTTPDirectory(slow.URL, 10*time.Millisecond, logger.Nop())
	_, err = dir.FindByHostCandidate(context.Background(), "custom.biz")
	assert.ErrorIs(t, err, ErrNotFound)
}
