package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	rec := get(t, s, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "uptime")

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		assert.Equal(t, http.StatusMethodNotAllowed, get(t, s, method, "/api/health").Code, method)
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	s := New(Config{})
	assert.Equal(t, http.StatusNotFound, get(t, s, http.MethodGet, "/api/gestures").Code)
}

func TestServer_StaticDir(t *testing.T) {
	dir := t.TempDir()
	index := "<html><body>mudra</body></html>"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(index), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("connect()"), 0644))

	s := New(Config{StaticDir: dir})

	tests := []struct {
		path string
		code int
		body string
	}{
		{"/", http.StatusOK, index},
		{"/app.js", http.StatusOK, "connect()"},
		{"/missing.css", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, s, http.MethodGet, tt.path)
			assert.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}

	t.Run("api routes win over static files", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(t, s, http.MethodGet, "/api/health").Code)
	})
}

func TestServer_NoStaticDir(t *testing.T) {
	s := New(Config{})
	assert.Equal(t, http.StatusNotFound, get(t, s, http.MethodGet, "/").Code)
}

func TestServer_ShutdownBeforeListen(t *testing.T) {
	hub := NewEventHub()
	s := New(Config{Events: hub})

	require.NoError(t, s.Shutdown(context.Background()))
	// Closing twice is harmless.
	require.NoError(t, s.Shutdown(context.Background()))
}

func TestServer_ListenAndShutdown(t *testing.T) {
	s := New(Config{})

	errc := make(chan error, 1)
	go func() { errc <- s.ListenAndServe("127.0.0.1:0") }()

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.http != nil
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ListenAndServe did not return after Shutdown")
	}
}
