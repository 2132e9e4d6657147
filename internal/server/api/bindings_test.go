package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

type fakePlugins map[string][]string

func (f fakePlugins) Get(name string) (*plugin.Plugin, error) {
	actions, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", plugin.ErrPluginNotFound, name)
	}
	return &plugin.Plugin{Manifest: plugin.Manifest{Name: name, Actions: actions}}, nil
}

func serve(h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBindingHandler_List(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Bindings().SeedDefaults(); err != nil {
		t.Fatalf("SeedDefaults() error = %v", err)
	}
	handler := NewBindingHandler(s, nil)

	rec := serve(handler, http.MethodGet, "/api/bindings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response listBindingsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Bindings) != 4 {
		t.Fatalf("expected 4 bindings, got %d", len(response.Bindings))
	}

	byKind := make(map[string]bindingResponse)
	for _, b := range response.Bindings {
		byKind[b.ActionKind] = b
	}
	back, ok := byKind["browser_back"]
	if !ok {
		t.Fatal("browser_back binding missing")
	}
	if back.ActionName != "hotkey" || back.PluginName != "pointer" {
		t.Errorf("browser_back = %+v", back)
	}
	var cfg struct {
		Key       string   `json:"key"`
		Modifiers []string `json:"modifiers"`
	}
	if err := json.Unmarshal(back.Config, &cfg); err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.Key != "left" || len(cfg.Modifiers) != 1 || cfg.Modifiers[0] != "alt" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestBindingHandler_List_Empty(t *testing.T) {
	handler := NewBindingHandler(newTestStore(t), nil)

	rec := serve(handler, http.MethodGet, "/api/bindings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Body.String(); got != "{\"bindings\":[]}\n" {
		t.Errorf("body = %q", got)
	}
}

func TestBindingHandler_Create(t *testing.T) {
	s := newTestStore(t)
	handler := NewBindingHandler(s, fakePlugins{"pointer": {"click", "hotkey"}})

	body := []byte(`{"action_kind":"click","plugin_name":"pointer","action_name":"click"}`)
	rec := serve(handler, http.MethodPost, "/api/bindings", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created bindingResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
	if !created.Enabled {
		t.Error("expected new binding to be enabled")
	}
	if string(created.Config) != "{}" {
		t.Errorf("config = %s, want {}", created.Config)
	}

	stored, err := s.Bindings().GetByKind(gesture.ActionClick)
	if err != nil {
		t.Fatalf("GetByKind() error = %v", err)
	}
	if stored.ID != created.ID {
		t.Errorf("stored id = %s, want %s", stored.ID, created.ID)
	}
}

func TestBindingHandler_Create_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `not json`, http.StatusBadRequest},
		{"missing kind", `{"plugin_name":"pointer","action_name":"click"}`, http.StatusBadRequest},
		{"unknown kind", `{"action_kind":"double_click","plugin_name":"pointer","action_name":"click"}`, http.StatusBadRequest},
		{"missing plugin", `{"action_kind":"click","action_name":"click"}`, http.StatusBadRequest},
		{"missing action", `{"action_kind":"click","plugin_name":"pointer"}`, http.StatusBadRequest},
		{"unknown plugin", `{"action_kind":"click","plugin_name":"nope","action_name":"click"}`, http.StatusBadRequest},
		{"unsupported action", `{"action_kind":"click","plugin_name":"pointer","action_name":"scroll"}`, http.StatusBadRequest},
	}

	handler := NewBindingHandler(newTestStore(t), fakePlugins{"pointer": {"click"}})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(handler, http.MethodPost, "/api/bindings", []byte(tt.body))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestBindingHandler_Create_Conflict(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Bindings().SeedDefaults(); err != nil {
		t.Fatal(err)
	}
	handler := NewBindingHandler(s, nil)

	body := []byte(`{"action_kind":"click","plugin_name":"other","action_name":"tap"}`)
	rec := serve(handler, http.MethodPost, "/api/bindings", body)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestBindingHandler_Get(t *testing.T) {
	s := newTestStore(t)
	b := &store.Binding{ActionKind: gesture.ActionScrollDown, PluginName: "pointer", ActionName: "scroll", Enabled: true}
	if err := s.Bindings().Create(b); err != nil {
		t.Fatal(err)
	}
	handler := NewBindingHandler(s, nil)

	rec := serve(handler, http.MethodGet, "/api/bindings/"+b.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var got bindingResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.ActionKind != "scroll_down" || got.ActionName != "scroll" {
		t.Errorf("got %+v", got)
	}

	rec = serve(handler, http.MethodGet, "/api/bindings/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestBindingHandler_Update(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Bindings().SeedDefaults(); err != nil {
		t.Fatal(err)
	}
	click, err := s.Bindings().GetByKind(gesture.ActionClick)
	if err != nil {
		t.Fatal(err)
	}
	handler := NewBindingHandler(s, nil)

	rec := serve(handler, http.MethodPut, "/api/bindings/"+click.ID, []byte(`{"enabled":false}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	updated, err := s.Bindings().GetByID(click.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Enabled {
		t.Error("expected binding to be disabled")
	}
	if updated.PluginName != "pointer" || updated.ActionName != "click" {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	// Moving the click binding onto a kind that is already bound conflicts.
	rec = serve(handler, http.MethodPut, "/api/bindings/"+click.ID, []byte(`{"action_kind":"scroll_down"}`))
	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}

	rec = serve(handler, http.MethodPut, "/api/bindings/"+click.ID, []byte(`{"action_kind":"wave"}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = serve(handler, http.MethodPut, "/api/bindings/missing", []byte(`{"enabled":true}`))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestBindingHandler_Update_ChecksPlugin(t *testing.T) {
	s := newTestStore(t)
	b := &store.Binding{ActionKind: gesture.ActionClick, PluginName: "pointer", ActionName: "click", Enabled: true}
	if err := s.Bindings().Create(b); err != nil {
		t.Fatal(err)
	}
	handler := NewBindingHandler(s, fakePlugins{"pointer": {"click", "move"}})

	rec := serve(handler, http.MethodPut, "/api/bindings/"+b.ID, []byte(`{"action_name":"hotkey"}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	rec = serve(handler, http.MethodPut, "/api/bindings/"+b.ID, []byte(`{"action_name":"move"}`))
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestBindingHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	b := &store.Binding{ActionKind: gesture.ActionBrowserBack, PluginName: "pointer", ActionName: "hotkey", Enabled: true}
	if err := s.Bindings().Create(b); err != nil {
		t.Fatal(err)
	}
	handler := NewBindingHandler(s, nil)

	rec := serve(handler, http.MethodDelete, "/api/bindings/"+b.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if _, err := s.Bindings().GetByID(b.ID); err != store.ErrNotFound {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	rec = serve(handler, http.MethodDelete, "/api/bindings/"+b.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestBindingHandler_MethodNotAllowed(t *testing.T) {
	handler := NewBindingHandler(newTestStore(t), nil)

	tests := []struct {
		method string
		target string
	}{
		{http.MethodPatch, "/api/bindings"},
		{http.MethodDelete, "/api/bindings"},
		{http.MethodPost, "/api/bindings/some-id"},
	}
	for _, tt := range tests {
		rec := serve(handler, tt.method, tt.target, nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.target, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}
