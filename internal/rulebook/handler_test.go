package rulebook_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redlinehq/redline/internal/rulebook"
)

type mockSystem struct {
	currentFn func() (*rulebook.Rulebook, error)
	loadFn    func(ctx context.Context) (*rulebook.Rulebook, error)
}

func (m *mockSystem) Handler() *rulebook.Handler {
	return rulebook.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (m *mockSystem) Current() (*rulebook.Rulebook, error) {
	return m.currentFn()
}

func (m *mockSystem) Load(ctx context.Context) (*rulebook.Rulebook, error) {
	return m.loadFn(ctx)
}

func setupMux(h *rulebook.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func loadedRulebook(t *testing.T) *rulebook.Rulebook {
	t.Helper()

	rb, err := rulebook.Parse([]byte(validRules))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return rb
}

func TestHandlerCurrent(t *testing.T) {
	sys := &mockSystem{
		currentFn: func() (*rulebook.Rulebook, error) {
			return loadedRulebook(t), nil
		},
	}
	mux := setupMux(sys.Handler())

	req := httptest.NewRequest(http.MethodGet, "/rulebook", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", w.Code)
	}

	var rb rulebook.Rulebook
	if err := json.NewDecoder(w.Body).Decode(&rb); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if rb.Name != "standard" {
		t.Errorf("rb.Name = %s, expected standard", rb.Name)
	}
	if len(rb.Rules) != 3 {
		t.Errorf("len(rb.Rules) = %d, expected 3", len(rb.Rules))
	}
}

func TestHandlerCurrentNotLoaded(t *testing.T) {
	sys := &mockSystem{
		currentFn: func() (*rulebook.Rulebook, error) {
			return nil, rulebook.ErrNotLoaded
		},
	}
	mux := setupMux(sys.Handler())

	req := httptest.NewRequest(http.MethodGet, "/rulebook", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, expected 503", w.Code)
	}
}

func TestHandlerRules(t *testing.T) {
	sys := &mockSystem{
		currentFn: func() (*rulebook.Rulebook, error) {
			return loadedRulebook(t), nil
		},
	}
	mux := setupMux(sys.Handler())

	req := httptest.NewRequest(http.MethodGet, "/rulebook/rules", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", w.Code)
	}

	var rules []rulebook.Rule
	if err := json.NewDecoder(w.Body).Decode(&rules); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(rules) != 3 {
		t.Fatalf("len(rules) = %d, expected 3", len(rules))
	}
	if rules[0].ID != "RULE_001" {
		t.Errorf("rules[0].ID = %s, expected RULE_001", rules[0].ID)
	}
}

func TestHandlerTeams(t *testing.T) {
	sys := &mockSystem{
		currentFn: func() (*rulebook.Rulebook, error) {
			return loadedRulebook(t), nil
		},
	}
	mux := setupMux(sys.Handler())

	req := httptest.NewRequest(http.MethodGet, "/rulebook/teams", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", w.Code)
	}

	var teams map[string]string
	if err := json.NewDecoder(w.Body).Decode(&teams); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if teams["legal"] != "legal@example.com" {
		t.Errorf("teams[legal] = %s", teams["legal"])
	}
}

func TestHandlerReload(t *testing.T) {
	loaded := false
	sys := &mockSystem{
		loadFn: func(ctx context.Context) (*rulebook.Rulebook, error) {
			loaded = true
			return loadedRulebook(t), nil
		},
	}
	mux := setupMux(sys.Handler())

	req := httptest.NewRequest(http.MethodPost, "/rulebook/reload", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", w.Code)
	}
	if !loaded {
		t.Error("Load() not invoked")
	}
}

func TestHandlerReloadFailure(t *testing.T) {
	sys := &mockSystem{
		loadFn: func(ctx context.Context) (*rulebook.Rulebook, error) {
			return nil, rulebook.ErrLoad
		},
	}
	mux := setupMux(sys.Handler())

	req := httptest.NewRequest(http.MethodPost, "/rulebook/reload", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, expected 422", w.Code)
	}
}

func TestHandlerRoutes(t *testing.T) {
	sys := &mockSystem{}
	group := sys.Handler().Routes()

	if group.Prefix != "/rulebook" {
		t.Errorf("group.Prefix = %s, expected /rulebook", group.Prefix)
	}

	want := []struct {
		method  string
		pattern string
	}{
		{"GET", ""},
		{"GET", "/rules"},
		{"GET", "/teams"},
		{"POST", "/reload"},
	}

	if len(group.Routes) != len(want) {
		t.Fatalf("len(group.Routes) = %d, expected %d", len(group.Routes), len(want))
	}

	for i, w := range want {
		if group.Routes[i].Method != w.method || group.Routes[i].Pattern != w.pattern {
			t.Errorf("routes[%d] = %s %s, expected %s %s",
				i, group.Routes[i].Method, group.Routes[i].Pattern, w.method, w.pattern)
		}
	}
}
