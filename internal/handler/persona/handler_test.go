package persona

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/idol-oracle/backend/internal/model/persona"
)

func setupRouter() *chi.Mux {
	r := chi.NewRouter()
	New(persona.NewMemoryStore(persona.Seed())).RegisterRoutes(r)
	return r
}

func TestListIdols(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/idols", nil)
	resp := httptest.NewRecorder()
	setupRouter().ServeHTTP(resp, req)

	var idols []persona.Idol
	if err := json.Unmarshal(resp.Body.Bytes(), &idols); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(idols) != len(persona.Seed()) {
		t.Fatalf("expected %d idols, got %d", len(persona.Seed()), len(idols))
	}
}

func TestGetIdol(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/idols/idol_004", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/idols/IDOL_004", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected case-insensitive id lookup, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/idols/nope", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
