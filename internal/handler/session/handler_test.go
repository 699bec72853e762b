package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	sessionService "github.com/zhouzirui/idol-oracle/backend/internal/service/session"
)

func setupRouter() (*chi.Mux, *sessionService.Store) {
	store := sessionService.NewStore(nil)
	r := chi.NewRouter()
	New(store).RegisterRoutes(r)
	return r, store
}

func do(r http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateSessionGeneratesID(t *testing.T) {
	r, store := setupRouter()

	resp := do(r, http.MethodPost, "/sessions", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var body struct {
		SessionID string `json:"sessionId"`
		Stage     string `json:"stage"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.SessionID == "" || body.Stage != "DIVINATION" {
		t.Fatalf("unexpected body %+v", body)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one session, got %d", store.Len())
	}
}

func TestCreateSessionReturnsExisting(t *testing.T) {
	r, _ := setupRouter()
	payload := []byte(`{"sessionId":"abc"}`)

	if resp := do(r, http.MethodPost, "/sessions", payload); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if resp := do(r, http.MethodPost, "/sessions", payload); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for existing session, got %d", resp.Code)
	}
}

func TestCreateSessionRejectsBadInput(t *testing.T) {
	r, _ := setupRouter()

	if resp := do(r, http.MethodPost, "/sessions", []byte(`{`)); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", resp.Code)
	}
	if resp := do(r, http.MethodPost, "/sessions", []byte(`{"sessionId":"has space"}`)); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", resp.Code)
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	r, _ := setupRouter()
	do(r, http.MethodPost, "/sessions", []byte(`{"sessionId":"s1"}`))

	if resp := do(r, http.MethodGet, "/sessions/s1", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp := do(r, http.MethodDelete, "/sessions/s1", nil); resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp := do(r, http.MethodGet, "/sessions/s1", nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
	if resp := do(r, http.MethodDelete, "/sessions/s1", nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.Code)
	}
}
