package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusNotFound, "session not found")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"error":"session not found"}` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestSendSSEEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	SetupSSEHeaders(rec)
	SendSSEEvent(rec, rec, "stage", map[string]string{"stage": "TRANSITION"})

	if got := rec.Body.String(); got != "event: stage\ndata: {\"stage\":\"TRANSITION\"}\n\n" {
		t.Fatalf("unexpected frame %q", got)
	}
	if !rec.Flushed {
		t.Fatal("expected flush")
	}
}

func TestDecodeJSONEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	var payload struct{ SessionID string }
	if err := DecodeJSON(req, &payload); err != nil {
		t.Fatalf("DecodeJSON err: %v", err)
	}
}

func TestPagination(t *testing.T) {
	cases := []struct {
		query         string
		offset, limit int
	}{
		{"", 0, 20},
		{"?limit=5&offset=10", 10, 5},
		{"?limit=-1&offset=x", 0, 20},
		{"?limit=1000", 0, 100},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x"+tc.query, nil)
		offset, limit := Pagination(req, 20)
		if offset != tc.offset || limit != tc.limit {
			t.Fatalf("Pagination(%q) = %d,%d want %d,%d", tc.query, offset, limit, tc.offset, tc.limit)
		}
	}
}
