package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/goleak"

	"github.com/zhouzirui/idol-oracle/backend/internal/service/conversation"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/llm"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/session"
)

func TestMain(m *testing.M) {
	// genai pulls in opencensus, whose stats worker starts at init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type frame struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

func (f frame) fields(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(f.Data, &out); err != nil {
		t.Fatalf("decode %s data: %v", f.Type, err)
	}
	return out
}

func startServer(t *testing.T, origins []string) (*httptest.Server, string) {
	t.Helper()
	completer := llm.CompleterFunc(func(context.Context, string) (string, error) {
		return "<hexagram>第3卦 屯卦</hexagram><interpretation>万事开头难</interpretation>", nil
	})
	store := session.NewStore(nil)
	sess, _, err := store.Create(context.Background(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	r := chi.NewRouter()
	New(conversation.NewEngine(store, completer, conversation.Options{}, nil), origins, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, sess.ID
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func TestWebSocketTurn(t *testing.T) {
	srv, id := startServer(t, nil)
	conn := dial(t, srv, "/ws/"+id)
	defer conn.Close()

	if f := readFrame(t, conn); f.Type != "connected" || f.fields(t)["stage"] != "DIVINATION" {
		t.Fatalf("unexpected greeting %+v", f)
	}

	if err := conn.WriteJSON(map[string]string{"type": "message", "text": "我的爱情"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	f := readFrame(t, conn)
	data := f.fields(t)
	if f.Type != "reply" || data["stage"] != "TRANSITION" {
		t.Fatalf("unexpected reply %+v", f)
	}
	if text, _ := data["reply"].(string); !strings.HasPrefix(text, "【第3卦 屯卦】") {
		t.Fatalf("unexpected reply text %q", text)
	}

	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := readFrame(t, conn); f.Type != "pong" {
		t.Fatalf("expected pong, got %+v", f)
	}

	if err := conn.WriteJSON(map[string]string{"type": "message", "text": " "}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := readFrame(t, conn); f.Type != "error" {
		t.Fatalf("expected error frame, got %+v", f)
	}

	if err := conn.WriteJSON(map[string]string{"type": "audio"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := readFrame(t, conn); f.Type != "error" {
		t.Fatalf("expected error frame for unsupported type, got %+v", f)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func TestWebSocketUnknownSession(t *testing.T) {
	srv, _ := startServer(t, nil)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/missing"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
	resp.Body.Close()
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://oracle.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://oracle.example.com")
	if !check(req) {
		t.Fatal("expected allowed origin")
	}
	req.Header.Set("Origin", "https://evil.example.com")
	if check(req) {
		t.Fatal("expected rejected origin")
	}
	if !originChecker([]string{"*"})(req) {
		t.Fatal("wildcard must allow every origin")
	}
}
