package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/model/chat"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/service/devassistant"
)

func setupRouter(t *testing.T) (*chi.Mux, *devassistant.Service) {
	t.Helper()
	svc, err := devassistant.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	handler := New(svc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, svc
}

func postChat(r http.Handler, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatReturnsReply(t *testing.T) {
	r, svc := setupRouter(t)
	payload, _ := json.Marshal(map[string]string{"message": "refund please", "user_id": "user_000000001"})

	resp := postChat(r, payload)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var reply chat.Reply
	if err := json.Unmarshal(resp.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if reply.Response == "" || reply.ConversationID == "" {
		t.Fatalf("incomplete reply: %+v", reply)
	}
	if reply.AudioURL != "/api/audio/"+reply.ConversationID {
		t.Fatalf("unexpected audio url %q", reply.AudioURL)
	}
	if got := svc.Conversations("user_000000001", "", 0); len(got) != 1 {
		t.Fatalf("expected stored conversation, got %d", len(got))
	}
}

func TestChatMissingMessage(t *testing.T) {
	r, _ := setupRouter(t)

	resp := postChat(r, []byte(`{"user_id":"u"}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatInvalidBody(t *testing.T) {
	r, _ := setupRouter(t)

	resp := postChat(r, []byte(`{`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestConversationsList(t *testing.T) {
	r, _ := setupRouter(t)
	for _, msg := range []string{"one", "two"} {
		payload, _ := json.Marshal(map[string]string{"message": msg, "user_id": "u1"})
		if resp := postChat(r, payload); resp.Code != http.StatusOK {
			t.Fatalf("seed chat failed: %d", resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/conversations?user_id=u1&limit=1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var list chat.ConversationList
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Conversations) != 1 || list.Conversations[0].UserMessage != "two" {
		t.Fatalf("unexpected conversations: %+v", list.Conversations)
	}
}

func TestConversationsInvalidLimit(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/conversations?limit=-1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
