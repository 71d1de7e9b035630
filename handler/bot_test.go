package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/swapnilgarg7/sync-sure/config"
	"github.com/swapnilgarg7/sync-sure/model"
)

func botRouter(appID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/messages", NewBotHandler(&config.BotConfig{AppID: appID}).Messages)
	return router
}

func postActivity(t *testing.T, router *gin.Engine, activity any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(activity)
	if err != nil {
		t.Fatalf("Failed to marshal activity: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBotEcho(t *testing.T) {
	router := botRouter("")

	w := postActivity(t, router, model.Activity{
		Type: model.ActivityTypeMessage,
		Text: "hello bot",
		From: model.ChannelAccount{ID: "user-1"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var reply model.Activity
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatalf("Failed to parse reply: %v", err)
	}
	if reply.Text != "Echo: hello bot" {
		t.Errorf("Expected echo reply, got %q", reply.Text)
	}
	if reply.Recipient.ID != "user-1" {
		t.Errorf("Expected reply addressed to sender, got %+v", reply.Recipient)
	}
}

func TestBotAnalyzeUsage(t *testing.T) {
	router := botRouter("")

	for _, text := range []string{"analyze", "How do I ANALYZE an invoice?", "please analyze this"} {
		w := postActivity(t, router, model.Activity{
			Type: model.ActivityTypeMessage,
			Text: text,
		})

		var reply model.Activity
		json.Unmarshal(w.Body.Bytes(), &reply)
		if !strings.Contains(reply.Text, "/api/analyze-invoice") {
			t.Errorf("Expected usage pointer for %q, got %q", text, reply.Text)
		}
	}
}

func TestBotNonMessageActivity(t *testing.T) {
	router := botRouter("")

	w := postActivity(t, router, model.Activity{Type: "conversationUpdate"})

	var reply model.Activity
	json.Unmarshal(w.Body.Bytes(), &reply)
	if reply.Text != "Received activity of type: conversationUpdate" {
		t.Errorf("Unexpected reply: %q", reply.Text)
	}
}

func TestBotInvalidPayload(t *testing.T) {
	router := botRouter("")

	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
}

func TestBotConnectorDelivery(t *testing.T) {
	var gotPath string
	var gotReply model.Activity
	connector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReply)
		w.Write([]byte(`{"id": "reply-1"}`))
	}))
	defer connector.Close()

	router := botRouter("app-123")

	w := postActivity(t, router, model.Activity{
		Type:         model.ActivityTypeMessage,
		ID:           "act-7",
		Text:         "hello",
		ServiceURL:   connector.URL,
		From:         model.ChannelAccount{ID: "user-1"},
		Recipient:    model.ChannelAccount{ID: "bot-1"},
		Conversation: &model.ConversationAccount{ID: "conv-9"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotPath != "/v3/conversations/conv-9/activities/act-7" {
		t.Errorf("Unexpected connector path: %s", gotPath)
	}
	if gotReply.Text != "Echo: hello" {
		t.Errorf("Expected echo delivered to connector, got %q", gotReply.Text)
	}
	if gotReply.From.ID != "bot-1" || gotReply.Recipient.ID != "user-1" {
		t.Errorf("Expected from/recipient swapped in reply, got %+v", gotReply)
	}
}

func TestBotConnectorFailure(t *testing.T) {
	connector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer connector.Close()

	router := botRouter("app-123")

	w := postActivity(t, router, model.Activity{
		Type:         model.ActivityTypeMessage,
		Text:         "hello",
		ServiceURL:   connector.URL,
		Conversation: &model.ConversationAccount{ID: "conv-9"},
	})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500 on delivery failure, got %d", w.Code)
	}
}
