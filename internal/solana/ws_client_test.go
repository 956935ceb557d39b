package solana

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newWSServer runs handler for every upgraded connection.
func newWSServer(t *testing.T, handler func(c *websocket.Conn)) (*httptest.Server, string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		handler(c)
	}))
	return server, "ws" + strings.TrimPrefix(server.URL, "http")
}

func drain(c *websocket.Conn) {
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func readRequest(t *testing.T, c *websocket.Conn) (wsRequest, bool) {
	_, msg, err := c.ReadMessage()
	if err != nil {
		return wsRequest{}, false
	}
	var req wsRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		t.Errorf("unmarshal request: %v", err)
		return wsRequest{}, false
	}
	return req, true
}

func logsNotification(subID int64, slot int64, sig string, logs ...string) wsNotification {
	return wsNotification{
		JSONRPC: "2.0",
		Method:  "logsNotification",
		Params: &wsNotificationParams{
			Subscription: subID,
			Result: wsNotificationResult{
				Context: &wsContext{Slot: slot},
				Value:   wsLogsValue{Signature: sig, Logs: logs},
			},
		},
	}
}

func TestWSClient_Connect(t *testing.T) {
	server, wsURL := newWSServer(t, drain)
	defer server.Close()

	client, err := NewWSClient(context.Background(), wsURL, nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	if client.closed.Load() {
		t.Error("client should not be closed")
	}
}

func TestWSClient_SubscribeLogs(t *testing.T) {
	server, wsURL := newWSServer(t, func(c *websocket.Conn) {
		req, ok := readRequest(t, c)
		if !ok {
			return
		}
		if req.Method != "logsSubscribe" {
			t.Errorf("expected logsSubscribe, got %s", req.Method)
		}

		filter, _ := req.Params[0].(map[string]interface{})
		if mentions, _ := filter["mentions"].([]interface{}); len(mentions) != 1 || mentions[0] != "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P" {
			t.Errorf("unexpected mentions filter: %v", filter)
		}

		c.WriteJSON(wsSubscribeResponse{JSONRPC: "2.0", ID: req.ID, Result: 12345})
		time.Sleep(50 * time.Millisecond)
		c.WriteJSON(logsNotification(12345, 100, "testsig", "Program data: AAAA"))
		drain(c)
	})
	defer server.Close()

	ctx := context.Background()
	client, err := NewWSClient(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	ch, err := client.SubscribeLogs(ctx, LogsFilter{
		Mentions: []string{"6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"},
	})
	if err != nil {
		t.Fatalf("SubscribeLogs: %v", err)
	}

	select {
	case notif := <-ch:
		if notif.Signature != "testsig" {
			t.Errorf("expected testsig, got %s", notif.Signature)
		}
		if len(notif.Logs) != 1 {
			t.Errorf("expected 1 log, got %d", len(notif.Logs))
		}
		if notif.Slot != 100 {
			t.Errorf("expected slot 100, got %d", notif.Slot)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for notification")
	}
}

func TestWSClient_UnsubscribeLogs(t *testing.T) {
	unsubscribed := make(chan int64, 1)

	server, wsURL := newWSServer(t, func(c *websocket.Conn) {
		req, ok := readRequest(t, c)
		if !ok {
			return
		}
		c.WriteJSON(wsSubscribeResponse{JSONRPC: "2.0", ID: req.ID, Result: 77})

		req, ok = readRequest(t, c)
		if !ok {
			return
		}
		if req.Method != "logsUnsubscribe" {
			t.Errorf("expected logsUnsubscribe, got %s", req.Method)
		}
		if len(req.Params) == 1 {
			id, _ := req.Params[0].(float64)
			unsubscribed <- int64(id)
		}
		c.WriteJSON(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": true})

		// Late notification for the removed subscription must not be delivered.
		c.WriteJSON(logsNotification(77, 5, "late"))
		drain(c)
	})
	defer server.Close()

	ctx := context.Background()
	client, err := NewWSClient(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	ch, err := client.SubscribeLogs(ctx, LogsFilter{Mentions: []string{"prog"}})
	if err != nil {
		t.Fatalf("SubscribeLogs: %v", err)
	}

	if err := client.UnsubscribeLogs(ctx, ch); err != nil {
		t.Fatalf("UnsubscribeLogs: %v", err)
	}

	select {
	case id := <-unsubscribed:
		if id != 77 {
			t.Errorf("expected unsubscribe of 77, got %d", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for logsUnsubscribe")
	}

	select {
	case n := <-ch:
		t.Errorf("unexpected notification after unsubscribe: %+v", n)
	case <-time.After(100 * time.Millisecond):
	}

	if err := client.UnsubscribeLogs(ctx, ch); err == nil {
		t.Error("expected error unsubscribing twice")
	}
}

func TestWSClient_SubscribeTimeout(t *testing.T) {
	server, wsURL := newWSServer(t, drain)
	defer server.Close()

	cfg := DefaultWSConfig()
	cfg.SubscribeTimeout = 100 * time.Millisecond

	client, err := NewWSClient(context.Background(), wsURL, &cfg)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	_, err = client.SubscribeLogs(context.Background(), LogsFilter{})
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestWSClient_Close(t *testing.T) {
	server, wsURL := newWSServer(t, drain)
	defer server.Close()

	client, err := NewWSClient(context.Background(), wsURL, nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if !client.closed.Load() {
		t.Error("client should be closed")
	}

	// Double close should be safe
	if err := client.Close(); err != nil {
		t.Errorf("double Close: %v", err)
	}
}

func TestWSClient_SubscribeAfterClose(t *testing.T) {
	server, wsURL := newWSServer(t, drain)
	defer server.Close()

	ctx := context.Background()
	client, err := NewWSClient(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	client.Close()

	_, err = client.SubscribeLogs(ctx, LogsFilter{})
	if !errors.Is(err, ErrClientClosed) {
		t.Errorf("expected ErrClientClosed, got %v", err)
	}
}

func TestWSClient_CustomConfig(t *testing.T) {
	server, wsURL := newWSServer(t, drain)
	defer server.Close()

	config := &WSClientConfig{
		ReconnectDelay:    100 * time.Millisecond,
		MaxReconnectDelay: 1 * time.Second,
		PingInterval:      5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      5 * time.Second,
	}

	client, err := NewWSClient(context.Background(), wsURL, config)
	if err != nil {
		t.Fatalf("NewWSClient: %v", err)
	}
	defer client.Close()

	if client.config.PingInterval != 5*time.Second {
		t.Errorf("expected PingInterval 5s, got %v", client.config.PingInterval)
	}
	if client.config.SubscribeTimeout != 30*time.Second {
		t.Errorf("expected default SubscribeTimeout, got %v", client.config.SubscribeTimeout)
	}
	if client.config.BufferSize != 10000 {
		t.Errorf("expected default BufferSize, got %d", client.config.BufferSize)
	}
}
