package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendDisabled(t *testing.T) {
	sender, err := NewGatewaySender(GatewaySettings{Enabled: false})
	if err != nil {
		t.Fatalf("constructor error: %v", err)
	}

	if err := sender.Send(context.Background(), "9876543210", "hello"); err != ErrSMSDisabled {
		t.Fatalf("expected ErrSMSDisabled, got %v", err)
	}
}

func TestSendPostsToGateway(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key-123" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender, err := NewGatewaySender(GatewaySettings{
		Enabled:  true,
		Endpoint: server.URL,
		APIKey:   "key-123",
		SenderID: "GROCERY",
	})
	if err != nil {
		t.Fatalf("constructor error: %v", err)
	}

	if err := sender.Send(context.Background(), "9876543210", OTPBody("123456")); err != nil {
		t.Fatalf("send error: %v", err)
	}

	if got["to"] != "9876543210" {
		t.Fatalf("unexpected recipient: %s", got["to"])
	}
	if got["sender"] != "GROCERY" {
		t.Fatalf("unexpected sender id: %s", got["sender"])
	}
}

func TestSendGatewayFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender, err := NewGatewaySender(GatewaySettings{Enabled: true, Endpoint: server.URL})
	if err != nil {
		t.Fatalf("constructor error: %v", err)
	}

	if err := sender.Send(context.Background(), "9876543210", "hi"); err == nil {
		t.Fatal("expected gateway error")
	}
}
