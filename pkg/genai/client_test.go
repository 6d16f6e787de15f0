package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_GenerateText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}

		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("unexpected model %q", req.Model)
		}
		if req.Stream {
			t.Error("streaming must be disabled")
		}

		json.NewEncoder(w).Encode(GenerateResponse{Text: "- Passo um\n- Passo dois", Model: req.Model})
	}))
	defer server.Close()

	client := NewClient(&Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	}, nil)

	text, err := client.GenerateText(context.Background(), "liste os passos")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "- Passo um\n- Passo dois" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestClient_GenerateTextErrors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient(&Config{BaseURL: server.URL, Model: "m", Timeout: time.Second}, nil)
		if _, err := client.GenerateText(context.Background(), "p"); err == nil {
			t.Error("expected error on 503")
		}
	})

	t.Run("service error field", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(GenerateResponse{Error: "model not loaded"})
		}))
		defer server.Close()

		client := NewClient(&Config{BaseURL: server.URL, Model: "m", Timeout: time.Second}, nil)
		if _, err := client.GenerateText(context.Background(), "p"); err == nil {
			t.Error("expected error from error field")
		}
	})
}

func TestClient_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL, Model: "m", Timeout: time.Second}, nil)
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("health check: %v", err)
	}

	down := NewClient(&Config{BaseURL: "http://127.0.0.1:1", Model: "m", Timeout: time.Second}, nil)
	if err := down.HealthCheck(context.Background()); err == nil {
		t.Error("expected error for unreachable service")
	}
}
