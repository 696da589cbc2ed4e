package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/notexe/medimind/internal/config"
)

func TestOllamaProvider_SendsImages(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"model":"llava","message":{"role":"assistant","content":"Aspirin 81mg"},"done":true,"done_reason":"stop","prompt_eval_count":12,"eval_count":4}`))
	}))
	defer srv.Close()

	p, err := NewOllamaProvider(config.OllamaConfig{BaseURL: srv.URL + "/", Model: "llava"})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.SendMessage(context.Background(), MessageRequest{
		System:   "sys",
		Messages: []Message{{Role: "user", Content: "read", Images: []string{"AAAA"}}},
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if resp.Content != "Aspirin 81mg" || resp.Usage.OutputTokens != 4 {
		t.Errorf("unexpected response %+v", resp)
	}
	if got.Model != "llava" || got.Stream {
		t.Errorf("unexpected request %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || len(got.Messages[1].Images) != 1 {
		t.Errorf("unexpected messages %+v", got.Messages)
	}
}

func TestOllamaProvider_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p, _ := NewOllamaProvider(config.OllamaConfig{BaseURL: srv.URL})
	if _, err := p.SendMessage(context.Background(), MessageRequest{}); err == nil {
		t.Fatal("expected an error")
	}
}

func TestNewProvider(t *testing.T) {
	if _, err := NewProvider(&config.ExtractConfig{}); err != ErrNotConfigured {
		t.Errorf("empty provider: got %v", err)
	}
	if _, err := NewProvider(&config.ExtractConfig{Provider: "gpt"}); err == nil {
		t.Error("unknown provider should fail")
	}
	p, err := NewProvider(&config.ExtractConfig{Provider: config.ProviderOllama})
	if err != nil || p.Name() != "ollama" {
		t.Errorf("ollama provider: %v, %v", p, err)
	}
}
