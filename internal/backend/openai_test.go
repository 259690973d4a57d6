package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClientGenerate(t *testing.T) {
	var gotPath string
	var gotReq chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  reports_analysis \n"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Model: "phi-3", ReqTimeout: time.Second})
	out, err := c.Generate(context.Background(), classifyMessages("flow rates"), Options{MaxTokens: 50})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "reports_analysis" {
		t.Fatalf("expected trimmed content, got %q", out)
	}
	if gotPath != "/v1/chat/completions" {
		t.Fatalf("path = %s", gotPath)
	}
	if gotReq.Model != "phi-3" || gotReq.MaxTokens != 50 || gotReq.Stream {
		t.Fatalf("unexpected request: %+v", gotReq)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(gotReq.Messages))
	}
}

func TestClientGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	_, err := c.Generate(context.Background(), classifyMessages("q"), Options{})
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected status error, got %v", err)
	}
	if !strings.Contains(err.Error(), "model exploded") {
		t.Fatalf("expected body snippet in error, got %v", err)
	}
}

func TestClientGenerateNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	if _, err := c.Generate(context.Background(), classifyMessages("q"), Options{}); err == nil {
		t.Fatal("expected error on empty choices")
	}
}

func TestClientGenerateHonorsContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewClient(ClientConfig{BaseURL: srv.URL, ReqTimeout: 30 * time.Millisecond})
	start := time.Now()
	_, err := c.Generate(context.Background(), classifyMessages("q"), Options{})
	if err == nil {
		t.Fatal("expected deadline error")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("request timeout not enforced")
	}
}

func TestClientWarmup(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "loading", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Warmup(ctx); err != nil {
		t.Fatalf("warmup: %v", err)
	}
	if calls < 3 {
		t.Fatalf("expected retries, got %d calls", calls)
	}
}
