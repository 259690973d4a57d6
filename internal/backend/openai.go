package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ClientConfig tunes the OpenAI-compatible chat completions client.
type ClientConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	ReqTimeout     time.Duration
	ConnectTimeout time.Duration
	// Defaults applied when a call's Options leave a field zero.
	MaxTokens   int
	Temperature float64
}

// Client talks to a running OpenAI-compatible inference server over HTTP
// (llama.cpp server, vLLM, etc.).
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// NewClient constructs a server-backed generator.
func NewClient(cfg ClientConfig) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout stays 0 on the client: every request carries a context-based
	// deadline instead, see Generate.
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, httpClient: &http.Client{Transport: tr, Timeout: 0}}
}

type chatCompletionRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate performs one non-streaming chat completion call.
func (c *Client) Generate(ctx context.Context, msgs []Message, opts Options) (string, error) {
	if len(msgs) == 0 {
		return "", errors.New("empty message list")
	}
	if c.cfg.ReqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ReqTimeout)
		defer cancel()
	}
	payload := chatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    msgs,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if payload.MaxTokens == 0 {
		payload.MaxTokens = c.cfg.MaxTokens
	}
	if payload.Temperature == 0 {
		payload.Temperature = c.cfg.Temperature
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("generation server returned %d: %s", resp.StatusCode, snippet(raw))
	}
	var out chatCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("generation server error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("generation server returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// Warmup pings the server with exponential backoff until it answers or the
// context expires. Called once at startup so the first user turn does not pay
// for server boot time.
func (c *Client) Warmup(ctx context.Context) error {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/models", nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		if resp.StatusCode >= 500 {
			return fmt.Errorf("generation server not ready: %d", resp.StatusCode)
		}
		return nil
	}
	return backoff.Retry(op, backoff.WithContext(backoff.NewExponentialBackOff(), ctx))
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
