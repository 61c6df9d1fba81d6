// Package ai drives the local language model: chat with streamed replies,
// quick actions on the current code and debounced inline completion.
package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/interpretive-systems/codecraft/internal/logging"
	"github.com/interpretive-systems/codecraft/internal/metrics"
)

// Provider is a completion service.
type Provider interface {
	Name() string
	Ping(ctx context.Context) bool
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Stream sends reply chunks in order. Both channels are closed when
	// the reply ends, fails or ctx is cancelled.
	Stream(ctx context.Context, turns []Turn) (<-chan string, <-chan error, error)
}

// Client talks to an Ollama server.
type Client struct {
	httpClient      *http.Client
	completeTimeout time.Duration
	log             *zap.Logger

	mu  sync.RWMutex
	cfg Config
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithCompletionTimeout bounds each inline completion request.
func WithCompletionTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.completeTimeout = d
	}
}

// NewClient creates a client. Zero fields of cfg take the defaults.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	def := DefaultConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")
	c := &Client{
		// Streams can run for minutes; no client-wide timeout.
		httpClient:      &http.Client{},
		completeTimeout: 10 * time.Second,
		log:             logging.Named("ollama"),
		cfg:             cfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the provider in the UI.
func (c *Client) Name() string { return "ollama" }

// Config returns a copy of the current configuration.
func (c *Client) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// UpdateConfig applies p for subsequent requests.
func (c *Client) UpdateConfig(p Patch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = c.cfg.Apply(p)
	c.cfg.Endpoint = strings.TrimSuffix(c.cfg.Endpoint, "/")
}

// Ping checks that the server answers on /api/tags.
func (c *Client) Ping(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Config().Endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("connection check failed", zap.Error(err))
		return false
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

// Complete requests a short deterministic continuation and returns it
// sanitized to a single line of code.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c.completeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.completeTimeout)
		defer cancel()
	}
	cfg := c.Config()
	resp, err := c.generate(ctx, generateRequest{
		Model:  cfg.Model,
		Prompt: BuildCompletionPrompt(req),
		Stream: false,
		Options: generateOptions{
			Temperature: 0,
			NumPredict:  48,
			TopK:        10,
			TopP:        0.95,
		},
	})
	metrics.RecordAIRequest("completion", err)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("decode completion: invalid JSON")
	}
	return Sanitize(gjson.GetBytes(data, "response").String()), nil
}

// Stream sends the flattened transcript and streams the reply. The request
// fails synchronously on transport or HTTP errors; later failures arrive on
// the error channel. Cancelling ctx aborts the body read, which stops the
// producer goroutine and closes both channels.
func (c *Client) Stream(ctx context.Context, turns []Turn) (<-chan string, <-chan error, error) {
	cfg := c.Config()
	resp, err := c.generate(ctx, generateRequest{
		Model:  cfg.Model,
		Prompt: BuildChatPrompt(turns),
		Stream: cfg.Stream,
		Options: generateOptions{
			Temperature: cfg.Temperature,
			NumPredict:  cfg.MaxTokens,
		},
	})
	metrics.RecordAIRequest("chat", err)
	if err != nil {
		return nil, nil, err
	}

	chunks := make(chan string, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errCh)
		defer resp.Body.Close()

		send := func(s string) bool {
			select {
			case chunks <- s:
				metrics.RecordStreamChunk()
				return true
			case <-ctx.Done():
				errCh <- ctx.Err()
				return false
			}
		}

		if !cfg.Stream {
			data, err := io.ReadAll(resp.Body)
			if err != nil {
				errCh <- fmt.Errorf("read reply: %w", err)
				return
			}
			if s := gjson.GetBytes(data, "response").String(); s != "" {
				send(s)
			}
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			if !gjson.ValidBytes(line) {
				c.log.Debug("skipping malformed stream line", zap.ByteString("line", line))
				continue
			}
			if s := gjson.GetBytes(line, "response").String(); s != "" {
				if !send(s) {
					return
				}
			}
			if gjson.GetBytes(line, "done").Bool() {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			if ctx.Err() != nil {
				errCh <- ctx.Err()
			} else {
				errCh <- fmt.Errorf("read stream: %w", err)
			}
		}
	}()

	return chunks, errCh, nil
}

func (c *Client) generate(ctx context.Context, body generateRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Config().Endpoint+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, fmt.Errorf("ollama API error: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return resp, nil
}
