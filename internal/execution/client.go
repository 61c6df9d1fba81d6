// Package execution runs code through a Piston compatible execution service
// and normalizes its compile/run responses into a single result.
package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultURL is the public Piston execute endpoint.
const DefaultURL = "https://emkc.org/api/v2/piston/execute"

// File is one source file sent to the service.
type File struct {
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
}

// Request is the execute payload.
type Request struct {
	Language string `json:"language"`
	Version  string `json:"version"`
	Files    []File `json:"files"`
	Stdin    string `json:"stdin,omitempty"`
}

// NoExitCode is the Code of a stage the service reported without an exit
// code, as it does for a process it killed.
const NoExitCode = -1

// StageResult is the compile or run section of a response.
type StageResult struct {
	Code   int
	Stdout string
	Stderr string
	Output string
	Signal string
}

// Failed reports a non-zero or missing exit code, or a terminating signal.
func (s *StageResult) Failed() bool {
	return s.Code != 0 || s.Signal != ""
}

// message is the text shown for a failed stage.
func (s *StageResult) message() string {
	if msg := firstNonEmpty(s.Stderr, s.Output); msg != "" {
		return msg
	}
	if s.Signal != "" {
		return "Process terminated by " + s.Signal
	}
	return MsgGeneric
}

// Response is the part of the service reply the orchestrator reads.
type Response struct {
	Message string
	Compile *StageResult
	Run     *StageResult
}

// Client talks to the execution service.
type Client struct {
	url        string
	httpClient *http.Client
	userAgent  string
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(client *Client) {
		client.userAgent = ua
	}
}

// NewClient creates a client for the execute endpoint at url.
func NewClient(url string, opts ...ClientOption) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "codecraft",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute sends one execute request. A reply carrying a top-level message
// is returned as a Response even on a 4xx status, since that is how the
// service reports unknown runtimes.
func (c *Client) Execute(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("HTTP %d: invalid JSON: %s", resp.StatusCode, truncate(string(data), 200))
	}
	out := parseResponse(data)
	if resp.StatusCode >= 400 && out.Message == "" {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	return out, nil
}

func parseResponse(data []byte) *Response {
	res := gjson.ParseBytes(data)
	out := &Response{Message: res.Get("message").String()}
	out.Compile = parseStage(res.Get("compile"))
	out.Run = parseStage(res.Get("run"))
	return out
}

func parseStage(r gjson.Result) *StageResult {
	if !r.IsObject() {
		return nil
	}
	code := NoExitCode
	if c := r.Get("code"); c.Type == gjson.Number {
		code = int(c.Int())
	}
	return &StageResult{
		Code:   code,
		Stdout: r.Get("stdout").String(),
		Stderr: r.Get("stderr").String(),
		Output: r.Get("output").String(),
		Signal: r.Get("signal").String(),
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
