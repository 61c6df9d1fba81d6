package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/interpretive-systems/codecraft/internal/metrics"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-haiku-4-5-20251001"

// AnthropicProvider answers chat and completion requests through the
// Anthropic Messages API, for machines without a local Ollama.
type AnthropicProvider struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	hasKey    bool
}

// NewAnthropicProvider builds a provider from an API key. baseURL may be
// empty.
func NewAnthropicProvider(apiKey, model, baseURL string, maxTokens int) *AnthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &AnthropicProvider{
		client:    anthropic.NewClient(opts...),
		model:     anthropic.Model(model),
		maxTokens: int64(maxTokens),
		hasKey:    apiKey != "",
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

// Ping reports whether an API key is configured; the API has no free
// health endpoint.
func (p *AnthropicProvider) Ping(context.Context) bool { return p.hasKey }

// Complete asks for an inline continuation and sanitizes it like the Ollama
// reply.
func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	text, err := p.send(ctx, []Turn{{Role: RoleUser, Content: BuildCompletionPrompt(req)}}, 64)
	metrics.RecordAIRequest("completion", err)
	if err != nil {
		return "", err
	}
	return Sanitize(text), nil
}

// Stream forwards the text deltas of a streamed reply as they arrive.
func (p *AnthropicProvider) Stream(ctx context.Context, turns []Turn) (<-chan string, <-chan error, error) {
	params, err := p.params(turns, p.maxTokens)
	if err != nil {
		return nil, nil, err
	}
	chunks := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(chunks)
		defer close(errCh)
		err := p.stream(ctx, params, chunks)
		metrics.RecordAIRequest("chat", err)
		if err != nil {
			errCh <- err
		}
	}()
	return chunks, errCh, nil
}

func (p *AnthropicProvider) stream(ctx context.Context, params anthropic.MessageNewParams, out chan<- string) error {
	stream := p.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()
	for stream.Next() {
		ev, ok := stream.Current().AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		delta, ok := ev.Delta.AsAny().(anthropic.TextDelta)
		if !ok || delta.Text == "" {
			continue
		}
		select {
		case out <- delta.Text:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("anthropic: %w", err)
	}
	return nil
}

func (p *AnthropicProvider) params(turns []Turn, maxTokens int64) (anthropic.MessageNewParams, error) {
	var (
		system   []anthropic.TextBlockParam
		messages []anthropic.MessageParam
	)
	for _, t := range turns {
		if t.Content == "" {
			continue
		}
		switch t.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: t.Content})
		case RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		default:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		}
	}
	if len(messages) == 0 {
		return anthropic.MessageNewParams{}, errors.New("no messages to send")
	}
	return anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  messages,
	}, nil
}

func (p *AnthropicProvider) send(ctx context.Context, turns []Turn, maxTokens int64) (string, error) {
	params, err := p.params(turns, maxTokens)
	if err != nil {
		return "", err
	}
	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, ""), nil
}
