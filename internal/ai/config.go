package ai

import (
	"errors"
	"fmt"
	"net/url"
)

// Defaults for the local Ollama service.
const (
	DefaultEndpoint    = "http://localhost:11434"
	DefaultModel       = "qwen3:4b"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)

// Config is the chat configuration of a client.
type Config struct {
	Endpoint    string
	Model       string
	Temperature float64
	MaxTokens   int
	Stream      bool
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Endpoint:    DefaultEndpoint,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Stream:      true,
	}
}

// Validate checks the endpoint and numeric ranges.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q", c.Endpoint)
	}
	if c.Model == "" {
		return errors.New("model is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0,2]", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	return nil
}

// Patch is a partial configuration update; nil fields are left unchanged.
type Patch struct {
	Endpoint    *string
	Model       *string
	Temperature *float64
	MaxTokens   *int
	Stream      *bool
}

// Apply returns c with the non-nil fields of p applied.
func (c Config) Apply(p Patch) Config {
	if p.Endpoint != nil {
		c.Endpoint = *p.Endpoint
	}
	if p.Model != nil {
		c.Model = *p.Model
	}
	if p.Temperature != nil {
		c.Temperature = *p.Temperature
	}
	if p.MaxTokens != nil {
		c.MaxTokens = *p.MaxTokens
	}
	if p.Stream != nil {
		c.Stream = *p.Stream
	}
	return c
}
