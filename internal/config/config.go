// Package config loads codecraft configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/interpretive-systems/codecraft/internal/ai"
	"github.com/interpretive-systems/codecraft/internal/execution"
	"github.com/interpretive-systems/codecraft/internal/history"
	"github.com/interpretive-systems/codecraft/internal/store"
)

// ErrConfiguration is wrapped by every validation error.
var ErrConfiguration = errors.New("invalid configuration")

// FileName is the config file looked up in the data directory.
const FileName = "config.yaml"

// Config is the full application configuration.
type Config struct {
	DataDir     string `yaml:"data_dir"`
	MetricsAddr string `yaml:"metrics_addr"`

	Log       LogConfig       `yaml:"log"`
	Store     StoreConfig     `yaml:"store"`
	Execution ExecutionConfig `yaml:"execution"`
	AI        AIConfig        `yaml:"ai"`
	History   HistoryConfig   `yaml:"history"`
	Auth      AuthConfig      `yaml:"auth"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type StoreConfig struct {
	Backend string   `yaml:"backend"`
	S3      S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type ExecutionConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type AIConfig struct {
	// Provider is "ollama" or "anthropic".
	Provider     string        `yaml:"provider"`
	Endpoint     string        `yaml:"endpoint"`
	Model        string        `yaml:"model"`
	Temperature  float64       `yaml:"temperature"`
	MaxTokens    int           `yaml:"max_tokens"`
	Stream       bool          `yaml:"stream"`
	CompleteWait time.Duration `yaml:"completion_timeout"`
	AnthropicKey string        `yaml:"anthropic_api_key"`
	AnthropicURL string        `yaml:"anthropic_base_url"`
}

type HistoryConfig struct {
	// Backend is "none", "jsonl" or "postgres".
	Backend     string `yaml:"backend"`
	DatabaseURL string `yaml:"database_url"`
	Path        string `yaml:"path"`
}

type AuthConfig struct {
	Token     string `yaml:"token"`
	JWTSecret string `yaml:"jwt_secret"`
}

// Default returns the built-in configuration rooted at dataDir.
func Default(dataDir string) *Config {
	return &Config{
		DataDir: dataDir,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Backend: store.BackendFile,
			S3: S3Config{
				Bucket: "codecraft",
				Region: "us-east-1",
			},
		},
		Execution: ExecutionConfig{
			URL:     execution.DefaultURL,
			Timeout: 30 * time.Second,
		},
		AI: AIConfig{
			Provider:     "ollama",
			Endpoint:     ai.DefaultEndpoint,
			Model:        ai.DefaultModel,
			Temperature:  ai.DefaultTemperature,
			MaxTokens:    ai.DefaultMaxTokens,
			Stream:       true,
			CompleteWait: 10 * time.Second,
		},
		History: HistoryConfig{Backend: "none"},
	}
}

// DefaultDataDir is $XDG_CONFIG_HOME/codecraft or its platform equivalent.
func DefaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "codecraft")
	}
	return ".codecraft"
}

// Load builds the configuration. path may be empty, in which case
// config.yaml in dataDir is used when present. Environment variables
// override file values.
func Load(path, dataDir string) (*Config, error) {
	if dataDir == "" {
		dataDir = envOr("CODECRAFT_DATA_DIR", DefaultDataDir())
	}
	cfg := Default(dataDir)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(dataDir, FileName)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrConfiguration, path, err)
		}
		if cfg.DataDir == "" {
			cfg.DataDir = dataDir
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Log.Level = envOr("LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("LOG_FORMAT", c.Log.Format)
	c.MetricsAddr = envOr("METRICS_ADDR", c.MetricsAddr)

	c.Store.Backend = envOr("CODECRAFT_STORE", c.Store.Backend)
	c.Store.S3.Endpoint = envOr("S3_ENDPOINT", c.Store.S3.Endpoint)
	c.Store.S3.Bucket = envOr("S3_BUCKET", c.Store.S3.Bucket)
	c.Store.S3.Region = envOr("S3_REGION", c.Store.S3.Region)
	c.Store.S3.AccessKey = envOr("S3_ACCESS_KEY", c.Store.S3.AccessKey)
	c.Store.S3.SecretKey = envOr("S3_SECRET_KEY", c.Store.S3.SecretKey)

	c.Execution.URL = envOr("PISTON_URL", c.Execution.URL)

	c.AI.Provider = envOr("AI_PROVIDER", c.AI.Provider)
	c.AI.Endpoint = envOr("OLLAMA_ENDPOINT", c.AI.Endpoint)
	c.AI.Model = envOr("AI_MODEL", c.AI.Model)
	c.AI.Stream = envBool("AI_STREAM", c.AI.Stream)
	c.AI.MaxTokens = envInt("AI_MAX_TOKENS", c.AI.MaxTokens)
	c.AI.AnthropicKey = envOr("ANTHROPIC_API_KEY", c.AI.AnthropicKey)

	c.History.DatabaseURL = envOr("DATABASE_URL", c.History.DatabaseURL)
	if c.History.DatabaseURL != "" && (c.History.Backend == "" || c.History.Backend == "none") {
		c.History.Backend = "postgres"
	}

	c.Auth.Token = envOr("CODECRAFT_TOKEN", c.Auth.Token)
	c.Auth.JWTSecret = envOr("JWT_SECRET", c.Auth.JWTSecret)
}

// Validate checks the configuration. Every error wraps ErrConfiguration.
func (c *Config) Validate() error {
	var problems []string

	if c.DataDir == "" {
		problems = append(problems, "data_dir is empty")
	}
	switch c.Store.Backend {
	case store.BackendFile, store.BackendBolt, store.BackendMemory:
	case store.BackendS3:
		if c.Store.S3.Bucket == "" {
			problems = append(problems, "store.s3.bucket is required for the s3 backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown store.backend %q", c.Store.Backend))
	}
	if !validURL(c.Execution.URL) {
		problems = append(problems, fmt.Sprintf("execution.url %q is not a URL", c.Execution.URL))
	}
	if c.Execution.Timeout < 0 {
		problems = append(problems, "execution.timeout is negative")
	}
	switch c.AI.Provider {
	case "ollama":
		if err := c.OllamaConfig().Validate(); err != nil {
			problems = append(problems, "ai: "+err.Error())
		}
	case "anthropic":
		if c.AI.AnthropicKey == "" {
			problems = append(problems, "ai.anthropic_api_key is required for the anthropic provider")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown ai.provider %q", c.AI.Provider))
	}
	switch c.History.Backend {
	case "", "none", "jsonl":
	case "postgres":
		if c.History.DatabaseURL == "" {
			problems = append(problems, "history.database_url is required for the postgres backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown history.backend %q", c.History.Backend))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// OllamaConfig is the AI client configuration.
func (c *Config) OllamaConfig() ai.Config {
	return ai.Config{
		Endpoint:    c.AI.Endpoint,
		Model:       c.AI.Model,
		Temperature: c.AI.Temperature,
		MaxTokens:   c.AI.MaxTokens,
		Stream:      c.AI.Stream,
	}
}

// StoreConfig is the KV backend configuration.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Backend: c.Store.Backend,
		Dir:     c.DataDir,
		S3: store.S3Config{
			Endpoint:  c.Store.S3.Endpoint,
			Bucket:    c.Store.S3.Bucket,
			Prefix:    c.Store.S3.Prefix,
			AccessKey: c.Store.S3.AccessKey,
			SecretKey: c.Store.S3.SecretKey,
			Region:    c.Store.S3.Region,
		},
	}
}

// HistoryConfig is the run-history sink configuration.
func (c *Config) HistoryConfig() history.Config {
	path := c.History.Path
	if path == "" {
		path = filepath.Join(c.DataDir, "history.jsonl")
	}
	return history.Config{
		Backend:     c.History.Backend,
		DatabaseURL: c.History.DatabaseURL,
		Path:        path,
	}
}

// LogFile is the log destination, codecraft.log in the data dir by default.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, "codecraft.log")
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
