package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/interpretive-systems/codecraft/internal/ai"
	"github.com/interpretive-systems/codecraft/internal/config"
	"github.com/interpretive-systems/codecraft/internal/editor"
	"github.com/interpretive-systems/codecraft/internal/execution"
	"github.com/interpretive-systems/codecraft/internal/history"
	"github.com/interpretive-systems/codecraft/internal/logging"
	"github.com/interpretive-systems/codecraft/internal/metrics"
	"github.com/interpretive-systems/codecraft/internal/store"
)

// app holds the services shared by the commands.
type app struct {
	cfg      *config.Config
	kv       store.KV
	history  history.Sink
	editor   *editor.Editor
	provider ai.Provider
	// client is set for the Ollama provider only.
	client   *ai.Client
	chat     *ai.Chat
	complete *ai.Autocomplete

	stopMetrics context.CancelFunc
}

// loadConfig reads the configuration named by the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(mustGetStringFlag(cmd, "config"), mustGetStringFlag(cmd, "data-dir"))
	if err != nil {
		return nil, err
	}
	if lvl := mustGetStringFlag(cmd, "log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if f := mustGetStringFlag(cmd, "log-file"); f != "" {
		cfg.Log.File = f
	}
	if addr := mustGetStringFlag(cmd, "metrics-addr"); addr != "" {
		cfg.MetricsAddr = addr
	}
	return cfg, nil
}

// openApp loads the configuration and builds every service. A storage
// backend that cannot be opened leaves the editor in memory-only mode.
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := logging.Init(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.LogFile(),
	}); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	log := logging.Named("cli")

	a := &app{cfg: cfg}

	kv, err := store.Open(ctx, cfg.StoreConfig())
	if err != nil {
		log.Warn("storage unavailable, continuing in memory", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	} else {
		a.kv = kv
	}

	a.history, err = history.Open(ctx, cfg.HistoryConfig())
	if err != nil {
		log.Warn("run history disabled", zap.Error(err))
		a.history = history.Nop{}
	}

	identity := history.Anonymous
	if cfg.Auth.Token != "" {
		identity, err = history.ParseIdentity(cfg.Auth.Token, []byte(cfg.Auth.JWTSecret))
		if err != nil {
			log.Warn("ignoring auth token", zap.Error(err))
		}
	}

	exec := execution.NewClient(cfg.Execution.URL, execution.WithTimeout(cfg.Execution.Timeout))

	switch cfg.AI.Provider {
	case "anthropic":
		model := cfg.AI.Model
		if model == ai.DefaultModel {
			model = ""
		}
		a.provider = ai.NewAnthropicProvider(cfg.AI.AnthropicKey, model, cfg.AI.AnthropicURL, cfg.AI.MaxTokens)
	default:
		a.client = ai.NewClient(cfg.OllamaConfig(), ai.WithCompletionTimeout(cfg.AI.CompleteWait))
		a.provider = a.client
	}
	a.chat = ai.NewChat(a.provider)

	opts := editor.Options{
		Runner:   execution.NewRunner(exec),
		History:  a.history,
		Identity: identity,
		Logger:   logging.Named("editor"),
	}
	// A nil interface keeps the editor in memory-only mode.
	if a.kv != nil {
		opts.Store = a.kv
	}
	a.editor = editor.New(opts)
	a.editor.InitializeFileSystem()
	a.complete = ai.NewAutocomplete(a.provider, a.editor.State().AutoDelay)

	if cfg.MetricsAddr != "" {
		mctx, cancel := context.WithCancel(context.Background())
		a.stopMetrics = cancel
		go func() {
			if err := metrics.Serve(mctx, cfg.MetricsAddr); err != nil {
				log.Error("metrics server", zap.Error(err))
			}
		}()
	}

	log.Info("codecraft started",
		zap.String("data_dir", cfg.DataDir),
		zap.String("store", cfg.Store.Backend),
		zap.String("ai", a.provider.Name()),
		zap.Bool("signed_in", identity.SignedIn()),
	)
	return a, nil
}

// Close waits for background work and releases every service.
func (a *app) Close() error {
	a.chat.Cancel()
	a.complete.Close()
	a.editor.Close()
	if a.stopMetrics != nil {
		a.stopMetrics()
	}
	var errs []error
	if err := a.history.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close history: %w", err))
	}
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	logging.Sync()
	return errors.Join(errs...)
}

// withApp runs fn with an opened app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(a *app) error) (err error) {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(a)
}
