package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-assistant/internal/config"
	"github.com/jonathan/career-assistant/internal/db"
	"github.com/jonathan/career-assistant/internal/history"
	"github.com/jonathan/career-assistant/internal/llm"
	"github.com/jonathan/career-assistant/internal/logger"
	"github.com/jonathan/career-assistant/internal/pipeline"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configPath  string
	historyPath string
	logMode     string
	verbose     bool
}

// newBackends builds the model clients. Tests replace it with scripted fakes.
var newBackends = func(ctx context.Context, cfg *config.Config, log *logger.Logger) (*llm.Backends, error) {
	return llm.NewBackends(ctx, cfg.LLM, cfg.Keys, log)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "career_agent",
		Short: "Career coaching assistant",
		Long: `career_agent analyzes free-text career aspirations and current skills with three language model backends
and produces job categories, mood, job market alignment, a career path, a skill plan and an industry forecast.

Configuration can be loaded from a JSON or YAML file using --config. API keys come from the environment
(OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY, GEMINI_API_KEY).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a JSON or YAML config file")
	root.PersistentFlags().StringVar(&opts.historyPath, "history", "", "Path to the SQLite history database (overrides config)")
	root.PersistentFlags().StringVar(&opts.logMode, "log-mode", "", "Log mode: development or production (overrides config)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print each stage result as it completes")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newChatCmd(opts),
		newBatchCmd(opts),
		newServeCmd(opts),
		newCategoriesCmd(opts),
		newHistoryCmd(opts),
		newRunsCmd(opts),
	)
	return root
}

// loadConfig merges the config file, defaults, environment and flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg := config.Defaults()
	if o.configPath != "" {
		loaded, err := config.LoadConfig(o.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded.MergeWithDefaults(config.Defaults())
	}
	cfg.ApplyEnv()

	if o.historyPath != "" {
		cfg.HistoryPath = o.historyPath
	}
	if o.logMode != "" {
		cfg.LogMode = o.logMode
	}
	if o.verbose {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// env is the runtime shared by commands that talk to the model backends.
type env struct {
	cfg      *config.Config
	log      *logger.Logger
	backends *llm.Backends
}

func (o *rootOptions) setup(ctx context.Context) (*env, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	backends, err := newBackends(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return &env{cfg: cfg, log: log, backends: backends}, nil
}

func (e *env) Close() {
	if err := e.backends.Close(); err != nil {
		e.log.Warn("failed to close backends", "error", err)
	}
	e.log.Sync()
}

// openRecorder connects to PostgreSQL when a database URL is configured.
// The returned recorder is nil otherwise.
func openRecorder(ctx context.Context, cfg *config.Config, log *logger.Logger) (pipeline.Recorder, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}, nil
	}
	database, err := connectDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Info("recording runs to database")
	return database, database.Close, nil
}

func connectDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// openHistory opens the CLI history store, or returns nil when disabled.
func openHistory(cfg *config.Config, disabled bool) (*history.Store, error) {
	if disabled || cfg.HistoryPath == "" {
		return nil, nil
	}
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}
