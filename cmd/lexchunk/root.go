package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ba0f3/lexchunk/internal/chunker"
	"github.com/ba0f3/lexchunk/internal/classify"
	"github.com/ba0f3/lexchunk/internal/config"
	"github.com/ba0f3/lexchunk/internal/llm"
	"github.com/ba0f3/lexchunk/internal/logger"
	"github.com/ba0f3/lexchunk/internal/segment"
	"github.com/ba0f3/lexchunk/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "lexchunk",
	Short: "Chunk, classify and search French legal documents",
	Long: `lexchunk splits long French legal and administrative texts into overlapping,
keyword-tagged chunks, stores them in a local SQLite index and searches them by
text or by vector similarity.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initRoot,
}

func getIndexName() string {
	name, _ := rootCmd.PersistentFlags().GetString("index")
	if name == "" {
		return "index"
	}
	return name
}

func openStore() (*store.Store, error) {
	path, err := store.GetDefaultDbPath(getIndexName())
	if err != nil {
		return nil, err
	}
	s, err := store.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	return s, nil
}

func initRoot(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = os.Getenv("LEXCHUNK_LOG_LEVEL")
	}
	jsonLogs, _ := cmd.Flags().GetBool("log-json")
	cfg := logger.DefaultConfig()
	cfg.Level = logger.ParseLevel(level)
	cfg.JSON = jsonLogs
	logger.Init(cfg)

	config.CurrentIndexName = getIndexName()
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), logger.GetDefault()))
	return nil
}

// engine is the chunking pipeline plus the classifiers built from config.
type engine struct {
	pipeline    *chunker.Pipeline
	classifiers *classify.Classifiers
}

func newEngine(cfg *config.Config, log logger.Logger) (*engine, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	seg, err := segment.NewSegmenter(cfg.SegmenterOptions(), log)
	if err != nil {
		return nil, err
	}
	cls := classify.NewClassifiers(cfg.Tables())
	return &engine{
		pipeline:    chunker.NewPipeline(cfg.Sizes(), seg, cls.Tagger, log),
		classifiers: cls,
	}, nil
}

func newEmbedder(cfg *config.Config) llm.Embedder {
	return llm.NewEmbedClient(cfg.Embedding.BaseURL, cfg.Embedding.Model)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("index", "", "Use named index (default: index)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error, disabled (default: info)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
}
