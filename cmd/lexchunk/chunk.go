package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ba0f3/lexchunk/internal/chunker"
	"github.com/ba0f3/lexchunk/internal/config"
	"github.com/ba0f3/lexchunk/internal/indexer"
	"github.com/ba0f3/lexchunk/internal/logger"
	"github.com/ba0f3/lexchunk/internal/segment"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk <file|->",
	Short: "Split a document into keyword-tagged chunks",
	Long: `Segment a document into sentences, assemble overlapping chunks and tag each
chunk with content keywords. Reads stdin when the argument is "-".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.FromContext(cmd.Context())
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		applyChunkingFlags(cmd, cfg)

		eng, err := newEngine(cfg, log)
		if err != nil {
			return err
		}

		content, name, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		// An explicit title leaves the content whole.
		title, _ := cmd.Flags().GetString("title")
		body := content
		if title == "" {
			title, body = indexer.SplitTitle(content, name)
		}

		_, sub := eng.classifiers.Subcategory.Classify(title, content)
		meta := map[string]any{
			"source_id":   name,
			"domain":      eng.classifiers.Domain.Classify(title, content),
			"subcategory": sub,
		}
		chunks, err := eng.pipeline.ProcessDocument(cmd.Context(), chunker.Document{
			Title:    title,
			Content:  body,
			Metadata: meta,
		})
		if err != nil {
			return err
		}
		log.Debug("chunked input", "source", name, "segmenter", eng.pipeline.SegmenterName(), "chunks", len(chunks))

		format := getFormatFlag(cmd)
		out := cmd.OutOrStdout()
		if stats, _ := cmd.Flags().GetBool("stats"); stats {
			return WriteStats(out, chunker.Summarize(chunks), format)
		}
		if len(chunks) == 0 && format == "cli" {
			fmt.Fprintln(out, "No chunks produced.")
			return nil
		}
		return WriteChunks(out, chunks, format)
	},
}

// applyChunkingFlags overrides config sizes with explicitly set flags.
func applyChunkingFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("target-size") {
		cfg.Chunking.TargetSize, _ = cmd.Flags().GetInt("target-size")
	}
	if cmd.Flags().Changed("overlap") {
		cfg.Chunking.Overlap, _ = cmd.Flags().GetInt("overlap")
	}
	if cmd.Flags().Changed("min-size") {
		cfg.Chunking.MinSize, _ = cmd.Flags().GetInt("min-size")
	}
	if cmd.Flags().Changed("segmenter") {
		cfg.Segmenter.Strategy, _ = cmd.Flags().GetString("segmenter")
	}
}

// readInput reads a file, or stdin for "-". The returned name is used as
// source id and title fallback.
func readInput(stdin io.Reader, arg string) (content, name string, err error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "stdin", nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", "", err
	}
	return string(data), filepath.ToSlash(filepath.Clean(arg)), nil
}

func init() {
	chunkCmd.Flags().String("title", "", "Document title (default: first heading or file name)")
	chunkCmd.Flags().Int("target-size", chunker.DefaultTargetSize, "Target chunk size in characters")
	chunkCmd.Flags().Int("overlap", chunker.DefaultOverlap, "Overlap between chunks in characters")
	chunkCmd.Flags().Int("min-size", chunker.DefaultMinSize, "Minimum chunk size in characters")
	chunkCmd.Flags().String("segmenter", "", "Sentence segmenter: "+strings.Join([]string{segment.StrategyAuto, segment.StrategyPunkt, segment.StrategyRegex}, ", "))
	chunkCmd.Flags().Bool("stats", false, "Print chunk statistics instead of chunks")
	addFormatFlags(chunkCmd, "json", "csv", "md")
	rootCmd.AddCommand(chunkCmd)
}
