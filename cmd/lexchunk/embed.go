package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ba0f3/lexchunk/internal/config"
	"github.com/ba0f3/lexchunk/internal/llm"
	"github.com/ba0f3/lexchunk/internal/logger"
	"github.com/ba0f3/lexchunk/internal/store"
)

const defaultEmbedBatch = 32

// embedInput formats a stored chunk the way vector queries are compared against.
func embedInput(it store.EmbedItem) string {
	text, _ := llm.PrepareForEmbedding(it.Text, llm.MaxEmbedChars)
	return llm.FormatChunkForEmbedding(it.Title, text)
}

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Generate vector embeddings",
	Long:  "Generate vector embeddings for indexed chunks using Ollama or an OpenAI-compatible API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		force, _ := cmd.Flags().GetBool("force")
		batch, _ := cmd.Flags().GetInt("batch")
		if batch <= 0 {
			batch = defaultEmbedBatch
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if force {
			log.Info("force re-embedding: clearing all vectors")
			if err := s.ClearAllEmbeddings(ctx); err != nil {
				return fmt.Errorf("clear embeddings: %w", err)
			}
		}

		items, err := s.ChunksNeedingEmbedding(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "All chunks already have embeddings.")
			return nil
		}

		client := newEmbedder(cfg)
		fmt.Fprintf(out, "Embedding %d chunks, model: %s\n", len(items), client.ModelName())

		start := time.Now()
		var embedded, failed int
		for lo := 0; lo < len(items); lo += batch {
			hi := min(lo+batch, len(items))
			part := items[lo:hi]
			texts := make([]string, len(part))
			for i, it := range part {
				texts[i] = embedInput(it)
			}
			results, err := client.EmbedBatch(ctx, texts)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Error("embedding batch failed", "from", part[0].Path, "size", len(part), "err", err)
				failed += len(part)
				continue
			}
			now := time.Now()
			for i, res := range results {
				if err := s.InsertEmbedding(ctx, part[i].ChunkID, res.Embedding, res.Model, now); err != nil {
					log.Error("store embedding failed", "chunk", part[i].ChunkID, "err", err)
					failed++
					continue
				}
				embedded++
			}
			log.Debug("embedded batch", "done", hi, "total", len(items))
		}

		fmt.Fprintf(out, "Done. Embedded %d chunks in %.1fs", embedded, time.Since(start).Seconds())
		if failed > 0 {
			fmt.Fprintf(out, " (%d errors)", failed)
		}
		fmt.Fprintln(out)
		if embedded == 0 && failed > 0 {
			return fmt.Errorf("no chunks embedded")
		}
		return nil
	},
}

func init() {
	embedCmd.Flags().BoolP("force", "f", false, "Force re-embedding (clear all vectors first)")
	embedCmd.Flags().Int("batch", defaultEmbedBatch, "Chunks per embedding request")
	rootCmd.AddCommand(embedCmd)
}
