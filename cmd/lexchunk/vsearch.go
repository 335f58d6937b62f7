package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ba0f3/lexchunk/internal/config"
	"github.com/ba0f3/lexchunk/internal/llm"
	"github.com/ba0f3/lexchunk/internal/store"
)

// embedQuery embeds a search query with the configured client.
func embedQuery(ctx context.Context, client llm.Embedder, query string) ([]float32, error) {
	res, err := client.Embed(ctx, llm.FormatQueryForEmbedding(query))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return res.Embedding, nil
}

func vectorSearch(ctx context.Context, s *store.Store, client llm.Embedder, query string, f store.Filter) ([]store.SearchResult, error) {
	st, err := s.GetStatus(ctx)
	if err != nil {
		return nil, err
	}
	if st.VectorCount == 0 {
		return nil, fmt.Errorf("no embeddings found, run 'lexchunk embed' first")
	}
	vec, err := embedQuery(ctx, client, query)
	if err != nil {
		return nil, err
	}
	return s.SearchVectors(ctx, vec, f)
}

var vsearchCmd = &cobra.Command{
	Use:   "vsearch [query]",
	Short: "Vector similarity search",
	Long:  "Search chunks by embedding similarity. Run 'lexchunk embed' first. Uses Ollama or an OpenAI-compatible API.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		results, err := vectorSearch(cmd.Context(), s, newEmbedder(cfg), strings.Join(args, " "), searchFilter(cmd))
		if err != nil {
			return err
		}
		return printResults(cmd, results)
	},
}

func init() {
	addSearchFlags(vsearchCmd)
	rootCmd.AddCommand(vsearchCmd)
}
