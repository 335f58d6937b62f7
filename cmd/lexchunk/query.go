package main

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ba0f3/lexchunk/internal/config"
	"github.com/ba0f3/lexchunk/internal/llm"
	"github.com/ba0f3/lexchunk/internal/logger"
	"github.com/ba0f3/lexchunk/internal/store"
)

const rrfK = 60

// reciprocalRankFusion merges text and vector results by chunk id. Each list
// contributes 1/(rrfK+rank+1) per chunk; ties keep the order of first sight.
func reciprocalRankFusion(lists [][]store.SearchResult, limit int) []store.SearchResult {
	byID := make(map[int64]int)
	var merged []store.SearchResult
	for _, list := range lists {
		for rank, r := range list {
			score := 1.0 / float64(rrfK+rank+1)
			if i, ok := byID[r.ID]; ok {
				merged[i].Score += score
				continue
			}
			r.Score = score
			r.Source = "hybrid"
			byID[r.ID] = len(merged)
			merged = append(merged, r)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// hybridSearch fuses text and vector rankings. Vector failures degrade to
// text-only results.
func hybridSearch(ctx context.Context, s *store.Store, client llm.Embedder, query string, f store.Filter) ([]store.SearchResult, error) {
	fetch := f
	if f.Limit > 0 {
		fetch.Limit = max(f.Limit*4, 20)
	}
	fetch.MinScore = 0

	text, err := s.SearchChunks(ctx, query, fetch)
	if err != nil {
		return nil, err
	}
	vec, err := vectorSearch(ctx, s, client, query, fetch)
	if err != nil {
		logger.FromContext(ctx).Warn("vector search unavailable, using text results only", "err", err)
	}

	merged := reciprocalRankFusion([][]store.SearchResult{text, vec}, 0)
	results := merged[:0]
	for _, r := range merged {
		if r.Score >= f.MinScore {
			results = append(results, r)
		}
	}
	if f.Limit > 0 && len(results) > f.Limit {
		results = results[:f.Limit]
	}
	return results, nil
}

var queryCmd = &cobra.Command{
	Use:   "query [query]",
	Short: "Hybrid search (text + vector)",
	Long: `Combines text and vector search with reciprocal rank fusion. Without
embeddings, or when the embedding server is unreachable, only text results are used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		query := strings.Join(args, " ")
		f := searchFilter(cmd)

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		results, err := hybridSearch(ctx, s, newEmbedder(cfg), query, f)
		if err != nil {
			return err
		}
		return printResults(cmd, results)
	},
}

func init() {
	addSearchFlags(queryCmd)
	rootCmd.AddCommand(queryCmd)
}
