package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ba0f3/lexchunk/internal/config"
	"github.com/ba0f3/lexchunk/internal/indexer"
	"github.com/ba0f3/lexchunk/internal/logger"
)

var updateCmd = &cobra.Command{
	Use:   "update [collection...]",
	Short: "Re-index collections (all by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		names := args
		if len(names) == 0 {
			names = sortedCollectionNames(cfg)
		}
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No collections configured. Use 'lexchunk collection add <path>'.")
			return nil
		}

		eng, err := newEngine(cfg, log)
		if err != nil {
			return err
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		var failed int
		for _, name := range names {
			col, ok := cfg.Collections[name]
			if !ok {
				return fmt.Errorf("collection '%s' not found", name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updating collection '%s'...\n", name)
			res, err := indexer.IndexCollection(ctx, s, eng.pipeline, eng.classifiers, name, col)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Error("index collection failed", "collection", name, "err", err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", res)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d collections failed to index", failed, len(names))
		}

		pending, err := s.CountChunksNeedingEmbedding(ctx)
		if err == nil && pending > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%d chunks need embeddings. Run 'lexchunk embed'.\n", pending)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
