package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ba0f3/lexchunk/internal/logger"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove inactive documents and orphaned data, vacuum DB",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		out := cmd.OutOrStdout()
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		res, err := s.DB.ExecContext(ctx, `DELETE FROM documents WHERE active = 0`)
		if err != nil {
			return fmt.Errorf("remove inactive documents: %w", err)
		}
		n, _ := res.RowsAffected()
		fmt.Fprintf(out, "Removed %d inactive document(s)\n", n)

		orphan, err := s.CleanupOrphanedContent(ctx)
		if err != nil {
			return fmt.Errorf("clean orphaned content: %w", err)
		}
		if orphan > 0 {
			fmt.Fprintf(out, "Removed %d orphaned content hash(es)\n", orphan)
		}

		if _, err := s.DB.ExecContext(ctx, `VACUUM`); err != nil {
			log.Warn("vacuum failed", "err", err)
			return nil
		}
		fmt.Fprintln(out, "Database vacuumed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
