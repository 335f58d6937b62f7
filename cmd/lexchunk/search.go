package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ba0f3/lexchunk/internal/store"
)

const defaultSearchLimit = 5

// addSearchFlags registers the flags shared by search, vsearch and query.
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("n", "n", defaultSearchLimit, "Number of results")
	cmd.Flags().StringP("collection", "c", "", "Restrict to collection")
	cmd.Flags().String("domain", "", "Restrict to documents of a domain")
	cmd.Flags().StringSliceP("keyword", "k", nil, "Require a chunk keyword (repeatable)")
	cmd.Flags().Bool("all", false, "Return all matches (use with --min-score)")
	cmd.Flags().Float64("min-score", 0, "Minimum score threshold")
	cmd.Flags().Bool("full", false, "Show full chunk text")
	addFormatFlags(cmd, "json", "csv", "md", "xml", "files")
}

func searchFilter(cmd *cobra.Command) store.Filter {
	f := store.Filter{}
	f.Limit, _ = cmd.Flags().GetInt("n")
	f.Collection, _ = cmd.Flags().GetString("collection")
	f.Domain, _ = cmd.Flags().GetString("domain")
	f.Keywords, _ = cmd.Flags().GetStringSlice("keyword")
	f.MinScore, _ = cmd.Flags().GetFloat64("min-score")
	format := getFormatFlag(cmd)
	if all, _ := cmd.Flags().GetBool("all"); all && !cmd.Flags().Changed("n") {
		f.Limit = 0
	} else if (format == "json" || format == "files") && !cmd.Flags().Changed("n") {
		f.Limit = 20
	}
	return f
}

func printResults(cmd *cobra.Command, results []store.SearchResult) error {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	full, _ := cmd.Flags().GetBool("full")
	return WriteSearchOutput(out, rowsFromResults(results), getFormatFlag(cmd), full)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over indexed chunks",
	Long: `Case-insensitive search over chunk text. Every query term must appear in a
chunk; chunks mentioning the terms more often rank higher.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		results, err := s.SearchChunks(cmd.Context(), query, searchFilter(cmd))
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return printResults(cmd, results)
	},
}

func init() {
	addSearchFlags(searchCmd)
	rootCmd.AddCommand(searchCmd)
}
