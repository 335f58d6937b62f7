package main

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/ba0f3/lexchunk/internal/config"
	"github.com/ba0f3/lexchunk/internal/store"
)

// matchDocuments keeps the documents whose path starts with prefix or, when
// prefix holds glob metacharacters, matches it as a doublestar pattern.
func matchDocuments(docs []store.Document, prefix string) ([]store.Document, error) {
	if prefix == "" {
		return docs, nil
	}
	glob := strings.ContainsAny(prefix, "*?[{")
	if glob && !doublestar.ValidatePattern(prefix) {
		return nil, fmt.Errorf("invalid pattern %q", prefix)
	}
	var out []store.Document
	for _, d := range docs {
		if glob {
			if ok, _ := doublestar.Match(prefix, d.Path); ok {
				out = append(out, d)
			}
		} else if strings.HasPrefix(d.Path, prefix) {
			out = append(out, d)
		}
	}
	return out, nil
}

var lsCmd = &cobra.Command{
	Use:   "ls [collection[/path-or-glob]]",
	Short: "List collections or documents in a collection",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		if len(args) == 0 || args[0] == "" {
			if len(cfg.Collections) == 0 {
				fmt.Fprintln(out, "No collections. Run 'lexchunk collection add .' to index files.")
				return nil
			}
			st, err := s.GetStatus(ctx)
			if err != nil {
				return err
			}
			counts := make(map[string]store.CollectionStatus, len(st.Collections))
			for _, c := range st.Collections {
				counts[c.Name] = c
			}
			fmt.Fprintln(out, "Collections:")
			fmt.Fprintln(out)
			for _, name := range sortedCollectionNames(cfg) {
				c := counts[name]
				fmt.Fprintf(out, "  lexchunk://%s/  (%d files, %d chunks)\n", name, c.ActiveCount, c.ChunkCount)
			}
			return nil
		}

		arg := strings.TrimPrefix(args[0], "lexchunk://")
		collectionName, prefix, _ := strings.Cut(arg, "/")
		if _, ok := cfg.Collections[collectionName]; !ok {
			return fmt.Errorf("collection not found: %s", collectionName)
		}

		docs, err := s.ListDocuments(ctx, collectionName)
		if err != nil {
			return err
		}
		docs, err = matchDocuments(docs, prefix)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			if prefix != "" {
				fmt.Fprintf(out, "No files under lexchunk://%s/%s\n", collectionName, prefix)
			} else {
				fmt.Fprintf(out, "No files in collection %s\n", collectionName)
			}
			return nil
		}
		if getFormatFlag(cmd) == "json" {
			return writeJSON(out, docs)
		}
		for _, d := range docs {
			fmt.Fprintf(out, "%-16s %-18s lexchunk://%s\n", d.Domain, d.Subcategory, d.DisplayPath())
		}
		return nil
	},
}

func init() {
	addFormatFlags(lsCmd, "json")
	rootCmd.AddCommand(lsCmd)
}
