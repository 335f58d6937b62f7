package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ba0f3/lexchunk/internal/chunker"
	"github.com/ba0f3/lexchunk/internal/store"
)

var getCmd = &cobra.Command{
	Use:   "get <collection/path>[:line]",
	Short: "Show the chunks or the body of an indexed document",
	Long: `Show the stored chunks of a document given as collection/path
(optionally prefixed with lexchunk://). With --body, print the document text
instead; a :line suffix or --from selects the first line.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		input := strings.TrimSpace(args[0])
		fromLine, _ := cmd.Flags().GetInt("from")
		maxLines, _ := cmd.Flags().GetInt("l")
		lineNumbers, _ := cmd.Flags().GetBool("line-numbers")
		showBody, _ := cmd.Flags().GetBool("body")

		if cmd.Flags().Changed("from") {
			showBody = true
		}
		if fromLine == 0 {
			if idx := strings.LastIndex(input, ":"); idx >= 0 {
				if n, err := strconv.Atoi(input[idx+1:]); err == nil {
					fromLine = n
					input = input[:idx]
					showBody = true
				}
			}
		}
		collection, path, ok := store.SplitDisplayPath(input)
		if !ok {
			return fmt.Errorf("expected collection/path, got %q", input)
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		out := cmd.OutOrStdout()
		if showBody {
			body, err := s.GetDocumentBody(ctx, collection, path, fromLine, maxLines)
			if errors.Is(err, store.ErrDocumentNotFound) {
				return fmt.Errorf("document not found: %s", input)
			}
			if err != nil {
				return err
			}
			if lineNumbers {
				body = addLineNumbers(body, fromLine)
			}
			fmt.Fprintln(out, body)
			return nil
		}

		doc, err := s.FindActiveDocument(ctx, collection, path)
		if errors.Is(err, store.ErrDocumentNotFound) {
			return fmt.Errorf("document not found: %s", input)
		}
		if err != nil {
			return err
		}
		stored, err := s.GetDocumentChunks(ctx, doc.ID)
		if err != nil {
			return err
		}
		format := getFormatFlag(cmd)
		if format == "json" {
			return writeJSON(out, map[string]any{"document": doc, "chunks": stored})
		}
		fmt.Fprintf(out, "%s  %s (%s / %s)\n\n", doc.DisplayPath(), doc.Title, doc.Domain, doc.Subcategory)
		chunks := make([]chunker.Chunk, len(stored))
		for i := range stored {
			chunks[i] = stored[i].Chunk
		}
		return WriteChunks(out, chunks, format)
	},
}

func init() {
	getCmd.Flags().Bool("body", false, "Print the document text instead of its chunks")
	getCmd.Flags().Int("from", 0, "Start line (1-based, implies --body)")
	getCmd.Flags().IntP("l", "l", 0, "Maximum lines to output")
	getCmd.Flags().Bool("line-numbers", false, "Add line numbers")
	addFormatFlags(getCmd, "json", "csv", "md")
	rootCmd.AddCommand(getCmd)
}
