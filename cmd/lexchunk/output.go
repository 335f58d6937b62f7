package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ba0f3/lexchunk/internal/chunker"
	"github.com/ba0f3/lexchunk/internal/store"
)

// SearchOutputRow is one row for search output (all formats).
type SearchOutputRow struct {
	ChunkID  int64
	Filepath string
	Seq      int
	Title    string
	Domain   string
	Keywords []string
	Body     string
	Score    float64
	Full     bool
}

func rowsFromResults(results []store.SearchResult) []SearchOutputRow {
	rows := make([]SearchOutputRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, SearchOutputRow{
			ChunkID:  r.ID,
			Filepath: r.DisplayPath(),
			Seq:      r.Index,
			Title:    r.Title,
			Domain:   r.Domain,
			Keywords: r.Keywords,
			Body:     r.Text,
			Score:    r.Score,
		})
	}
	return rows
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return strings.ReplaceAll(s, "'", "&apos;")
}

// WriteSearchOutput writes results in the requested format.
func WriteSearchOutput(w io.Writer, rows []SearchOutputRow, format string, full bool) error {
	for i := range rows {
		if full {
			rows[i].Full = true
		}
	}
	switch format {
	case "json":
		out := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			m := map[string]any{
				"chunk":    r.ChunkID,
				"score":    roundScore(r.Score),
				"file":     r.Filepath,
				"seq":      r.Seq,
				"title":    r.Title,
				"domain":   r.Domain,
				"keywords": r.Keywords,
			}
			if r.Full {
				m["text"] = r.Body
			} else if r.Body != "" {
				m["snippet"] = truncateSnippet(r.Body, 300)
			}
			out = append(out, m)
		}
		return writeJSON(w, out)
	case "files":
		for _, r := range rows {
			fmt.Fprintf(w, "#%d,%.2f,%s\n", r.ChunkID, r.Score, r.Filepath)
		}
	case "csv":
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"chunk", "score", "file", "seq", "title", "domain", "keywords", "snippet"})
		for _, r := range rows {
			snippet := r.Body
			if !r.Full {
				snippet = truncateSnippet(snippet, 500)
			}
			_ = cw.Write([]string{
				strconv.FormatInt(r.ChunkID, 10),
				strconv.FormatFloat(r.Score, 'f', 4, 64),
				r.Filepath,
				strconv.Itoa(r.Seq),
				r.Title,
				r.Domain,
				strings.Join(r.Keywords, ";"),
				snippet,
			})
		}
		cw.Flush()
		return cw.Error()
	case "md":
		for _, r := range rows {
			fmt.Fprintln(w, "---")
			fmt.Fprintf(w, "# %s\n\n", r.Title)
			fmt.Fprintf(w, "**chunk:** `#%d` (%s, seq %d)\n", r.ChunkID, r.Filepath, r.Seq)
			if len(r.Keywords) > 0 {
				fmt.Fprintf(w, "**keywords:** %s\n", strings.Join(r.Keywords, ", "))
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, r.Body)
			fmt.Fprintln(w)
		}
	case "xml":
		fmt.Fprintln(w, `<?xml version="1.0" encoding="UTF-8"?>`)
		fmt.Fprintln(w, "<results>")
		for _, r := range rows {
			fmt.Fprintln(w, "  <result>")
			fmt.Fprintf(w, "    <chunk>%d</chunk>\n", r.ChunkID)
			fmt.Fprintf(w, "    <score>%.4f</score>\n", r.Score)
			fmt.Fprintf(w, "    <file>%s</file>\n", escapeXML(r.Filepath))
			fmt.Fprintf(w, "    <title>%s</title>\n", escapeXML(r.Title))
			fmt.Fprintf(w, "    <domain>%s</domain>\n", escapeXML(r.Domain))
			fmt.Fprintf(w, "    <keywords>%s</keywords>\n", escapeXML(strings.Join(r.Keywords, ",")))
			fmt.Fprintf(w, "    <body>%s</body>\n", escapeXML(r.Body))
			fmt.Fprintln(w, "  </result>")
		}
		fmt.Fprintln(w, "</results>")
	default:
		for _, r := range rows {
			fmt.Fprintf(w, "%s #%d [%d]\n", r.Filepath, r.ChunkID, r.Seq)
			if r.Title != "" {
				fmt.Fprintln(w, "Title:", r.Title)
			}
			if len(r.Keywords) > 0 {
				fmt.Fprintln(w, "Keywords:", strings.Join(r.Keywords, ", "))
			}
			fmt.Fprintf(w, "Score: %.0f%%\n\n", r.Score*100)
			body := r.Body
			if !r.Full {
				body = truncateSnippet(body, 500)
			}
			fmt.Fprintln(w, body)
			fmt.Fprintln(w)
		}
	}
	return nil
}

// WriteChunks writes engine output for the chunk command.
func WriteChunks(w io.Writer, chunks []chunker.Chunk, format string) error {
	switch format {
	case "json":
		return writeJSON(w, chunks)
	case "csv":
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{"index", "kind", "words", "chars", "keywords", "text"})
		for _, c := range chunks {
			_ = cw.Write([]string{
				strconv.Itoa(c.Index),
				string(c.Kind),
				strconv.Itoa(c.WordCount),
				strconv.Itoa(c.CharCount),
				strings.Join(c.Keywords, ";"),
				c.Text,
			})
		}
		cw.Flush()
		return cw.Error()
	case "md":
		for _, c := range chunks {
			fmt.Fprintf(w, "## Chunk %d (%s)\n\n", c.Index, c.Kind)
			fmt.Fprintf(w, "**keywords:** %s  \n", strings.Join(c.Keywords, ", "))
			fmt.Fprintf(w, "**size:** %d words, %d chars\n\n", c.WordCount, c.CharCount)
			fmt.Fprintln(w, c.Text)
			fmt.Fprintln(w)
		}
	default:
		for _, c := range chunks {
			fmt.Fprintf(w, "[%d] %s  %d words, %d chars  %s\n", c.Index, c.Kind, c.WordCount, c.CharCount, strings.Join(c.Keywords, ", "))
			fmt.Fprintln(w, c.Text)
			fmt.Fprintln(w)
		}
	}
	return nil
}

// WriteStats writes a chunk summary.
func WriteStats(w io.Writer, st chunker.Stats, format string) error {
	if format == "json" {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "Chunks:  %d (title %d, content %d)\n", st.TotalChunks, st.ByKind[chunker.KindTitle], st.ByKind[chunker.KindContent])
	fmt.Fprintf(w, "Words:   %d\n", st.TotalWords)
	fmt.Fprintf(w, "Chars:   %d (avg %d per chunk)\n", st.TotalChars, st.AvgChunkSize)
	fmt.Fprintf(w, "Sizes:   small %d, medium %d, large %d\n", st.Sizes.Small, st.Sizes.Medium, st.Sizes.Large)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func getFormatFlag(cmd *cobra.Command) string {
	for _, f := range []string{"json", "csv", "md", "xml", "files"} {
		if v, _ := cmd.Flags().GetBool(f); v {
			return f
		}
	}
	if s, _ := cmd.Flags().GetString("format"); s != "" {
		return s
	}
	return "cli"
}

func addFormatFlags(cmd *cobra.Command, formats ...string) {
	cmd.Flags().String("format", "cli", "Output: cli, "+strings.Join(formats, ", "))
	for _, f := range formats {
		cmd.Flags().Bool(f, false, strings.ToUpper(f)+" output (short for --format="+f+")")
	}
}

func addLineNumbers(text string, start int) string {
	if start <= 0 {
		start = 1
	}
	lines := strings.Split(text, "\n")
	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%d: %s\n", start+i, line)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func roundScore(s float64) float64 {
	return float64(int(s*100+0.5)) / 100
}

func truncateSnippet(s string, maxRunes int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes]) + "..."
}
