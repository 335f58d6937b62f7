package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ba0f3/lexchunk/internal/config"
	"github.com/ba0f3/lexchunk/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index status and collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		st, err := s.GetStatus(cmd.Context())
		if err != nil {
			return fmt.Errorf("get status: %w", err)
		}
		if getFormatFlag(cmd) == "json" {
			return writeJSON(out, st)
		}

		var size int64
		if fi, err := os.Stat(st.DBPath); err == nil {
			size = fi.Size()
		}

		fmt.Fprintln(out, "lexchunk status")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Index:", st.DBPath)
		fmt.Fprintln(out, "Size:", formatBytes(size))
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Documents")
		fmt.Fprintf(out, "  Total:    %d files indexed\n", st.DocCount)
		fmt.Fprintf(out, "  Chunks:   %d (avg %d chars)\n", st.ChunkCount, st.AvgChunkChars)
		fmt.Fprintf(out, "  Vectors:  %d embedded", st.VectorCount)
		if st.NeedsEmbedding > 0 {
			fmt.Fprintf(out, ", %d pending", st.NeedsEmbedding)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out)

		if len(st.Domains) > 0 {
			fmt.Fprintln(out, "Domains")
			domains := make([]string, 0, len(st.Domains))
			for d := range st.Domains {
				domains = append(domains, d)
			}
			sort.Strings(domains)
			for _, d := range domains {
				fmt.Fprintf(out, "  %-16s %d\n", d, st.Domains[d])
			}
			fmt.Fprintln(out)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Collections")
		if len(cfg.Collections) == 0 && len(st.Collections) == 0 {
			fmt.Fprintln(out, "  No collections. Run 'lexchunk collection add .' to index files.")
			return nil
		}
		byName := make(map[string]store.CollectionStatus, len(st.Collections))
		for _, c := range st.Collections {
			byName[c.Name] = c
		}
		for _, name := range sortedCollectionNames(cfg) {
			col := cfg.Collections[name]
			c := byName[name]
			fmt.Fprintf(out, "  %s (lexchunk://%s/)\n", name, name)
			fmt.Fprintf(out, "    Pattern: %s\n", col.Pattern)
			fmt.Fprintf(out, "    Files:   %d, %d chunks", c.ActiveCount, c.ChunkCount)
			if ago := formatTimeAgo(c.LastModified); ago != "" {
				fmt.Fprintf(out, " (updated %s)", ago)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func formatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	if n < 1024*1024 {
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	}
	if n < 1024*1024*1024 {
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
	return fmt.Sprintf("%.1f GB", float64(n)/(1024*1024*1024))
}

func formatTimeAgo(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return ""
	}
	d := time.Since(t)
	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}

func init() {
	addFormatFlags(statusCmd, "json")
	rootCmd.AddCommand(statusCmd)
}
