package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ba0f3/lexchunk/internal/classify"
	"github.com/ba0f3/lexchunk/internal/config"
	"github.com/ba0f3/lexchunk/internal/indexer"
)

type classification struct {
	Title       string         `json:"title"`
	Domain      string         `json:"domain"`
	Subcategory string         `json:"subcategory"`
	SubDomain   string         `json:"subcategory_domain"`
	Tags        []string       `json:"tags"`
	Scores      map[string]int `json:"domain_scores"`
}

func classifyText(cls *classify.Classifiers, title, body string) classification {
	domain, sub := cls.Subcategory.Classify(title, body)
	return classification{
		Title:       title,
		Domain:      cls.Domain.Classify(title, body),
		Subcategory: sub,
		SubDomain:   domain,
		Tags:        cls.Tagger.Tags(body),
		Scores:      cls.Domain.Scores(title, body),
	}
}

var classifyCmd = &cobra.Command{
	Use:   "classify <file|->",
	Short: "Classify a document by domain, subcategory and content tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		content, name, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		cls := classify.NewClassifiers(cfg.Tables())
		title, body := indexer.SplitTitle(content, name)
		res := classifyText(cls, title, body)

		out := cmd.OutOrStdout()
		if getFormatFlag(cmd) == "json" {
			return writeJSON(out, res)
		}
		fmt.Fprintln(out, "Title:      ", res.Title)
		fmt.Fprintln(out, "Domain:     ", res.Domain)
		fmt.Fprintf(out, "Subcategory: %s (%s)\n", res.Subcategory, res.SubDomain)
		fmt.Fprintln(out, "Tags:       ", strings.Join(res.Tags, ", "))
		labels := make([]string, 0, len(res.Scores))
		for l := range res.Scores {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		for _, l := range labels {
			fmt.Fprintf(out, "  %-16s %d\n", l, res.Scores[l])
		}
		return nil
	},
}

func init() {
	addFormatFlags(classifyCmd, "json")
	rootCmd.AddCommand(classifyCmd)
}
