package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ba0f3/lexchunk/internal/config"
	"github.com/ba0f3/lexchunk/internal/indexer"
	"github.com/ba0f3/lexchunk/internal/logger"
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage collections",
}

func sortedCollectionNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Collections))
	for name := range cfg.Collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(cfg.Collections) == 0 {
			fmt.Fprintln(out, "No collections found.")
			return nil
		}

		fmt.Fprintln(out, "Collections:")
		for _, name := range sortedCollectionNames(cfg) {
			col := cfg.Collections[name]
			fmt.Fprintf(out, "- %s (%s) [%s]\n", name, col.Path, col.Pattern)
			keys := make([]string, 0, len(col.Metadata))
			for k := range col.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "    %s = %s\n", k, col.Metadata[k])
			}
		}
		return nil
	},
}

var collectionAddCmd = &cobra.Command{
	Use:   "add [path]",
	Short: "Add a collection",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = filepath.Base(absPath)
		}
		pattern, _ := cmd.Flags().GetString("mask")

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if _, exists := cfg.Collections[name]; exists {
			return fmt.Errorf("collection '%s' already exists", name)
		}

		cfg.Collections[name] = config.Collection{
			Path:    absPath,
			Pattern: pattern,
		}
		if err := config.SaveConfig(cfg); err != nil {
			return err
		}
		logger.FromContext(cmd.Context()).Info("collection added", "name", name, "path", absPath, "pattern", pattern)
		fmt.Fprintf(cmd.OutOrStdout(), "Collection '%s' added. Run 'lexchunk update' to index it.\n", name)
		return nil
	},
}

var collectionRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a collection and deactivate its indexed documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if _, exists := cfg.Collections[name]; !exists {
			return fmt.Errorf("collection '%s' not found", name)
		}

		delete(cfg.Collections, name)
		if err := config.SaveConfig(cfg); err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()
		n, err := s.DeactivateCollection(cmd.Context(), name)
		if err != nil {
			return err
		}
		if _, err := s.CleanupOrphanedContent(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Collection '%s' removed (%d documents deactivated).\n", name, n)
		return nil
	},
}

var collectionMetaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Manage metadata attached to every chunk of a collection",
}

var collectionMetaSetCmd = &cobra.Command{
	Use:   "set <collection> <key> <value>",
	Short: "Set a metadata entry",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if !config.SetCollectionMetadata(cfg, args[0], args[1], args[2]) {
			return fmt.Errorf("collection '%s' not found", args[0])
		}
		if err := config.SaveConfig(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s=%s on '%s'. Run 'lexchunk update' to apply.\n", args[1], args[2], args[0])
		return nil
	},
}

var collectionMetaUnsetCmd = &cobra.Command{
	Use:   "unset <collection> <key>",
	Short: "Remove a metadata entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if !config.RemoveCollectionMetadata(cfg, args[0], args[1]) {
			return fmt.Errorf("metadata '%s' not found on collection '%s'", args[1], args[0])
		}
		if err := config.SaveConfig(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from '%s'.\n", args[1], args[0])
		return nil
	},
}

func init() {
	collectionAddCmd.Flags().String("name", "", "Collection name")
	collectionAddCmd.Flags().String("mask", indexer.DefaultPattern, "File pattern mask")

	collectionMetaCmd.AddCommand(collectionMetaSetCmd, collectionMetaUnsetCmd)
	collectionCmd.AddCommand(collectionListCmd, collectionAddCmd, collectionRemoveCmd, collectionMetaCmd)
	rootCmd.AddCommand(collectionCmd)
}
