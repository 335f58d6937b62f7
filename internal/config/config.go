package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ba0f3/lexchunk/internal/chunker"
	"github.com/ba0f3/lexchunk/internal/classify"
	"github.com/ba0f3/lexchunk/internal/segment"
)

var CurrentIndexName = "index"

// ErrInvalidChunking reports chunking limits that cannot produce chunks.
var ErrInvalidChunking = errors.New("invalid chunking configuration")

var validate = validator.New(validator.WithRequiredStructEnabled())

func GetConfigDir() (string, error) {
	if dir := os.Getenv("LEXCHUNK_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "lexchunk"), nil
}

func GetConfigFilePath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("%s.yml", CurrentIndexName)), nil
}

func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Chunking: Chunking{
			TargetSize: chunker.DefaultTargetSize,
			Overlap:    chunker.DefaultOverlap,
			MinSize:    chunker.DefaultMinSize,
		},
		Segmenter: Segmenter{
			Strategy: segment.StrategyAuto,
			Language: segment.DefaultLanguage,
		},
		Collections: make(map[string]Collection),
	}
}

// LoadConfig reads the index config file. Keys absent from the file keep
// their default values.
func LoadConfig() (*Config, error) {
	path, err := GetConfigFilePath()
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Collections == nil {
		cfg.Collections = make(map[string]Collection)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := GetConfigFilePath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks struct constraints. Chunking failures wrap ErrInvalidChunking.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg.Chunking); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidChunking, err)
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) Sizes() chunker.Sizes {
	return chunker.Sizes{
		TargetSize: c.Chunking.TargetSize,
		Overlap:    c.Chunking.Overlap,
		MinSize:    c.Chunking.MinSize,
	}
}

func (c *Config) SegmenterOptions() segment.Options {
	return segment.Options{Strategy: c.Segmenter.Strategy, Language: c.Segmenter.Language}
}

func (c *Config) Tables() classify.Tables {
	return classify.Tables{
		Domains:       c.Categories.Domains,
		Subcategories: c.Categories.Subcategories,
		ContentTags:   c.Categories.ContentTags,
	}
}

// SetCollectionMetadata adds or updates a metadata entry attached to every
// chunk of a collection. Returns false if the collection does not exist.
func SetCollectionMetadata(cfg *Config, collectionName, key, value string) bool {
	col, ok := cfg.Collections[collectionName]
	if !ok {
		return false
	}
	if col.Metadata == nil {
		col.Metadata = make(map[string]string)
	}
	col.Metadata[key] = value
	cfg.Collections[collectionName] = col
	return true
}

// RemoveCollectionMetadata removes a metadata entry. Returns false if not found.
func RemoveCollectionMetadata(cfg *Config, collectionName, key string) bool {
	col, ok := cfg.Collections[collectionName]
	if !ok || col.Metadata == nil {
		return false
	}
	if _, ok := col.Metadata[key]; !ok {
		return false
	}
	delete(col.Metadata, key)
	if len(col.Metadata) == 0 {
		col.Metadata = nil
	}
	cfg.Collections[collectionName] = col
	return true
}
