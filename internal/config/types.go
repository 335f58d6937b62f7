package config

import "github.com/ba0f3/lexchunk/internal/classify"

type Collection struct {
	Path     string            `yaml:"path" validate:"required"`
	Pattern  string            `yaml:"pattern"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// Chunking holds the assembler limits, in characters.
type Chunking struct {
	TargetSize int `yaml:"target_size" validate:"gt=0"`
	Overlap    int `yaml:"overlap" validate:"gte=0,ltfield=TargetSize"`
	MinSize    int `yaml:"min_size" validate:"gte=0,ltefield=TargetSize"`
}

type Segmenter struct {
	Strategy string `yaml:"strategy" validate:"omitempty,oneof=auto punkt regex"`
	Language string `yaml:"language"`
}

type Embedding struct {
	BaseURL string `yaml:"base_url,omitempty" validate:"omitempty,url"`
	Model   string `yaml:"model,omitempty"`
}

// Categories overrides the built-in keyword tables. Empty tables keep the defaults.
type Categories struct {
	Domains       classify.Table `yaml:"domains,omitempty" validate:"omitempty,dive"`
	Subcategories classify.Table `yaml:"subcategories,omitempty" validate:"omitempty,dive"`
	ContentTags   classify.Table `yaml:"content_tags,omitempty" validate:"omitempty,dive"`
}

type Config struct {
	Chunking    Chunking              `yaml:"chunking"`
	Segmenter   Segmenter             `yaml:"segmenter"`
	Embedding   Embedding             `yaml:"embedding,omitempty"`
	Categories  Categories            `yaml:"categories,omitempty"`
	Collections map[string]Collection `yaml:"collections" validate:"dive"`
}
