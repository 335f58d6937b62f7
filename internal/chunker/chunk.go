// Package chunker assembles sentences into overlapping, size-bounded chunks
// and runs the full document pipeline.
package chunker

import (
	"strings"
	"unicode/utf8"
)

type Kind string

const (
	KindTitle   Kind = "title"
	KindContent Kind = "content"

	// TitleKeyword is the only keyword a title chunk carries.
	TitleKeyword = "title"
)

// Structural metadata keys written by the assembler and the pipeline.
const (
	MetaSentenceCount  = "sentence_count"
	MetaHasNumbers     = "has_numbers"
	MetaHasDates       = "has_dates"
	MetaComplexity     = "complexity"
	MetaSectionMarkers = "section_markers"
	MetaIsFinal        = "is_final"
	MetaIsTitle        = "is_title"
)

// Chunk is one retrievable passage of a document.
type Chunk struct {
	Text      string         `json:"text"`
	Index     int            `json:"index"`
	WordCount int            `json:"word_count"`
	CharCount int            `json:"char_count"`
	Kind      Kind           `json:"kind"`
	Keywords  []string       `json:"keywords"`
	Metadata  map[string]any `json:"metadata"`
}

// newChunk trims text and derives the word and rune counts from it.
func newChunk(text string, index int, kind Kind, keywords []string, metadata map[string]any) Chunk {
	text = strings.TrimSpace(text)
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Chunk{
		Text:      text,
		Index:     index,
		WordCount: len(strings.Fields(text)),
		CharCount: utf8.RuneCountInString(text),
		Kind:      kind,
		Keywords:  keywords,
		Metadata:  metadata,
	}
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
