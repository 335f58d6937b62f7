package chunker

import (
	"regexp"
	"strings"

	"github.com/ba0f3/lexchunk/internal/segment"
)

const (
	DefaultTargetSize = 300
	DefaultOverlap    = 50
	DefaultMinSize    = 100

	// charsPerWord converts the overlap budget into a word count.
	charsPerWord = 10
	// carryWordThreshold is the buffer size above which only a tail is carried.
	carryWordThreshold  = 10
	highComplexityWords = 50
)

var (
	digitPattern = regexp.MustCompile(`[0-9]`)
	datePattern  = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
)

// Sizes holds the chunking limits, in characters.
type Sizes struct {
	TargetSize int
	Overlap    int
	MinSize    int
}

// DefaultSizes returns 300/50/100.
func DefaultSizes() Sizes {
	return Sizes{TargetSize: DefaultTargetSize, Overlap: DefaultOverlap, MinSize: DefaultMinSize}
}

// Tagger assigns content keywords to a chunk's text.
type Tagger interface {
	Tags(text string) []string
}

// Assembler greedily packs sentences up to TargetSize and seeds each chunk
// with a word-based carry from the previous one.
type Assembler struct {
	Sizes
	tagger Tagger
}

func NewAssembler(sizes Sizes, tagger Tagger) *Assembler {
	return &Assembler{Sizes: sizes, tagger: tagger}
}

// Assemble returns content chunks indexed from zero. Chunks shorter than
// MinSize are dropped, and a single sentence longer than TargetSize is kept whole.
func (a *Assembler) Assemble(sentences []string) []Chunk {
	var (
		chunks []Chunk
		buffer string
		carry  string
	)
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		tentative := s
		if buffer != "" {
			tentative = buffer + " " + s
		}
		if runeLen(tentative) > a.TargetSize && buffer != "" {
			text := join(carry, buffer)
			if runeLen(text) >= a.MinSize {
				chunks = append(chunks, a.contentChunk(text, len(chunks), false))
			}
			carry = a.carryFrom(buffer)
			buffer = s
			continue
		}
		buffer = tentative
	}
	if buffer != "" {
		text := join(carry, buffer)
		if runeLen(text) >= a.MinSize {
			chunks = append(chunks, a.contentChunk(text, len(chunks), true))
		}
	}
	return chunks
}

// carryFrom returns the tail of buffer that opens the next chunk: the last
// Overlap/10 words of a long buffer, or the whole of a short one.
func (a *Assembler) carryFrom(buffer string) string {
	words := strings.Fields(buffer)
	if len(words) <= carryWordThreshold {
		return buffer
	}
	n := a.Overlap / charsPerWord
	if n <= 0 {
		return ""
	}
	if n > len(words) {
		n = len(words)
	}
	return strings.Join(words[len(words)-n:], " ")
}

func (a *Assembler) contentChunk(text string, index int, final bool) Chunk {
	text = strings.TrimSpace(text)
	keywords := []string{"general"}
	if a.tagger != nil {
		keywords = a.tagger.Tags(text)
	}
	meta := Flags(text)
	if final {
		meta[MetaIsFinal] = true
	}
	return newChunk(text, index, KindContent, keywords, meta)
}

// Flags computes the structural metadata of a content chunk.
func Flags(text string) map[string]any {
	words := len(strings.Fields(text))
	complexity := "normal"
	if words > highComplexityWords {
		complexity = "high"
	}
	return map[string]any{
		MetaSentenceCount:  strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?"),
		MetaHasNumbers:     digitPattern.MatchString(text),
		MetaHasDates:       datePattern.MatchString(text),
		MetaComplexity:     complexity,
		MetaSectionMarkers: len(segment.DetectSections(text)),
	}
}

func join(carry, buffer string) string {
	return strings.TrimSpace(carry + " " + buffer)
}
