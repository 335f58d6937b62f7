package chunker

import (
	"context"
	"strings"

	"github.com/ba0f3/lexchunk/internal/logger"
	"github.com/ba0f3/lexchunk/internal/segment"
)

// titleMinLen is the trimmed title length a title must exceed to get its own chunk.
const titleMinLen = 10

// structuralKeys are owned by the engine; caller metadata never overrides them.
var structuralKeys = map[string]struct{}{
	MetaSentenceCount:  {},
	MetaHasNumbers:     {},
	MetaHasDates:       {},
	MetaComplexity:     {},
	MetaSectionMarkers: {},
	MetaIsFinal:        {},
	MetaIsTitle:        {},
}

// Document is a unit of input for the pipeline.
type Document struct {
	Title    string
	Content  string
	Metadata map[string]any
}

// Pipeline turns a document into its ordered chunk sequence. It holds no
// mutable state and may be shared between goroutines.
type Pipeline struct {
	sizes     Sizes
	segmenter segment.Segmenter
	assembler *Assembler
	log       logger.Logger
}

// NewPipeline wires a segmenter and tagger into a pipeline. A nil logger
// discards output.
func NewPipeline(sizes Sizes, seg segment.Segmenter, tagger Tagger, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NewNop()
	}
	return &Pipeline{
		sizes:     sizes,
		segmenter: seg,
		assembler: NewAssembler(sizes, tagger),
		log:       log,
	}
}

func (p *Pipeline) Sizes() Sizes { return p.sizes }

func (p *Pipeline) SegmenterName() string { return p.segmenter.Name() }

// Process normalizes, segments and assembles content. The title chunk, when
// present, is at index 0. Content shorter than MinSize yields no chunks.
func (p *Pipeline) Process(title, content string, metadata map[string]any) []Chunk {
	p.log.Debug("Processing document", "title", truncate(title, 50))

	clean := segment.Normalize(content)
	if n := runeLen(clean); n < p.sizes.MinSize {
		p.log.Warn("Document too short, skipping", "title", truncate(title, 50),
			"chars", n, "min_size", p.sizes.MinSize)
		return []Chunk{}
	}

	chunks := make([]Chunk, 0, 8)
	if t := strings.TrimSpace(title); runeLen(t) > titleMinLen {
		meta := copyMetadata(metadata)
		meta[MetaIsTitle] = true
		chunks = append(chunks, newChunk(t, 0, KindTitle, []string{TitleKeyword}, meta))
	}

	sentences := p.segmenter.Segment(clean)
	if len(sentences) == 0 {
		p.log.Warn("No sentences detected", "title", truncate(title, 50))
		return chunks
	}

	for _, c := range p.assembler.Assemble(sentences) {
		p.mergeMetadata(&c, metadata)
		c.Index = len(chunks)
		chunks = append(chunks, c)
	}

	p.log.Debug("Document processed", "title", truncate(title, 50),
		"chunks", len(chunks), "sentences", len(sentences))
	return chunks
}

// ProcessDocument is Process for callers that carry a context.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc Document) ([]Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.Process(doc.Title, doc.Content, doc.Metadata), nil
}

// mergeMetadata adds caller keys that do not collide with structural flags.
func (p *Pipeline) mergeMetadata(c *Chunk, metadata map[string]any) {
	for k, v := range metadata {
		if _, reserved := structuralKeys[k]; reserved {
			p.log.Debug("Dropping caller metadata key", "key", k, "chunk", c.Index)
			continue
		}
		if _, exists := c.Metadata[k]; exists {
			p.log.Debug("Dropping caller metadata key", "key", k, "chunk", c.Index)
			continue
		}
		c.Metadata[k] = v
	}
}

func copyMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
