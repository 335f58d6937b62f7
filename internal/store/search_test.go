package store

import (
	"context"
	"testing"
	"time"

	"github.com/ba0f3/lexchunk/internal/chunker"
)

func TestReplaceAndGetChunks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := seedDocument(t, s, "rh", "conges.md", "human-resources", []chunker.Chunk{
		contentChunk(0, "Premier texte."),
		contentChunk(1, "Second texte."),
	})
	if err := s.ReplaceChunks(ctx, id, []chunker.Chunk{
		contentChunk(0, "Nouveau texte du salarié.", "entitlement", "aid"),
	}); err != nil {
		t.Fatalf("ReplaceChunks failed: %v", err)
	}

	chunks, err := s.GetDocumentChunks(ctx, id)
	if err != nil {
		t.Fatalf("GetDocumentChunks failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.Text != "Nouveau texte du salarié." || c.Kind != chunker.KindContent || c.Domain != "human-resources" {
		t.Errorf("Unexpected chunk: %+v", c)
	}
	if len(c.Keywords) != 2 || c.Keywords[1] != "aid" {
		t.Errorf("Unexpected keywords: %v", c.Keywords)
	}
	// JSON numbers come back as float64
	if c.Metadata["sentence_count"] != float64(1) || c.Metadata["source"] != "test" {
		t.Errorf("Unexpected metadata: %v", c.Metadata)
	}
}

func TestSearchChunks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedDocument(t, s, "rh", "conges.md", "human-resources", []chunker.Chunk{
		contentChunk(0, "Le salarié a droit à des congés payés.", "entitlement"),
		contentChunk(1, "Les congés, les congés et encore les congés.", "general"),
	})
	seedDocument(t, s, "fiscal", "tva.md", "economic", []chunker.Chunk{
		contentChunk(0, "La TVA est due sur les congés vendus.", "obligation"),
	})

	results, err := s.SearchChunks(ctx, "CONGÉS", Filter{})
	if err != nil {
		t.Fatalf("SearchChunks failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].Index != 1 || results[0].Path != "conges.md" {
		t.Errorf("Expected the repeated chunk first, got %+v", results[0])
	}
	if results[0].Source != "text" || results[0].Score <= results[1].Score {
		t.Errorf("Unexpected ranking: %v >= %v", results[0].Score, results[1].Score)
	}

	results, _ = s.SearchChunks(ctx, "congés salarié", Filter{})
	if len(results) != 1 {
		t.Errorf("Expected all terms to be required, got %d results", len(results))
	}

	results, _ = s.SearchChunks(ctx, "congés", Filter{Domain: "economic"})
	if len(results) != 1 || results[0].Collection != "fiscal" {
		t.Errorf("Expected the economic chunk only, got %+v", results)
	}

	results, _ = s.SearchChunks(ctx, "congés", Filter{Collection: "rh", Keywords: []string{"entitlement"}})
	if len(results) != 1 || results[0].Index != 0 {
		t.Errorf("Expected the entitlement chunk only, got %+v", results)
	}

	results, _ = s.SearchChunks(ctx, "congés", Filter{Limit: 2})
	if len(results) != 2 {
		t.Errorf("Expected limit 2, got %d", len(results))
	}

	results, _ = s.SearchChunks(ctx, "   ", Filter{})
	if len(results) != 0 {
		t.Errorf("Expected no results for an empty query, got %d", len(results))
	}
}

func TestEmbeddings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	seedDocument(t, s, "rh", "conges.md", "human-resources", []chunker.Chunk{
		contentChunk(0, "Premier."),
		contentChunk(1, "Second."),
		contentChunk(2, "Troisième."),
	})

	items, err := s.ChunksNeedingEmbedding(ctx)
	if err != nil {
		t.Fatalf("ChunksNeedingEmbedding failed: %v", err)
	}
	if len(items) != 3 || items[0].Text != "Premier." || items[0].Path != "rh/conges.md" {
		t.Fatalf("Unexpected items: %+v", items)
	}

	vectors := [][]float32{{1, 0}, {0.8, 0.6}, {0, 1}}
	for i, it := range items {
		if err := s.InsertEmbedding(ctx, it.ChunkID, vectors[i], "test-model", now); err != nil {
			t.Fatalf("InsertEmbedding failed: %v", err)
		}
	}
	if n, _ := s.CountChunksNeedingEmbedding(ctx); n != 0 {
		t.Errorf("Expected no chunk left to embed, got %d", n)
	}

	results, err := s.SearchVectors(ctx, []float32{1, 0}, Filter{MinScore: 0.5})
	if err != nil {
		t.Fatalf("SearchVectors failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results above threshold, got %d", len(results))
	}
	if results[0].Text != "Premier." || results[1].Text != "Second." || results[0].Source != "vec" {
		t.Errorf("Unexpected order: %q %q", results[0].Text, results[1].Text)
	}

	if err := s.ClearAllEmbeddings(ctx); err != nil {
		t.Fatalf("ClearAllEmbeddings failed: %v", err)
	}
	if n, _ := s.CountChunksNeedingEmbedding(ctx); n != 3 {
		t.Errorf("Expected 3 chunks to embed after clear, got %d", n)
	}
}

func TestBlobRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3}
	out := BlobToFloat32Slice(float32SliceToBlob(in))
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("Index %d: expected %v, got %v", i, in[i], out[i])
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{2, 0}); got < 0.999 {
		t.Errorf("Expected ~1, got %v", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}); got != 0 {
		t.Errorf("Expected 0 on dimension mismatch, got %v", got)
	}
}
