package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/ba0f3/lexchunk/internal/chunker"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedDocument stores content and a document with the given chunks.
func seedDocument(t *testing.T, s *Store, collection, path, domain string, chunks []chunker.Chunk) int64 {
	t.Helper()
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)
	content := collection + "/" + path
	hash := HashContent(content)
	if err := s.InsertContent(ctx, hash, content, now); err != nil {
		t.Fatalf("InsertContent failed: %v", err)
	}
	id, err := s.InsertDocument(ctx, Document{
		Collection: collection, Path: path, Title: "Titre " + path, Hash: hash,
		Domain: domain, Subcategory: "general", CreatedAt: now, ModifiedAt: now,
	})
	if err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}
	if err := s.ReplaceChunks(ctx, id, chunks); err != nil {
		t.Fatalf("ReplaceChunks failed: %v", err)
	}
	return id
}

func contentChunk(index int, text string, keywords ...string) chunker.Chunk {
	return chunker.Chunk{
		Text:      text,
		Index:     index,
		WordCount: len(text) / 5,
		CharCount: len([]rune(text)),
		Kind:      chunker.KindContent,
		Keywords:  keywords,
		Metadata:  map[string]any{"sentence_count": 1, "source": "test"},
	}
}

func TestNewStore(t *testing.T) {
	s := newTestStore(t)

	tables := []string{"content", "documents", "chunks", "chunk_vectors"}
	for _, table := range tables {
		var name string
		err := s.DB.QueryRow("SELECT name FROM sqlite_master WHERE name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}
}

func TestNewStore_AddsFingerprintColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.sqlite")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		path TEXT NOT NULL,
		title TEXT NOT NULL,
		hash TEXT NOT NULL,
		domain TEXT NOT NULL DEFAULT 'other',
		subcategory TEXT NOT NULL DEFAULT 'general',
		created_at TEXT NOT NULL,
		modified_at TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		UNIQUE(collection, path)
	)`)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err = db.Exec(`INSERT INTO documents (collection, path, title, hash, created_at, modified_at)
		VALUES ('droit', 'a.md', 'A', 'h', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	db.Close()

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer s.Close()

	doc, err := s.FindActiveDocument(context.Background(), "droit", "a.md")
	if err != nil {
		t.Fatalf("FindActiveDocument failed: %v", err)
	}
	if doc.Fingerprint != "" {
		t.Errorf("Expected empty fingerprint, got %q", doc.Fingerprint)
	}

	// Opening again leaves the migrated schema alone.
	s2, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	s2.Close()
}

func TestGetStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedDocument(t, s, "rh", "conges.md", "human-resources", []chunker.Chunk{
		contentChunk(0, "Le salarié a droit à des congés.", "entitlement"),
		contentChunk(1, "L'employeur doit fixer les dates.", "obligation"),
	})
	seedDocument(t, s, "fiscal", "tva.md", "economic", []chunker.Chunk{
		contentChunk(0, "La TVA est déclarée chaque mois.", "general"),
	})

	st, err := s.GetStatus(ctx)
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if st.DocCount != 2 || st.ChunkCount != 3 {
		t.Errorf("Expected 2 documents and 3 chunks, got %d and %d", st.DocCount, st.ChunkCount)
	}
	if st.NeedsEmbedding != 3 || st.VectorCount != 0 {
		t.Errorf("Expected 3 chunks needing embedding and no vectors, got %d and %d", st.NeedsEmbedding, st.VectorCount)
	}
	if st.Domains["human-resources"] != 1 || st.Domains["economic"] != 1 {
		t.Errorf("Unexpected domain counts: %v", st.Domains)
	}
	if len(st.Collections) != 2 || st.Collections[0].Name != "fiscal" || st.Collections[1].ChunkCount != 2 {
		t.Errorf("Unexpected collections: %+v", st.Collections)
	}
	if st.AvgChunkChars == 0 {
		t.Error("Expected a non-zero average chunk size")
	}
}
