package store

import (
	"context"
	"encoding/binary"
	"math"
	"time"
)

// EmbedItem is a chunk waiting for its vector.
type EmbedItem struct {
	ChunkID int64
	Title   string
	Text    string
	Path    string
}

// ChunksNeedingEmbedding returns chunks of active documents without a vector.
func (s *Store) ChunksNeedingEmbedding(ctx context.Context) ([]EmbedItem, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT c.id, d.title, c.text, d.collection || '/' || d.path
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		LEFT JOIN chunk_vectors v ON v.chunk_id = c.id
		WHERE d.active = 1 AND v.chunk_id IS NULL
		ORDER BY c.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EmbedItem
	for rows.Next() {
		var it EmbedItem
		if err := rows.Scan(&it.ChunkID, &it.Title, &it.Text, &it.Path); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// CountChunksNeedingEmbedding returns the number of chunks without a vector.
func (s *Store) CountChunksNeedingEmbedding(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		LEFT JOIN chunk_vectors v ON v.chunk_id = c.id
		WHERE d.active = 1 AND v.chunk_id IS NULL
	`).Scan(&n)
	return n, err
}

// InsertEmbedding stores or replaces the vector of a chunk.
func (s *Store) InsertEmbedding(ctx context.Context, chunkID int64, embedding []float32, model string, embeddedAt time.Time) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT OR REPLACE INTO chunk_vectors (chunk_id, model, embedding, embedded_at)
		VALUES (?, ?, ?, ?)
	`, chunkID, model, float32SliceToBlob(embedding), embeddedAt.Format(time.RFC3339))
	return err
}

func float32SliceToBlob(f []float32) []byte {
	b := make([]byte, 4*len(f))
	for i, v := range f {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// BlobToFloat32Slice decodes a BLOB back to float32 slice (for vsearch).
func BlobToFloat32Slice(b []byte) []float32 {
	n := len(b) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

// ClearAllEmbeddings removes every stored vector (force re-embed).
func (s *Store) ClearAllEmbeddings(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM chunk_vectors`)
	return err
}

// SearchVectors does brute-force cosine similarity over the stored vectors of
// chunks matching f. Results under f.MinScore are dropped.
func (s *Store) SearchVectors(ctx context.Context, query []float32, f Filter) ([]SearchResult, error) {
	where, args := f.where()
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+chunkColumns+`, v.embedding
		FROM chunk_vectors v
		JOIN chunks c ON c.id = v.chunk_id
		JOIN documents d ON d.id = c.document_id
		WHERE `+where+`
		ORDER BY d.collection, d.path, c.seq
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []SearchResult{}
	for rows.Next() {
		var blob []byte
		sc, err := scanChunk(vectorRow{rows: rows, blob: &blob})
		if err != nil {
			return nil, err
		}
		score := cosineSimilarity(query, BlobToFloat32Slice(blob))
		if score < f.MinScore {
			continue
		}
		results = append(results, SearchResult{StoredChunk: *sc, Score: score, Source: "vec"})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rank(results, f.Limit), nil
}

// vectorRow appends the embedding column to a chunk scan.
type vectorRow struct {
	rows rowScanner
	blob *[]byte
}

func (r vectorRow) Scan(dest ...any) error {
	return r.rows.Scan(append(dest, r.blob)...)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
