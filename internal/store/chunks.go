package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ba0f3/lexchunk/internal/chunker"
)

// StoredChunk is a chunk row joined with its document.
type StoredChunk struct {
	chunker.Chunk
	ID         int64  `json:"id"`
	DocumentID int64  `json:"document_id"`
	Collection string `json:"collection"`
	Path       string `json:"path"`
	Title      string `json:"title"`
	Domain     string `json:"domain"`
}

func (c *StoredChunk) DisplayPath() string {
	return c.Collection + "/" + c.Path
}

// ReplaceChunks swaps the chunk set of a document in one transaction.
func (s *Store) ReplaceChunks(ctx context.Context, docID int64, chunks []chunker.Chunk) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, docID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (document_id, seq, kind, text, word_count, char_count, keywords, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range chunks {
		keywords, err := json.Marshal(c.Keywords)
		if err != nil {
			return fmt.Errorf("encode keywords of chunk %d: %w", c.Index, err)
		}
		meta := c.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		metadata, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encode metadata of chunk %d: %w", c.Index, err)
		}
		if _, err := stmt.ExecContext(ctx, docID, c.Index, string(c.Kind), c.Text,
			c.WordCount, c.CharCount, string(keywords), string(metadata)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const chunkColumns = `c.id, c.document_id, c.seq, c.kind, c.text, c.word_count, c.char_count,
	c.keywords, c.metadata, d.collection, d.path, d.title, d.domain`

func scanChunk(row rowScanner) (*StoredChunk, error) {
	var sc StoredChunk
	var kind, keywords, metadata string
	if err := row.Scan(&sc.ID, &sc.DocumentID, &sc.Index, &kind, &sc.Text, &sc.WordCount, &sc.CharCount,
		&keywords, &metadata, &sc.Collection, &sc.Path, &sc.Title, &sc.Domain); err != nil {
		return nil, err
	}
	sc.Kind = chunker.Kind(kind)
	if err := json.Unmarshal([]byte(keywords), &sc.Keywords); err != nil {
		return nil, fmt.Errorf("decode keywords of chunk %d: %w", sc.ID, err)
	}
	if err := json.Unmarshal([]byte(metadata), &sc.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata of chunk %d: %w", sc.ID, err)
	}
	return &sc, nil
}

// GetDocumentChunks returns the chunks of a document in sequence order.
func (s *Store) GetDocumentChunks(ctx context.Context, docID int64) ([]StoredChunk, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+chunkColumns+`
		FROM chunks c JOIN documents d ON d.id = c.document_id
		WHERE c.document_id = ?
		ORDER BY c.seq
	`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredChunk
	for rows.Next() {
		sc, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sc)
	}
	return out, rows.Err()
}
