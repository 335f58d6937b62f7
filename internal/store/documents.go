package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

func HashContent(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

func (s *Store) InsertContent(ctx context.Context, hash, content string, createdAt time.Time) error {
	_, err := s.DB.ExecContext(ctx, `INSERT OR IGNORE INTO content (hash, doc, created_at) VALUES (?, ?, ?)`,
		hash, content, createdAt.Format(time.RFC3339))
	return err
}

type Document struct {
	ID          int64     `json:"id"`
	Collection  string    `json:"collection"`
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Hash        string    `json:"hash"`
	Domain      string    `json:"domain"`
	Subcategory string    `json:"subcategory"`
	Fingerprint string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
	Active      bool      `json:"active"`
}

// DisplayPath is collection/path.
func (d *Document) DisplayPath() string {
	return d.Collection + "/" + d.Path
}

// InsertDocument inserts doc as active and returns its id. A previously
// deactivated row for the same collection and path is revived.
func (s *Store) InsertDocument(ctx context.Context, doc Document) (int64, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO documents (collection, path, title, hash, domain, subcategory, fingerprint, created_at, modified_at, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(collection, path) DO UPDATE SET
			title = excluded.title,
			hash = excluded.hash,
			domain = excluded.domain,
			subcategory = excluded.subcategory,
			fingerprint = excluded.fingerprint,
			modified_at = excluded.modified_at,
			active = 1
		RETURNING id
	`, doc.Collection, doc.Path, doc.Title, doc.Hash, doc.Domain, doc.Subcategory, doc.Fingerprint,
		doc.CreatedAt.Format(time.RFC3339), doc.ModifiedAt.Format(time.RFC3339)).Scan(&id)
	return id, err
}

const documentColumns = `id, collection, path, title, hash, domain, subcategory, fingerprint, created_at, modified_at, active`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var active int
	var createdAt, modifiedAt string
	if err := row.Scan(&doc.ID, &doc.Collection, &doc.Path, &doc.Title, &doc.Hash,
		&doc.Domain, &doc.Subcategory, &doc.Fingerprint, &createdAt, &modifiedAt, &active); err != nil {
		return nil, err
	}
	doc.Active = active == 1
	doc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	doc.ModifiedAt, _ = time.Parse(time.RFC3339, modifiedAt)
	return &doc, nil
}

func (s *Store) FindActiveDocument(ctx context.Context, collection, path string) (*Document, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE collection = ? AND path = ? AND active = 1
	`, collection, path)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	return doc, err
}

// UpdateDocument rewrites the mutable fields of an existing document.
func (s *Store) UpdateDocument(ctx context.Context, doc Document) error {
	_, err := s.DB.ExecContext(ctx, `
		UPDATE documents SET title = ?, hash = ?, domain = ?, subcategory = ?, fingerprint = ?, modified_at = ?
		WHERE id = ?
	`, doc.Title, doc.Hash, doc.Domain, doc.Subcategory, doc.Fingerprint, doc.ModifiedAt.Format(time.RFC3339), doc.ID)
	return err
}

// DeactivateDocument hides a document and drops its chunks.
func (s *Store) DeactivateDocument(ctx context.Context, collection, path string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM chunks WHERE document_id IN (
			SELECT id FROM documents WHERE collection = ? AND path = ? AND active = 1
		)
	`, collection, path); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE documents SET active = 0 WHERE collection = ? AND path = ? AND active = 1`,
		collection, path); err != nil {
		return err
	}
	return tx.Commit()
}

// DeactivateCollection deactivates every document of a collection and returns how many.
func (s *Store) DeactivateCollection(ctx context.Context, collection string) (int, error) {
	paths, err := s.GetActiveDocumentPaths(ctx, collection)
	if err != nil {
		return 0, err
	}
	for _, p := range paths {
		if err := s.DeactivateDocument(ctx, collection, p); err != nil {
			return 0, err
		}
	}
	return len(paths), nil
}

func (s *Store) GetActiveDocumentPaths(ctx context.Context, collection string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT path FROM documents WHERE collection = ? AND active = 1 ORDER BY path`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// CleanupOrphanedContent deletes content no active document points at.
// Inactive documents referencing it go with it through the foreign key.
func (s *Store) CleanupOrphanedContent(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `
		DELETE FROM content
		WHERE hash NOT IN (SELECT DISTINCT hash FROM documents WHERE active = 1)
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListDocuments returns active documents ordered by collection and path.
// An empty collection lists all of them.
func (s *Store) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE active = 1`
	var args []any
	if collection != "" {
		query += ` AND collection = ?`
		args = append(args, collection)
	}
	query += ` ORDER BY collection, path`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, rows.Err()
}

// GetDocumentBody returns the stored content for a document.
// fromLine is 1-based; maxLines limits output lines (0 = all).
func (s *Store) GetDocumentBody(ctx context.Context, collection, path string, fromLine, maxLines int) (string, error) {
	var body string
	err := s.DB.QueryRowContext(ctx, `
		SELECT content.doc
		FROM documents d
		JOIN content ON content.hash = d.hash
		WHERE d.collection = ? AND d.path = ? AND d.active = 1
	`, collection, path).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrDocumentNotFound
	}
	if err != nil {
		return "", err
	}
	if fromLine > 0 || maxLines > 0 {
		body = sliceLines(body, fromLine, maxLines)
	}
	return body, nil
}

func sliceLines(text string, fromLine, maxLines int) string {
	lines := strings.Split(text, "\n")
	if fromLine > 0 {
		if fromLine > len(lines) {
			return ""
		}
		lines = lines[fromLine-1:]
	}
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return strings.Join(lines, "\n")
}

// SplitDisplayPath splits "collection/path/to/file.md" into its collection
// and path. ok is false without a separator.
func SplitDisplayPath(p string) (collection, path string, ok bool) {
	p = strings.TrimPrefix(p, "lexchunk://")
	idx := strings.Index(p, "/")
	if idx <= 0 || idx == len(p)-1 {
		return "", "", false
	}
	return p[:idx], p[idx+1:], true
}
