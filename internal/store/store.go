package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ErrDocumentNotFound is returned when no active document matches.
var ErrDocumentNotFound = errors.New("document not found")

type Store struct {
	DB     *sql.DB
	DBPath string
}

func GetDefaultDbPath(indexName string) (string, error) {
	if path := os.Getenv("LEXCHUNK_INDEX_PATH"); path != "" {
		return path, nil
	}
	if indexName == "" {
		indexName = "index"
	}

	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		cacheDir = filepath.Join(home, ".cache")
	}

	dir := filepath.Join(cacheDir, "lexchunk")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("%s.sqlite", indexName)), nil
}

func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		var err error
		dbPath, err = GetDefaultDbPath("index")
		if err != nil {
			return nil, err
		}
	}

	// Enable WAL mode via DSN
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{DB: db, DBPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Status holds index status for the status command.
type Status struct {
	DBPath         string             `json:"db_path"`
	DocCount       int                `json:"documents"`
	ChunkCount     int                `json:"chunks"`
	VectorCount    int                `json:"vectors"`
	NeedsEmbedding int                `json:"needs_embedding"`
	AvgChunkChars  int                `json:"avg_chunk_chars"`
	Domains        map[string]int     `json:"domains"`
	Collections    []CollectionStatus `json:"collections"`
}

// CollectionStatus is per-collection stats.
type CollectionStatus struct {
	Name         string `json:"name"`
	ActiveCount  int    `json:"documents"`
	ChunkCount   int    `json:"chunks"`
	LastModified string `json:"last_modified"`
}

// GetStatus returns document, chunk and vector counts with per-domain and
// per-collection breakdowns.
func (s *Store) GetStatus(ctx context.Context) (*Status, error) {
	st := &Status{DBPath: s.DBPath, Domains: make(map[string]int)}
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE active = 1`).Scan(&st.DocCount); err != nil {
		return nil, err
	}
	var avg sql.NullFloat64
	err := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), AVG(c.char_count)
		FROM chunks c JOIN documents d ON d.id = c.document_id
		WHERE d.active = 1
	`).Scan(&st.ChunkCount, &avg)
	if err != nil {
		return nil, err
	}
	if avg.Valid {
		st.AvgChunkChars = int(avg.Float64)
	}
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunk_vectors`).Scan(&st.VectorCount); err != nil {
		return nil, err
	}
	if st.NeedsEmbedding, err = s.CountChunksNeedingEmbedding(ctx); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT domain, COUNT(*) FROM documents WHERE active = 1 GROUP BY domain ORDER BY domain
	`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var domain string
		var n int
		if err := rows.Scan(&domain, &n); err != nil {
			rows.Close()
			return nil, err
		}
		st.Domains[domain] = n
	}
	rows.Close()

	rows, err = s.DB.QueryContext(ctx, `
		SELECT d.collection, COUNT(DISTINCT d.id), COUNT(c.id), MAX(d.modified_at)
		FROM documents d LEFT JOIN chunks c ON c.document_id = d.id
		WHERE d.active = 1
		GROUP BY d.collection
		ORDER BY d.collection
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c CollectionStatus
		var lastMod sql.NullString
		if err := rows.Scan(&c.Name, &c.ActiveCount, &c.ChunkCount, &lastMod); err != nil {
			return nil, err
		}
		if lastMod.Valid {
			c.LastModified = lastMod.String
		}
		st.Collections = append(st.Collections, c)
	}
	return st, rows.Err()
}

func (s *Store) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS content (
			hash TEXT PRIMARY KEY,
			doc TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			path TEXT NOT NULL,
			title TEXT NOT NULL,
			hash TEXT NOT NULL,
			domain TEXT NOT NULL DEFAULT 'other',
			subcategory TEXT NOT NULL DEFAULT 'general',
			fingerprint TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			modified_at TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			FOREIGN KEY (hash) REFERENCES content(hash) ON DELETE CASCADE,
			UNIQUE(collection, path)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection, active)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(hash)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_domain ON documents(domain, active)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			text TEXT NOT NULL,
			word_count INTEGER NOT NULL,
			char_count INTEGER NOT NULL,
			keywords TEXT NOT NULL DEFAULT '[]',
			metadata TEXT NOT NULL DEFAULT '{}',
			FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE,
			UNIQUE(document_id, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS chunk_vectors (
			chunk_id INTEGER PRIMARY KEY,
			model TEXT NOT NULL,
			embedding BLOB NOT NULL,
			embedded_at TEXT NOT NULL,
			FOREIGN KEY (chunk_id) REFERENCES chunks(id) ON DELETE CASCADE
		)`,
	}

	for _, query := range queries {
		if _, err := s.DB.Exec(query); err != nil {
			return fmt.Errorf("schema init failed: %w (query: %s)", err, query)
		}
	}

	// Indexes created before fingerprints were recorded.
	return s.ensureColumn("documents", "fingerprint", `TEXT NOT NULL DEFAULT ''`)
}

func (s *Store) ensureColumn(table, column, decl string) error {
	rows, err := s.DB.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()
	if _, err := s.DB.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, decl)); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}
	return nil
}
