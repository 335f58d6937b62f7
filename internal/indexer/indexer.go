// Package indexer walks collections, chunks their files and keeps the store
// in sync with the filesystem.
package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/ba0f3/lexchunk/internal/chunker"
	"github.com/ba0f3/lexchunk/internal/classify"
	"github.com/ba0f3/lexchunk/internal/config"
	"github.com/ba0f3/lexchunk/internal/logger"
	"github.com/ba0f3/lexchunk/internal/store"
)

const DefaultPattern = "**/*.md"

// Result counts what one collection pass did.
type Result struct {
	Indexed   int `json:"indexed"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Removed   int `json:"removed"`
	Skipped   int `json:"skipped"`
	Chunks    int `json:"chunks"`
}

func (r Result) String() string {
	return fmt.Sprintf("Indexed %d new, Updated %d, Unchanged %d, Removed %d, Skipped %d (%d chunks)",
		r.Indexed, r.Updated, r.Unchanged, r.Removed, r.Skipped, r.Chunks)
}

// Workers bounds the number of files processed concurrently.
var Workers = runtime.NumCPU()

// processed is the outcome for one file, computed off the store.
type processed struct {
	relPath     string
	title       string
	content     string
	hash        string
	modTime     time.Time
	domain      string
	subcategory string
	fingerprint string
	chunks      []chunker.Chunk
}

// IndexCollection indexes every file of col matching its pattern. Files are
// read, classified and chunked concurrently; store writes stay sequential.
func IndexCollection(ctx context.Context, s *store.Store, p *chunker.Pipeline, cls *classify.Classifiers,
	name string, col config.Collection) (Result, error) {
	log := logger.FromContext(ctx).With("collection", name)
	var res Result

	pattern := col.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	files, err := doublestar.Glob(os.DirFS(col.Path), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return res, fmt.Errorf("glob %s in %s: %w", pattern, col.Path, err)
	}

	fp := fingerprint(p, cls, col)
	var (
		mu   sync.Mutex
		docs = make([]*processed, len(files))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(Workers, 1))
	for i, relPath := range files {
		g.Go(func() error {
			doc, err := processFile(gctx, p, cls, name, col, relPath)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn("Skipping file", "path", relPath, "error", err)
				mu.Lock()
				res.Skipped++
				mu.Unlock()
				return nil
			}
			doc.fingerprint = fp
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	seen := make(map[string]bool, len(files))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		seen[doc.relPath] = true
		status, err := save(ctx, s, name, doc)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			log.Error("Error saving document", "path", doc.relPath, "error", err)
			res.Skipped++
			continue
		}
		switch status {
		case statusIndexed:
			res.Indexed++
			res.Chunks += len(doc.chunks)
		case statusUpdated:
			res.Updated++
			res.Chunks += len(doc.chunks)
		default:
			res.Unchanged++
		}
	}

	// Handle deletions
	activePaths, err := s.GetActiveDocumentPaths(ctx, name)
	if err != nil {
		return res, fmt.Errorf("get active documents: %w", err)
	}
	for _, path := range activePaths {
		if seen[path] {
			continue
		}
		if err := s.DeactivateDocument(ctx, name, path); err != nil {
			log.Error("Error deactivating document", "path", path, "error", err)
			continue
		}
		res.Removed++
	}

	// Cleanup orphans
	if _, err := s.CleanupOrphanedContent(ctx); err != nil {
		log.Error("Error cleaning up orphans", "error", err)
	}

	log.Info("Collection indexed", "indexed", res.Indexed, "updated", res.Updated,
		"unchanged", res.Unchanged, "removed", res.Removed, "skipped", res.Skipped, "chunks", res.Chunks)
	return res, nil
}

func processFile(ctx context.Context, p *chunker.Pipeline, cls *classify.Classifiers,
	name string, col config.Collection, relPath string) (*processed, error) {
	fullPath := filepath.Join(col.Path, relPath)
	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, err
	}
	contentBytes, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, err
	}
	content := string(contentBytes)
	title, body := SplitTitle(content, relPath)
	domain := cls.Domain.Classify(title, content)
	_, subcategory := cls.Subcategory.Classify(title, content)

	meta := map[string]any{}
	for k, v := range col.Metadata {
		meta[k] = v
	}
	meta["source_id"] = store.HashContent(name + "/" + relPath)[:12]
	meta["collection"] = name
	meta["path"] = relPath
	meta["domain"] = domain
	meta["subcategory"] = subcategory

	chunks, err := p.ProcessDocument(ctx, chunker.Document{
		Title:    title,
		Content:  body,
		Metadata: meta,
	})
	if err != nil {
		return nil, err
	}
	return &processed{
		relPath:     relPath,
		title:       title,
		content:     content,
		hash:        store.HashContent(content),
		modTime:     info.ModTime(),
		domain:      domain,
		subcategory: subcategory,
		chunks:      chunks,
	}, nil
}

type saveStatus int

const (
	statusUnchanged saveStatus = iota
	statusIndexed
	statusUpdated
)

func save(ctx context.Context, s *store.Store, name string, doc *processed) (saveStatus, error) {
	now := time.Now()
	existing, err := s.FindActiveDocument(ctx, name, doc.relPath)
	if err == nil && existing.Hash == doc.hash && existing.Fingerprint == doc.fingerprint {
		return statusUnchanged, nil
	}
	if err := s.InsertContent(ctx, doc.hash, doc.content, now); err != nil {
		return 0, fmt.Errorf("insert content: %w", err)
	}

	status := statusIndexed
	var id int64
	if err == nil {
		existing.Title = doc.title
		existing.Hash = doc.hash
		existing.Domain = doc.domain
		existing.Subcategory = doc.subcategory
		existing.Fingerprint = doc.fingerprint
		existing.ModifiedAt = now
		if err := s.UpdateDocument(ctx, *existing); err != nil {
			return 0, fmt.Errorf("update document: %w", err)
		}
		id = existing.ID
		status = statusUpdated
	} else {
		id, err = s.InsertDocument(ctx, store.Document{
			Collection:  name,
			Path:        doc.relPath,
			Title:       doc.title,
			Hash:        doc.hash,
			Domain:      doc.domain,
			Subcategory: doc.subcategory,
			Fingerprint: doc.fingerprint,
			CreatedAt:   doc.modTime,
			ModifiedAt:  now,
		})
		if err != nil {
			return 0, fmt.Errorf("insert document: %w", err)
		}
	}
	if err := s.ReplaceChunks(ctx, id, doc.chunks); err != nil {
		return 0, fmt.Errorf("replace chunks: %w", err)
	}
	return status, nil
}

// fingerprint hashes what shapes a document's chunks besides its content:
// chunk sizes, segmenter, classifier tables and collection metadata. When it
// changes, unchanged files are chunked again.
func fingerprint(p *chunker.Pipeline, cls *classify.Classifiers, col config.Collection) string {
	b, err := json.Marshal(struct {
		Sizes     chunker.Sizes     `json:"sizes"`
		Segmenter string            `json:"segmenter"`
		Tables    classify.Tables   `json:"tables"`
		Metadata  map[string]string `json:"metadata"`
	}{p.Sizes(), p.SegmenterName(), cls.Tables(), col.Metadata})
	if err != nil {
		return ""
	}
	return store.HashContent(string(b))
}

const maxTitleRunes = 120

// SplitTitle returns the document title and the content without the line the
// title was taken from. The title is the first markdown heading, else the
// first non-empty line, else the file name without extension. A first line
// cut to maxTitleRunes stays in the body, as does everything when the title
// comes from the file name.
func SplitTitle(content, relPath string) (title, body string) {
	lines := strings.Split(content, "\n")
	first := -1
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if t := strings.TrimSpace(strings.TrimLeft(line, "#")); t != "" {
				return t, dropLine(lines, i)
			}
			continue
		}
		if first < 0 {
			first = i
		}
	}
	if first >= 0 {
		line := strings.TrimSpace(lines[first])
		if r := []rune(line); len(r) > maxTitleRunes {
			return string(r[:maxTitleRunes]), content
		}
		return line, dropLine(lines, first)
	}
	base := filepath.Base(relPath)
	return strings.TrimSuffix(base, filepath.Ext(base)), content
}

func dropLine(lines []string, i int) string {
	out := make([]string, 0, len(lines)-1)
	out = append(out, lines[:i]...)
	out = append(out, lines[i+1:]...)
	return strings.Join(out, "\n")
}
