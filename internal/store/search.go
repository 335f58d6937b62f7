package store

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Filter narrows chunk searches. Zero values match everything.
type Filter struct {
	Collection string
	Domain     string
	Keywords   []string
	Limit      int
	MinScore   float64
}

type SearchResult struct {
	StoredChunk
	Score  float64 `json:"score"`
	Source string  `json:"source"`
}

// where builds the shared WHERE clause over chunks c joined to documents d.
func (f Filter) where() (string, []any) {
	clauses := []string{"d.active = 1"}
	var args []any
	if f.Collection != "" {
		clauses = append(clauses, "d.collection = ?")
		args = append(args, f.Collection)
	}
	if f.Domain != "" {
		clauses = append(clauses, "d.domain = ?")
		args = append(args, f.Domain)
	}
	for _, kw := range f.Keywords {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM json_each(c.keywords) WHERE json_each.value = ?)")
		args = append(args, kw)
	}
	return strings.Join(clauses, " AND "), args
}

func (s *Store) filteredChunks(ctx context.Context, f Filter, fn func(*StoredChunk) error) error {
	where, args := f.where()
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+chunkColumns+`
		FROM chunks c JOIN documents d ON d.id = c.document_id
		WHERE `+where+`
		ORDER BY d.collection, d.path, c.seq
	`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		sc, err := scanChunk(rows)
		if err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			return err
		}
	}
	return rows.Err()
}

// SearchChunks finds chunks containing every query term, case-insensitively.
// The score grows with the number of term occurrences.
func (s *Store) SearchChunks(ctx context.Context, query string, f Filter) ([]SearchResult, error) {
	fold := cases.Lower(language.French)
	terms := strings.Fields(fold.String(query))
	if len(terms) == 0 {
		return []SearchResult{}, nil
	}

	results := []SearchResult{}
	err := s.filteredChunks(ctx, f, func(sc *StoredChunk) error {
		text := fold.String(sc.Text)
		hits := 0
		for _, term := range terms {
			n := strings.Count(text, term)
			if n == 0 {
				return nil
			}
			hits += n
		}
		score := float64(hits) / float64(hits+len(terms))
		if score < f.MinScore {
			return nil
		}
		results = append(results, SearchResult{StoredChunk: *sc, Score: score, Source: "text"})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rank(results, f.Limit), nil
}

// rank sorts by descending score, keeping storage order among equals.
func rank(results []SearchResult, limit int) []SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
