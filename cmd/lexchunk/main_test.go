package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ba0f3/lexchunk/internal/chunker"
	"github.com/ba0f3/lexchunk/internal/store"
)

func result(id int64, score float64) store.SearchResult {
	r := store.SearchResult{Score: score, Source: "text"}
	r.ID = id
	return r
}

func TestReciprocalRankFusion(t *testing.T) {
	t.Run("Should reward chunks found by both rankings", func(t *testing.T) {
		text := []store.SearchResult{result(1, 0.9), result(2, 0.8)}
		vec := []store.SearchResult{result(2, 0.7), result(3, 0.6)}

		got := reciprocalRankFusion([][]store.SearchResult{text, vec}, 0)
		require.Len(t, got, 3)
		assert.Equal(t, int64(2), got[0].ID)
		assert.InDelta(t, 1.0/62+1.0/61, got[0].Score, 1e-9)
		assert.Equal(t, "hybrid", got[0].Source)
		assert.Equal(t, int64(1), got[1].ID)
		assert.Equal(t, int64(3), got[2].ID)
	})

	t.Run("Should apply the limit", func(t *testing.T) {
		got := reciprocalRankFusion([][]store.SearchResult{{result(1, 1), result(2, 1), result(3, 1)}}, 2)
		assert.Len(t, got, 2)
	})

	t.Run("Should tolerate a missing ranking", func(t *testing.T) {
		got := reciprocalRankFusion([][]store.SearchResult{{result(7, 1)}, nil}, 0)
		require.Len(t, got, 1)
		assert.Equal(t, int64(7), got[0].ID)
	})
}

func TestWriteChunks(t *testing.T) {
	chunks := []chunker.Chunk{
		{Text: "Congés payés annuels", Index: 0, WordCount: 3, CharCount: 20, Kind: chunker.KindTitle, Keywords: []string{"title"}},
		{Text: "Le salarié a droit à un congé.", Index: 1, WordCount: 7, CharCount: 30, Kind: chunker.KindContent, Keywords: []string{"entitlement"}},
	}

	t.Run("json keeps accents unescaped", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteChunks(&buf, chunks, "json"))
		var back []chunker.Chunk
		require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
		assert.Equal(t, chunks[1].Text, back[1].Text)
		assert.Contains(t, buf.String(), "salarié")
	})

	t.Run("csv has a header row", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteChunks(&buf, chunks, "csv"))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "index,kind,words,chars,keywords,text", lines[0])
		assert.True(t, strings.HasPrefix(lines[2], "1,content,7,30,entitlement,"))
	})
}

func TestWriteSearchOutput(t *testing.T) {
	r := result(42, 0.456)
	r.Collection, r.Path, r.Title = "droit", "travail/conges.md", "Congés"
	r.Text = strings.Repeat("é", 600)
	r.Keywords = []string{"entitlement"}

	t.Run("cli truncates by runes", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSearchOutput(&buf, rowsFromResults([]store.SearchResult{r}), "cli", false))
		out := buf.String()
		assert.Contains(t, out, "droit/travail/conges.md #42 [0]")
		assert.Contains(t, out, "Score: 46%")
		assert.Contains(t, out, strings.Repeat("é", 500)+"...")
	})

	t.Run("files lists one line per chunk", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSearchOutput(&buf, rowsFromResults([]store.SearchResult{r}), "files", false))
		assert.Equal(t, "#42,0.46,droit/travail/conges.md\n", buf.String())
	})
}

func TestMatchDocuments(t *testing.T) {
	docs := []store.Document{{Path: "travail/conges.md"}, {Path: "travail/paie/bulletin.md"}, {Path: "fiscal/tva.md"}}

	got, err := matchDocuments(docs, "travail/")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = matchDocuments(docs, "**/b*.md")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "travail/paie/bulletin.md", got[0].Path)

	_, err = matchDocuments(docs, "[")
	assert.Error(t, err)
}

func TestReadInput(t *testing.T) {
	content, name, err := readInput(strings.NewReader("Article 1"), "-")
	require.NoError(t, err)
	assert.Equal(t, "Article 1", content)
	assert.Equal(t, "stdin", name)

	_, _, err = readInput(nil, "/does/not/exist.md")
	assert.Error(t, err)
}
