package llm

import (
	"strings"
	"unicode/utf8"
)

// MaxEmbedChars bounds the text sent for one embedding.
const MaxEmbedChars = 512

// PrepareForEmbedding trims text and cuts it to max runes. The cut moves back
// to the last space when that space lies past 80% of max. The second result
// reports whether the text was truncated.
func PrepareForEmbedding(text string, max int) (string, bool) {
	text = strings.TrimSpace(text)
	if max <= 0 {
		max = MaxEmbedChars
	}
	if utf8.RuneCountInString(text) <= max {
		return text, false
	}
	r := []rune(text)[:max]
	cut := string(r)
	if i := strings.LastIndex(cut, " "); i >= 0 && utf8.RuneCountInString(cut[:i]) > max*8/10 {
		cut = cut[:i]
	}
	return cut, true
}

// FormatChunkForEmbedding prefixes a chunk with its document title.
func FormatChunkForEmbedding(title, text string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "text: " + text
	}
	return "title: " + title + " | text: " + text
}

// FormatQueryForEmbedding prefixes a search query for asymmetric retrieval.
func FormatQueryForEmbedding(query string) string {
	return "task: search result | query: " + strings.TrimSpace(query)
}
