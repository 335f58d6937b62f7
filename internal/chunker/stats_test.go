package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	t.Run("Should return zero stats for no chunks", func(t *testing.T) {
		assert.Equal(t, Stats{}, Summarize(nil))
	})

	t.Run("Should bucket chunks by size", func(t *testing.T) {
		chunks := []Chunk{
			newChunk("Un titre de document", 0, KindTitle, []string{TitleKeyword}, nil),
			newChunk(strings.Repeat("a", 200), 1, KindContent, nil, nil),
			newChunk(strings.Repeat("é", 400), 2, KindContent, nil, nil),
			newChunk(strings.Repeat("b", 401), 3, KindContent, nil, nil),
		}
		st := Summarize(chunks)
		assert.Equal(t, 4, st.TotalChunks)
		assert.Equal(t, 20+200+400+401, st.TotalChars)
		assert.Equal(t, 4+1+1+1, st.TotalWords)
		assert.Equal(t, (20+200+400+401)/4, st.AvgChunkSize)
		assert.Equal(t, map[Kind]int{KindTitle: 1, KindContent: 3}, st.ByKind)
		assert.Equal(t, SizeDistribution{Small: 1, Medium: 2, Large: 1}, st.Sizes)
	})
}
