package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ba0f3/lexchunk/internal/classify"
)

func texts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

func TestAssembler_Assemble(t *testing.T) {
	tagger := classify.NewContentTagger(classify.DefaultContentTable())

	t.Run("Should carry the previous buffer into the next chunk", func(t *testing.T) {
		a := NewAssembler(Sizes{TargetSize: 60, Overlap: 10, MinSize: 20}, tagger)
		chunks := a.Assemble([]string{
			"Article 1.",
			"Le salarié a droit à une formation professionnelle.",
			"Article 2.",
			"L'employeur doit financer cette formation selon les modalités prévues.",
		})
		require.Len(t, chunks, 3)
		assert.Equal(t, []string{
			"Article 1. Le salarié a droit à une formation professionnelle.",
			"Le salarié a droit à une formation professionnelle. Article 2.",
			"Article 2. L'employeur doit financer cette formation selon les modalités prévues.",
		}, texts(chunks))
		for i, c := range chunks {
			assert.Equal(t, i, c.Index)
			assert.Equal(t, KindContent, c.Kind)
			assert.GreaterOrEqual(t, c.CharCount, 20)
		}
		assert.Equal(t, 62, chunks[0].CharCount)
		assert.Equal(t, []string{"entitlement"}, chunks[0].Keywords)
		assert.Equal(t, []string{"obligation"}, chunks[2].Keywords)
		assert.Equal(t, true, chunks[2].Metadata[MetaIsFinal])
		assert.NotContains(t, chunks[0].Metadata, MetaIsFinal)
	})

	t.Run("Should keep an oversized sentence whole", func(t *testing.T) {
		a := NewAssembler(Sizes{TargetSize: 20, Overlap: 10, MinSize: 5}, nil)
		long := "Une phrase beaucoup trop longue pour la cible."
		chunks := a.Assemble([]string{long, "Courte."})
		require.Len(t, chunks, 2)
		assert.Equal(t, long, chunks[0].Text)
		assert.Equal(t, long+" Courte.", chunks[1].Text)
		assert.Equal(t, []string{"general"}, chunks[0].Keywords)
	})

	t.Run("Should carry only the last words of a long buffer", func(t *testing.T) {
		sentences := []string{
			"un deux trois quatre cinq six sept huit neuf dix onze douze.",
			"Deuxième phrase assez longue pour déborder.",
		}
		chunks := NewAssembler(Sizes{TargetSize: 80, Overlap: 30, MinSize: 10}, nil).Assemble(sentences)
		require.Len(t, chunks, 2)
		assert.Equal(t, "dix onze douze. Deuxième phrase assez longue pour déborder.", chunks[1].Text)

		chunks = NewAssembler(Sizes{TargetSize: 80, Overlap: 5, MinSize: 10}, nil).Assemble(sentences)
		require.Len(t, chunks, 2)
		assert.Equal(t, sentences[1], chunks[1].Text)
	})

	t.Run("Should drop chunks below the minimum size", func(t *testing.T) {
		a := NewAssembler(Sizes{TargetSize: 60, Overlap: 10, MinSize: 100}, nil)
		assert.Empty(t, a.Assemble([]string{"Court.", "Encore court."}))
	})

	t.Run("Should return nothing for no sentences", func(t *testing.T) {
		a := NewAssembler(DefaultSizes(), nil)
		assert.Empty(t, a.Assemble(nil))
		assert.Empty(t, a.Assemble([]string{"", "  "}))
	})

	t.Run("Should not lose sentences", func(t *testing.T) {
		var sentences []string
		for _, w := range []string{"premier", "deuxième", "troisième", "quatrième", "cinquième", "sixième", "septième"} {
			sentences = append(sentences, "Voici le "+w+" alinéa du texte.")
		}
		chunks := NewAssembler(Sizes{TargetSize: 120, Overlap: 30, MinSize: 20}, tagger).Assemble(sentences)
		require.NotEmpty(t, chunks)
		joined := strings.Join(texts(chunks), " ")
		for _, s := range sentences {
			assert.Contains(t, joined, s)
		}
		for i, c := range chunks {
			assert.Equal(t, i, c.Index)
			assert.GreaterOrEqual(t, c.CharCount, 20)
			assert.LessOrEqual(t, c.CharCount, 120+60)
		}
	})
}

func TestFlags(t *testing.T) {
	t.Run("Should compute structural flags", func(t *testing.T) {
		f := Flags("Le 12/03/2024, 3 salariés. Vraiment ?")
		assert.Equal(t, 2, f[MetaSentenceCount])
		assert.Equal(t, true, f[MetaHasNumbers])
		assert.Equal(t, true, f[MetaHasDates])
		assert.Equal(t, "normal", f[MetaComplexity])
		assert.Equal(t, 0, f[MetaSectionMarkers])
	})

	t.Run("Should flag long text as complex", func(t *testing.T) {
		f := Flags("Article 3 " + strings.Repeat("mot ", 60))
		assert.Equal(t, "high", f[MetaComplexity])
		assert.Equal(t, false, f[MetaHasDates])
		assert.Equal(t, 1, f[MetaSectionMarkers])
	})
}
