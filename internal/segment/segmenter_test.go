package segment

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ba0f3/lexchunk/internal/logger"
)

func TestRegexSegmenter(t *testing.T) {
	seg := NewRegexSegmenter()

	t.Run("Should split on terminal punctuation and keep terminators", func(t *testing.T) {
		got := seg.Segment("Article 1. Le salarié a droit à une formation! Est-ce payé? Oui.")
		assert.Equal(t, []string{
			"Article 1.",
			"Le salarié a droit à une formation!",
			"Est-ce payé?",
			"Oui.",
		}, got)
	})

	t.Run("Should protect French abbreviations", func(t *testing.T) {
		got := seg.Segment("M. Dupont cite l'art. 12, cf. annexe, etc. et le n°. 4 du vol. 2. Fin du texte.")
		assert.Equal(t, []string{
			"M. Dupont cite l'art. 12, cf. annexe, etc. et le n°. 4 du vol. 2.",
			"Fin du texte.",
		}, got)
	})

	t.Run("Should treat paragraph breaks as boundaries", func(t *testing.T) {
		got := seg.Segment("Titre sans point\n\nPremier paragraphe.")
		assert.Equal(t, []string{"Titre sans point", "Premier paragraphe."}, got)
	})

	t.Run("Should collapse runs of terminators", func(t *testing.T) {
		got := seg.Segment("Vraiment?! Oui... Bien.")
		assert.Equal(t, []string{"Vraiment?!", "Oui...", "Bien."}, got)
	})

	t.Run("Should keep a trailing fragment without terminator", func(t *testing.T) {
		assert.Equal(t, []string{"Phrase.", "suite"}, seg.Segment("Phrase. suite"))
	})

	t.Run("Should drop empty fragments", func(t *testing.T) {
		assert.Nil(t, seg.Segment("   "))
		assert.Equal(t, []string{"Un."}, seg.Segment("Un.   \n\n   "))
	})

	t.Run("Should report its strategy", func(t *testing.T) {
		assert.Equal(t, StrategyRegex, seg.Name())
	})
}

func TestNewSegmenter(t *testing.T) {
	t.Run("Should force the regex strategy", func(t *testing.T) {
		seg, err := NewSegmenter(Options{Strategy: "regex"}, nil)

		require.NoError(t, err)
		assert.Equal(t, StrategyRegex, seg.Name())
	})

	t.Run("Should reject unknown strategies", func(t *testing.T) {
		_, err := NewSegmenter(Options{Strategy: "neural"}, nil)

		assert.Error(t, err)
	})

	t.Run("Should fail hard for a missing model with the punkt strategy", func(t *testing.T) {
		_, err := NewSegmenter(Options{Strategy: StrategyPunkt, Language: "klingon"}, nil)

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrModelUnavailable))
	})

	t.Run("Should fall back to regex for a missing model with the auto strategy", func(t *testing.T) {
		seg, err := NewSegmenter(Options{Strategy: StrategyAuto, Language: "klingon"}, logger.NewNop())

		require.NoError(t, err)
		assert.Equal(t, StrategyRegex, seg.Name())
		assert.Equal(t, []string{"Un.", "Deux."}, seg.Segment("Un. Deux."))
	})
}

func TestPunktSegmenter(t *testing.T) {
	const articles = "Article 1. Le salarié a droit à une formation professionnelle. " +
		"Article 2. L'employeur doit financer cette formation selon les modalités prévues."

	t.Run("Should load the French model with the auto strategy", func(t *testing.T) {
		seg, err := NewSegmenter(Options{Strategy: StrategyAuto}, nil)

		require.NoError(t, err)
		assert.Equal(t, "punkt:french", seg.Name())

		got := seg.Segment(articles)
		require.GreaterOrEqual(t, len(got), 2)
		assert.True(t, strings.HasSuffix(got[len(got)-1], "prévues."))
		assert.Equal(t, strings.Fields(articles), strings.Fields(strings.Join(got, " ")))

		var split bool
		for _, s := range got {
			if strings.HasSuffix(s, "professionnelle.") {
				split = true
			}
		}
		assert.True(t, split, "expected a boundary after the first article: %q", got)
	})

	t.Run("Should load the French model with the punkt strategy", func(t *testing.T) {
		seg, err := NewSegmenter(Options{Strategy: StrategyPunkt, Language: DefaultLanguage}, nil)

		require.NoError(t, err)
		assert.Equal(t, "punkt:french", seg.Name())
	})

	t.Run("Should still load the English data compiled into the sentences module", func(t *testing.T) {
		seg, err := NewPunktSegmenter("english")

		require.NoError(t, err)
		assert.Equal(t, []string{"This is one.", "This is two."}, seg.Segment("This is one. This is two."))
	})
}
