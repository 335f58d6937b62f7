package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSections(t *testing.T) {
	t.Run("Should detect headers, list items and subsections", func(t *testing.T) {
		text := "CONDITIONS GENERALES\n" +
			"1. Champ d'application\n" +
			"Le texte courant ne compte pas.\n" +
			"\n" +
			"Article L. 1234 du code du travail\n" +
			"Chapitre IV\n" +
			"• premier point\n" +
			"Pièces à fournir:"

		sections := DetectSections(text)
		counts := CountSections(sections)

		assert.Equal(t, 5, counts[SectionHeader])
		assert.Equal(t, 1, counts[ListItem])
		assert.Equal(t, 1, counts[Subsection])

		require.NotEmpty(t, sections)
		assert.Equal(t, 0, sections[0].Line)
		assert.Equal(t, "CONDITIONS GENERALES", sections[0].Text)
	})

	t.Run("Should report a dash item as both header and list item", func(t *testing.T) {
		sections := DetectSections("- Point important")

		require.Len(t, sections, 2)
		assert.Equal(t, SectionHeader, sections[0].Kind)
		assert.Equal(t, ListItem, sections[1].Kind)
	})

	t.Run("Should ignore plain prose", func(t *testing.T) {
		assert.Empty(t, DetectSections("le salarié a droit à une formation."))
	})
}
