package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// SectionKind labels a structural line.
type SectionKind string

const (
	SectionHeader SectionKind = "section_header"
	ListItem      SectionKind = "list_item"
	Subsection    SectionKind = "subsection"
)

// Section is one structural marker found on a line (zero-based line number).
type Section struct {
	Line int
	Kind SectionKind
	Text string
}

var (
	headerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\p{Lu}[^.]*:$`),                 // SECTION MAJEURE:
		regexp.MustCompile(`^\d+\.\s+\p{Lu}`),                // 1. Titre
		regexp.MustCompile(`^\p{Lu}{2,}`),                    // TITRE EN MAJUSCULES
		regexp.MustCompile(`^-\s+\p{Lu}`),                    // - Point important
		regexp.MustCompile(`^Article\s+(?:[LRD]\.?\s?)?\d+`), // Article 123, Article L. 1234
		regexp.MustCompile(`^Chapitre\s+[IVXLC]+`),           // Chapitre II
	}
	listItemPattern = regexp.MustCompile(`^[-•*]\s+`)
)

// subsectionMaxLen bounds the length of a colon-terminated line treated as a subsection title.
const subsectionMaxLen = 100

// DetectSections scans text line by line. A line may yield several markers,
// e.g. a short "- Conditions:" is both a list item and a subsection.
func DetectSections(text string) []Section {
	var out []Section
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, p := range headerPatterns {
			if p.MatchString(line) {
				out = append(out, Section{Line: i, Kind: SectionHeader, Text: line})
				break
			}
		}
		if listItemPattern.MatchString(line) {
			out = append(out, Section{Line: i, Kind: ListItem, Text: line})
		}
		if utf8.RuneCountInString(line) < subsectionMaxLen && strings.HasSuffix(line, ":") {
			out = append(out, Section{Line: i, Kind: Subsection, Text: line})
		}
	}
	return out
}

// CountSections returns the number of markers per kind.
func CountSections(sections []Section) map[SectionKind]int {
	counts := make(map[SectionKind]int, 3)
	for _, s := range sections {
		counts[s.Kind]++
	}
	return counts
}
