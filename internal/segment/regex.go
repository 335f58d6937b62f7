package segment

import (
	"regexp"
	"strings"
)

const abbrevSentinel = "<ABBR>"

var (
	// French abbreviations whose trailing period does not end a sentence.
	abbreviations = regexp.MustCompile(`\b(M|Mme|Dr|etc|cf|ex|art|vol|n°)\.(\s)`)
	boundaries    = regexp.MustCompile(`([.!?]+)\s+|\n\s*\n`)
)

// RegexSegmenter splits on terminal punctuation followed by whitespace and on
// paragraph breaks. Terminators stay attached to their sentence.
type RegexSegmenter struct{}

func NewRegexSegmenter() *RegexSegmenter {
	return &RegexSegmenter{}
}

func (*RegexSegmenter) Name() string { return StrategyRegex }

func (*RegexSegmenter) Segment(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	protected := abbreviations.ReplaceAllString(text, "${1}"+abbrevSentinel+"${2}")

	var out []string
	start := 0
	for _, m := range boundaries.FindAllStringSubmatchIndex(protected, -1) {
		end := m[0]
		if m[2] >= 0 {
			end = m[3]
		}
		out = appendSentence(out, restore(protected[start:end]))
		start = m[1]
	}
	return appendSentence(out, restore(protected[start:]))
}

func restore(s string) string {
	return strings.ReplaceAll(s, abbrevSentinel, ".")
}
