// Package segment turns raw document text into normalized text, structural
// line markers and an ordered list of sentences.
package segment

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	typographic = strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		"\u00a0", " ", // no-break space
		"\u202f", " ", // narrow no-break space
		"\u2019", "'",
		"\u2018", "'",
		"\u2013", "-",
		"\u2014", "-",
	)
	horizontalSpace  = regexp.MustCompile(`[^\S\n]+`)
	spaceBeforePunct = regexp.MustCompile(` +([,.!?;:])`)
	blankLineRuns    = regexp.MustCompile(`\n{3,}`)
)

func isPunct(r rune) bool {
	switch r {
	case ',', '.', '!', '?', ';', ':':
		return true
	}
	return false
}

// closers may follow a punctuation mark without a separating space.
func isCloser(r rune) bool {
	switch r {
	case ')', ']', '"', '\'', '»':
		return true
	}
	return false
}

// Normalize canonicalizes whitespace, typographic characters and spacing
// around punctuation. Paragraph breaks survive as a single blank line.
func Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	text = typographic.Replace(text)
	text = norm.NFC.String(text)
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = spaceAfterPunct(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLineRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// spaceAfterPunct forces exactly one space after ,.!?;: unless the mark ends
// a line, precedes another mark or a closer, or sits between two digits.
func spaceAfterPunct(text string) string {
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text) + len(text)/16)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		b.WriteRune(r)
		if !isPunct(r) {
			continue
		}
		j := i + 1
		for j < len(runes) && runes[j] == ' ' {
			j++
		}
		skipped := j > i+1
		i = j - 1
		if j >= len(runes) {
			continue
		}
		next := runes[j]
		switch {
		case next == '\n', isPunct(next), isCloser(next):
		case !skipped && i > 0 && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(next):
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}
