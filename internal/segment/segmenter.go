package segment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ba0f3/lexchunk/internal/logger"
)

const (
	StrategyAuto  = "auto"
	StrategyPunkt = "punkt"
	StrategyRegex = "regex"

	DefaultLanguage = "french"
)

// ErrModelUnavailable reports that the linguistic sentence model could not be loaded.
var ErrModelUnavailable = errors.New("sentence model unavailable")

// Segmenter splits normalized text into sentences, in input order.
// Implementations never return empty or whitespace-only sentences.
type Segmenter interface {
	Segment(text string) []string
	Name() string
}

// Options selects the segmentation strategy.
type Options struct {
	Strategy string
	Language string
}

// NewSegmenter builds the segmenter for opts. With the auto strategy a
// missing model degrades to the regex segmenter and is logged here, once.
func NewSegmenter(opts Options, log logger.Logger) (Segmenter, error) {
	if log == nil {
		log = logger.NewNop()
	}
	lang := strings.TrimSpace(opts.Language)
	if lang == "" {
		lang = DefaultLanguage
	}
	switch strings.ToLower(strings.TrimSpace(opts.Strategy)) {
	case StrategyRegex:
		return NewRegexSegmenter(), nil
	case StrategyPunkt:
		return NewPunktSegmenter(lang)
	case StrategyAuto, "":
		seg, err := NewPunktSegmenter(lang)
		if err != nil {
			log.Warn("Sentence model not loaded, falling back to regex segmentation",
				"language", lang, "error", err)
			return NewRegexSegmenter(), nil
		}
		log.Debug("Sentence model loaded", "segmenter", seg.Name(), "language", lang)
		return seg, nil
	default:
		return nil, fmt.Errorf("segment: unknown strategy %q", opts.Strategy)
	}
}

func appendSentence(out []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}
	return append(out, s)
}
