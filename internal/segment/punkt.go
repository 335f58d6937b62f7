package segment

import (
	"embed"
	"fmt"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/data"
)

// Punkt training files shipped with this package. The sentences module only
// compiles english.json into its data package.
//
//go:embed data/*.json
var trainingFS embed.FS

// PunktSegmenter delegates boundary detection to a trained Punkt model.
type PunktSegmenter struct {
	language  string
	tokenizer *sentences.DefaultSentenceTokenizer
}

func loadTraining(language string) ([]byte, error) {
	name := fmt.Sprintf("data/%s.json", language)
	if b, err := trainingFS.ReadFile(name); err == nil {
		return b, nil
	}
	return data.Asset(name)
}

// NewPunktSegmenter loads the Punkt training data for language (e.g.
// "french"). Errors wrap ErrModelUnavailable.
func NewPunktSegmenter(language string) (*PunktSegmenter, error) {
	b, err := loadTraining(language)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelUnavailable, language, err)
	}
	training, err := sentences.LoadTraining(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelUnavailable, language, err)
	}
	return &PunktSegmenter{
		language:  language,
		tokenizer: sentences.NewSentenceTokenizer(training),
	}, nil
}

func (p *PunktSegmenter) Name() string { return StrategyPunkt + ":" + p.language }

func (p *PunktSegmenter) Segment(text string) []string {
	var out []string
	for _, s := range p.tokenizer.Tokenize(text) {
		out = appendSentence(out, s.Text)
	}
	return out
}
