// Evaluation harness for lexchunk indexing and search.
//
// Indexes a small corpus of French administrative fiches into a temporary
// store, then checks classification and text search ranking against known
// answers. Run: go test -v ./test/ -run EvalHarness
package eval_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ba0f3/lexchunk/internal/chunker"
	"github.com/ba0f3/lexchunk/internal/classify"
	"github.com/ba0f3/lexchunk/internal/config"
	"github.com/ba0f3/lexchunk/internal/indexer"
	"github.com/ba0f3/lexchunk/internal/logger"
	"github.com/ba0f3/lexchunk/internal/segment"
	"github.com/ba0f3/lexchunk/internal/store"
)

const evalCollection = "fiches"

type evalDoc struct {
	path        string
	content     string
	domain      string
	subcategory string
}

var evalDocs = []evalDoc{
	{
		path: "rh/licenciement.md",
		content: `# Licenciement pour motif personnel

L'employeur qui envisage un licenciement doit convoquer le salarié à un entretien préalable. Le préavis dépend de l'ancienneté du salarié dans l'emploi. Une indemnité de licenciement est due après huit mois d'ancienneté.
`,
		domain:      classify.DomainHumanResources,
		subcategory: "labor-law",
	},
	{
		path: "fiscal/tva.md",
		content: `# Déclaration de TVA

La TVA collectée est un impôt que l'entreprise doit reverser. La déclaration est mensuelle pour le régime réel normal. Une pénalité fiscale s'applique en cas de retard de paiement.
`,
		domain:      classify.DomainEconomic,
		subcategory: "business-tax",
	},
	{
		path: "creation/sarl.md",
		content: `# Créer une SARL

La création d'une SARL nécessite la rédaction des statuts et le dépôt du capital social. L'immatriculation se fait auprès du guichet unique. Le gérant est désigné dans les statuts. Le droit des sociétés impose ces formalités.
`,
		domain:      classify.DomainLegal,
		subcategory: "business-creation",
	},
	{
		path: "aides/acre.md",
		content: `# Aide à la création d'entreprise

L'aide ACRE est un dispositif de soutien qui exonère partiellement de cotisations le créateur. La demande se fait lors de l'immatriculation. Un accompagnement et un financement complémentaire sont possibles.
`,
		domain:      classify.DomainEconomic,
		subcategory: "public-aid",
	},
	{
		path: "social/urssaf.md",
		content: `# Cotisations URSSAF

L'employeur verse chaque mois les cotisations sociales à l'URSSAF. Le bulletin de paie détaille les charges sociales, la retraite et le chômage. En cas de retard, une majoration s'applique.
`,
		domain:      classify.DomainOther,
		subcategory: "payroll-social",
	},
}

type evalQuery struct {
	query       string
	expectedDoc string // partial match on path
	description string
}

var evalQueries = []evalQuery{
	{"préavis", "licenciement", "single term"},
	{"TVA", "tva", "acronym, case folded"},
	{"statuts", "sarl", "single term"},
	{"acre", "acre", "lower-cased acronym"},
	{"bulletin de paie", "urssaf", "phrase terms"},
	{"pénalité retard", "tva", "terms spread over a sentence"},
	{"INDEMNITÉ licenciement", "licenciement", "upper-case accented term"},
}

func firstMatchingRank(results []store.SearchResult, expectedDoc string) int {
	for i, r := range results {
		if strings.Contains(strings.ToLower(r.DisplayPath()), expectedDoc) {
			return i + 1
		}
	}
	return -1
}

func setupEval(t *testing.T) (context.Context, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	for _, d := range evalDocs {
		path := filepath.Join(dir, filepath.FromSlash(d.path))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(d.content), 0644))
	}

	s, err := store.NewStore(filepath.Join(t.TempDir(), "eval.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	log := logger.NewLogger(logger.TestConfig())
	ctx := logger.ContextWithLogger(context.Background(), log)
	cls := classify.NewClassifiers(classify.Tables{})
	p := chunker.NewPipeline(chunker.DefaultSizes(), segment.NewRegexSegmenter(), cls.Tagger, log)

	res, err := indexer.IndexCollection(ctx, s, p, cls, evalCollection, config.Collection{Path: dir, Pattern: "**/*.md"})
	require.NoError(t, err)
	require.Equal(t, len(evalDocs), res.Indexed)
	return ctx, s
}

func TestEvalHarnessClassification(t *testing.T) {
	ctx, s := setupEval(t)
	for _, d := range evalDocs {
		doc, err := s.FindActiveDocument(ctx, evalCollection, d.path)
		require.NoError(t, err, d.path)
		assert.Equal(t, d.domain, doc.Domain, d.path)
		assert.Equal(t, d.subcategory, doc.Subcategory, d.path)
	}
}

func TestEvalHarnessSearch(t *testing.T) {
	ctx, s := setupEval(t)

	hit1 := 0
	for _, q := range evalQueries {
		results, err := s.SearchChunks(ctx, q.query, store.Filter{Limit: 5})
		require.NoError(t, err, q.query)
		rank := firstMatchingRank(results, q.expectedDoc)

		status := "✗"
		switch {
		case rank == 1:
			status = "✓"
			hit1++
		case rank > 0:
			status = "@" + string(rune('0'+rank))
		}
		t.Logf("%-3s %q → %s", status, q.query, q.description)
		assert.Equal(t, 1, rank, "query %q", q.query)
	}
	t.Logf("Hit@1=%d%% (n=%d)", hit1*100/len(evalQueries), len(evalQueries))
}

func TestEvalHarnessKeywordFilter(t *testing.T) {
	ctx, s := setupEval(t)

	results, err := s.SearchChunks(ctx, "de", store.Filter{Keywords: []string{"sanction"}})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Contains(t, r.Keywords, "sanction", r.DisplayPath())
	}
	assert.Equal(t, 1, firstMatchingRank(results, "tva"))
}
