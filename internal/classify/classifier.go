// Package classify assigns coarse category labels to French text by keyword
// counting against ordered category tables.
package classify

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DomainOther        = "other"
	DefaultSubcategory = "general"
	TagGeneral         = "general"

	domainWindow      = 500
	subcategoryWindow = 1000
)

// Category is one row of a keyword table. Domain is only meaningful for
// subcategory tables.
type Category struct {
	Label    string   `yaml:"label" json:"label" validate:"required"`
	Domain   string   `yaml:"domain,omitempty" json:"domain,omitempty"`
	Keywords []string `yaml:"keywords" json:"keywords" validate:"required,min=1,dive,required"`
}

// Table is an ordered list of categories. Order decides ties.
type Table []Category

// lower folds text the same way for keywords and input. A Caser keeps state,
// so each call gets its own.
func lower(s string) string {
	return cases.Lower(language.French).String(s)
}

// compile returns a copy of t with lower-cased, de-duplicated keywords.
func (t Table) compile() Table {
	out := make(Table, 0, len(t))
	for _, c := range t {
		seen := make(map[string]struct{}, len(c.Keywords))
		kws := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			kw = lower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			kws = append(kws, kw)
		}
		out = append(out, Category{Label: c.Label, Domain: c.Domain, Keywords: kws})
	}
	return out
}

// scores counts, per category, the distinct keywords found in the already
// lower-cased text.
func (t Table) scores(text string) []int {
	s := make([]int, len(t))
	for i, c := range t {
		for _, kw := range c.Keywords {
			if strings.Contains(text, kw) {
				s[i]++
			}
		}
	}
	return s
}

// Classifier scores text against a compiled table.
type Classifier struct {
	table Table
}

// New compiles table into a Classifier. The table is copied.
func New(table Table) *Classifier {
	return &Classifier{table: table.compile()}
}

// Table returns a copy of the compiled table.
func (c *Classifier) Table() Table {
	out := make(Table, len(c.table))
	copy(out, c.table)
	return out
}

// Best returns the highest scoring category. Ties go to the category defined
// first; ok is false when nothing matched.
func (c *Classifier) Best(text string) (Category, bool) {
	scores := c.table.scores(lower(text))
	best := -1
	for i, s := range scores {
		if s == 0 {
			continue
		}
		if best < 0 || s > scores[best] {
			best = i
		}
	}
	if best < 0 {
		return Category{}, false
	}
	return c.table[best], true
}

// Matches returns every category with at least one keyword hit, in table order.
func (c *Classifier) Matches(text string) []Category {
	scores := c.table.scores(lower(text))
	var out []Category
	for i, s := range scores {
		if s > 0 {
			out = append(out, c.table[i])
		}
	}
	return out
}

// Scores exposes the per-label hit counts, mostly for diagnostics.
func (c *Classifier) Scores(text string) map[string]int {
	scores := c.table.scores(lower(text))
	out := make(map[string]int, len(scores))
	for i, s := range scores {
		out[c.table[i].Label] = s
	}
	return out
}

func window(title, content string, n int) string {
	r := []rune(content)
	if len(r) > n {
		r = r[:n]
	}
	return title + " " + string(r)
}

// DomainClassifier assigns a document to a broad domain from its title and
// the opening of its content.
type DomainClassifier struct {
	c *Classifier
}

func NewDomainClassifier(table Table) *DomainClassifier {
	return &DomainClassifier{c: New(table)}
}

// Classify returns the winning domain label, or DomainOther.
func (d *DomainClassifier) Classify(title, content string) string {
	cat, ok := d.c.Best(window(title, content, domainWindow))
	if !ok {
		return DomainOther
	}
	return cat.Label
}

// Scores returns the per-domain distinct keyword counts Classify ranks.
func (d *DomainClassifier) Scores(title, content string) map[string]int {
	return d.c.Scores(window(title, content, domainWindow))
}

// SubcategoryClassifier picks a subcategory and the domain it belongs to.
type SubcategoryClassifier struct {
	c             *Classifier
	defaultDomain string
}

func NewSubcategoryClassifier(table Table) *SubcategoryClassifier {
	return &SubcategoryClassifier{c: New(table), defaultDomain: DomainLegal}
}

// Classify returns (domain, subcategory). Without any hit it returns
// (legal, general).
func (s *SubcategoryClassifier) Classify(title, content string) (string, string) {
	cat, ok := s.c.Best(window(title, content, subcategoryWindow))
	if !ok {
		return s.defaultDomain, DefaultSubcategory
	}
	domain := cat.Domain
	if domain == "" {
		domain = s.defaultDomain
	}
	return domain, cat.Label
}

// ContentTagger labels a chunk with every content category it mentions.
type ContentTagger struct {
	c *Classifier
}

func NewContentTagger(table Table) *ContentTagger {
	return &ContentTagger{c: New(table)}
}

// Tags returns matching labels in table order, or [general].
func (t *ContentTagger) Tags(text string) []string {
	matches := t.c.Matches(text)
	if len(matches) == 0 {
		return []string{TagGeneral}
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Label
	}
	return out
}

// Classifiers bundles the three classifiers the indexing path needs.
type Classifiers struct {
	Domain      *DomainClassifier
	Subcategory *SubcategoryClassifier
	Tagger      *ContentTagger
}

// Tables holds optional table overrides; nil entries fall back to defaults.
type Tables struct {
	Domains       Table
	Subcategories Table
	ContentTags   Table
}

// NewClassifiers builds the classifier set, substituting the default tables
// for any empty override.
func NewClassifiers(t Tables) *Classifiers {
	if len(t.Domains) == 0 {
		t.Domains = DefaultDomainTable()
	}
	if len(t.Subcategories) == 0 {
		t.Subcategories = DefaultSubcategoryTable()
	}
	if len(t.ContentTags) == 0 {
		t.ContentTags = DefaultContentTable()
	}
	return &Classifiers{
		Domain:      NewDomainClassifier(t.Domains),
		Subcategory: NewSubcategoryClassifier(t.Subcategories),
		Tagger:      NewContentTagger(t.ContentTags),
	}
}

// Tables returns the compiled tables in use.
func (c *Classifiers) Tables() Tables {
	return Tables{
		Domains:       c.Domain.c.Table(),
		Subcategories: c.Subcategory.c.Table(),
		ContentTags:   c.Tagger.c.Table(),
	}
}
